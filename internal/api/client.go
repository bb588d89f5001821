package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nexa-tasks/nexa/internal/models"
)

// DefaultTimeout bounds every request
const DefaultTimeout = 10 * time.Second

// RequestInterceptor may modify every outgoing request. Returning an error
// aborts the request.
type RequestInterceptor func(req *http.Request) error

// ErrorInterceptor observes every failed request. It cannot change the error
// returned to the caller.
type ErrorInterceptor func(req *http.Request, err error)

// Client represents an HTTP client for the Nexa Tasks API
type Client struct {
	baseURL             string
	httpClient          *http.Client
	headers             http.Header
	requestInterceptors []RequestInterceptor
	errorInterceptors   []ErrorInterceptor
	logger              zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing and error notices
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRequestInterceptor appends a request interceptor
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(c *Client) { c.requestInterceptors = append(c.requestInterceptors, i) }
}

// WithErrorInterceptor appends an error interceptor
func WithErrorInterceptor(i ErrorInterceptor) Option {
	return func(c *Client) { c.errorInterceptors = append(c.errorInterceptors, i) }
}

// New creates a new API client
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		headers:    headers,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetHTTPClient sets a custom HTTP client, keeping the configured timeout if
// the new client has none
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	if httpClient.Timeout == 0 {
		httpClient.Timeout = c.httpClient.Timeout
	}
	c.httpClient = httpClient
}

// UseRequest registers a request interceptor
func (c *Client) UseRequest(i RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, i)
}

// UseError registers an error interceptor
func (c *Client) UseError(i ErrorInterceptor) {
	c.errorInterceptors = append(c.errorInterceptors, i)
}

// BaseURL returns the API origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Get issues a GET and decodes the JSON response into result (may be nil)
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

// Post issues a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

// Put issues a PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, result)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, result)
}

// Download issues a GET and returns the raw body, for file exports
func (c *Client) Download(ctx context.Context, path string) (*models.Report, error) {
	var report models.Report
	err := c.do(ctx, http.MethodGet, path, nil, "", func(resp *http.Response) error {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		report.Body = body
		report.ContentType = resp.Header.Get("Content-Type")
		report.Filename = filenameFromDisposition(resp.Header.Get("Content-Disposition"))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Upload sends a single file as multipart/form-data under the given field
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), decodeInto(result))
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}
	return c.do(ctx, method, path, reader, "", decodeInto(result))
}

func decodeInto(result any) func(*http.Response) error {
	return func(resp *http.Response) error {
		if result == nil {
			return nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}
}

// do runs one request through the interceptor chain. handle is only called for
// 2xx responses.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, handle func(*http.Response) error) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	for _, intercept := range c.requestInterceptors {
		if err := intercept(req); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send request: %w", err)
		c.fail(req, err)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", req.Header.Get("X-Request-ID")).
		Msg("API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		respErr := newResponseError(req, resp.StatusCode, respBody)
		c.fail(req, respErr)
		return respErr
	}

	return handle(resp)
}

func (c *Client) fail(req *http.Request, err error) {
	for _, intercept := range c.errorInterceptors {
		intercept(req, err)
	}
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
