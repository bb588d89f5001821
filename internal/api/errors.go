package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
)

// ResponseError is returned for every non-2xx response
type ResponseError struct {
	StatusCode int
	Message    string // The "message" field of the JSON body, if any
	Detail     string // The "error" field of the JSON body, shown only when Message is empty
	Method     string
	Path       string
	Body       []byte
}

func (e *ResponseError) Error() string {
	if msg := e.text(); msg != "" {
		return fmt.Sprintf("%s %s failed (status %d): %s", e.Method, e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s %s failed (status %d)", e.Method, e.Path, e.StatusCode)
}

// text is the message for people: the body message, else its error field
func (e *ResponseError) text() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return e.Detail
}

// Is lets errors.Is match the sentinel for the status class
func (e *ResponseError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// newResponseError builds a ResponseError from {"message": "..."} and
// {"error": "..."} bodies. Only the message takes part in auth classification.
func newResponseError(req *http.Request, status int, body []byte) *ResponseError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	return &ResponseError{
		StatusCode: status,
		Message:    payload.Message,
		Detail:     payload.Error,
		Method:     req.Method,
		Path:       req.URL.Path,
		Body:       body,
	}
}

// IsTimeout reports whether err is a transport-level timeout with no response
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// UserMessage returns the server-provided message of err, or fallback when the
// server gave none
func UserMessage(err error, fallback string) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		if msg := respErr.text(); strings.TrimSpace(msg) != "" {
			return msg
		}
	}
	return fallback
}
