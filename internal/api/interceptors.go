package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// TokenSource returns the persisted bearer token, or "" when there is none
type TokenSource interface {
	Token() (string, error)
}

// Navigator moves the client to another route
type Navigator interface {
	Navigate(route string)
}

// authKeywords mark a 401 body message as a credential problem rather than a
// business rule rejection
var authKeywords = []string{"token", "jwt", "unauthorized"}

// authEndpoints always signal a credential problem when they return 401
var authEndpoints = []string{PathLogin, PathProfile}

// BearerToken attaches "Authorization: Bearer <token>" when a token is stored
func BearerToken(src TokenSource, logger zerolog.Logger) RequestInterceptor {
	return func(req *http.Request) error {
		token, err := src.Token()
		if err != nil {
			// An unreadable store is treated like an empty one
			logger.Warn().Err(err).Msg("Failed to read stored token")
			return nil
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// IsAuthFailure classifies a 401 as an authentication problem
func IsAuthFailure(status int, message, path string) bool {
	if status != http.StatusUnauthorized {
		return false
	}

	msg := strings.ToLower(message)
	for _, kw := range authKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}

	for _, endpoint := range authEndpoints {
		if strings.Contains(path, endpoint) {
			return true
		}
	}
	return false
}

// SessionGuard reacts to failed requests: it tears the local session down on
// authentication failures and logs server errors and timeouts. It never alters
// the error handed back to the caller.
type SessionGuard struct {
	// Teardown clears every piece of local session and storage state
	Teardown   func() error
	Navigator  Navigator
	LoginRoute string
	Logger     zerolog.Logger
}

// Intercept implements ErrorInterceptor
func (g *SessionGuard) Intercept(req *http.Request, err error) {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		if IsTimeout(err) {
			g.Logger.Warn().Str("path", req.URL.Path).Msg("Request timeout. Please try again.")
		}
		return
	}

	switch {
	case respErr.StatusCode == http.StatusUnauthorized:
		if !IsAuthFailure(respErr.StatusCode, respErr.Message, req.URL.Path) {
			return
		}
		g.Logger.Debug().Str("path", req.URL.Path).Str("message", respErr.Message).Msg("Authentication failure, clearing session")
		if g.Teardown != nil {
			if terr := g.Teardown(); terr != nil {
				g.Logger.Error().Err(terr).Msg("Failed to clear local session")
			}
		}
		if g.Navigator != nil {
			g.Navigator.Navigate(g.LoginRoute)
		}
	case respErr.StatusCode == http.StatusInternalServerError:
		g.Logger.Error().Str("path", req.URL.Path).Msg("Server error. Please try again later.")
	}
}
