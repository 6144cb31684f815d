package api

import (
	"errors"
	"fmt"
)

// AuthError indicates that the server rejected the configured token.
// It is returned when a 401 response is received.
type AuthError struct {
	BaseURL string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.BaseURL, e.Message)
}

// TokenRejectedMessage tells the user how to recover from an AuthError.
const TokenRejectedMessage = "API token rejected. Press s to update it."

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is a non-2xx response whose body could not be interpreted.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Body)
}
