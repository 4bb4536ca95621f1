package storeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError describes a non-2xx answer from the store API. No error body shape is
// assumed; Message carries the raw body, trimmed, when one was sent.
type APIError struct {
	StatusCode int
	Status     string
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	msg := fmt.Sprintf("store API %s %s: %s", e.Method, e.Path, status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound)
}

// HasStatus reports whether err is an APIError with the given status code.
func HasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
