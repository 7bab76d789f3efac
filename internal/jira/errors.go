package jira

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Configuration errors.
var (
	ErrConfigURLRequired = errors.New("jira url is required")
	ErrConfigURLInvalid  = errors.New("jira url must be an absolute http(s) url")
	ErrConfigBasicAuth   = errors.New("basic auth requires username and password")
)

// Request errors.
var (
	ErrIssueKeyRequired     = errors.New("issue key is required")
	ErrTransitionIDRequired = errors.New("transition id is required")
)

// Status class errors, reachable through errors.Is on an *APIError.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServerError  = errors.New("server error")
)

// APIError represents an error response from the Jira API
type APIError struct {
	StatusCode    int               `json:"-"`
	ErrorMessages []string          `json:"errorMessages,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Endpoint      string            `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.ErrorMessages) > 0 {
		return fmt.Sprintf("jira api error (%d) at %s: %s", e.StatusCode, e.Endpoint, e.ErrorMessages[0])
	}
	for field, msg := range e.Errors {
		return fmt.Sprintf("jira api error (%d) at %s: %s: %s", e.StatusCode, e.Endpoint, field, msg)
	}
	return fmt.Sprintf("jira api error (%d) at %s", e.StatusCode, e.Endpoint)
}

// Unwrap returns the sentinel error for the status code class.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// parseAPIError builds an APIError from a non-2xx response and closes its body.
func parseAPIError(resp *http.Response, endpoint string) error {
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Endpoint:   endpoint,
	}

	// Jira answers most errors with {errorMessages, errors}; anything else gets the status text
	if json.Unmarshal(body, apiErr) != nil || (len(apiErr.ErrorMessages) == 0 && len(apiErr.Errors) == 0) {
		apiErr.ErrorMessages = []string{http.StatusText(resp.StatusCode)}
	}

	return apiErr
}

// IsUnauthorized reports whether the error means the credentials were rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
