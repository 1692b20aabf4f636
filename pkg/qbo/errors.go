package qbo

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError indicates the API rejected the bearer token (HTTP 401).
// Body is the raw response body; it never contains the token itself.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string {
	if e.Body == "" {
		return "qbo: authentication failed (401)"
	}
	return fmt.Sprintf("qbo: authentication failed (401): %s", e.Body)
}

// NewAuthError creates an authentication error from a 401 response body.
func NewAuthError(body string) *AuthError {
	return &AuthError{Body: body}
}

// QueryError indicates a query failed for any reason other than
// authentication. StatusCode is zero when the request never produced a
// response (connection failure, timeout). Query is the exact statement
// that was sent, pagination clauses included, so failures can be
// reproduced verbatim. None of the fields ever carry the bearer token.
type QueryError struct {
	StatusCode int
	Body       string
	Query      string
	Cause      error
}

func (e *QueryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("qbo: query transport failed: %v (query: %s)", e.Cause, e.Query)
	}
	return fmt.Sprintf("qbo: query failed with status %d: %s (query: %s)", e.StatusCode, e.Body, e.Query)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// NewQueryError creates a query error from a non-401 HTTP response.
func NewQueryError(statusCode int, body, query string) *QueryError {
	return &QueryError{
		StatusCode: statusCode,
		Body:       body,
		Query:      query,
	}
}

// NewTransportError creates a query error for a request that failed
// before any response arrived.
func NewTransportError(query string, cause error) *QueryError {
	return &QueryError{
		Query: query,
		Cause: cause,
	}
}

// RequestStatus classifies a page-request error into a stable label for
// logs and monitoring. Returns "success" for a nil error. Errors raised
// before the request went out, a failed token fetch included, classify
// as plain "error".
func RequestStatus(err error) string {
	if err == nil {
		return "success"
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		return "auth_error"
	}

	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		switch {
		case queryErr.StatusCode == 0:
			return "network"
		case queryErr.StatusCode == http.StatusTooManyRequests:
			return "rate_limited"
		case queryErr.StatusCode >= 500:
			return "server_error"
		default:
			return "client_error"
		}
	}

	return "error"
}
