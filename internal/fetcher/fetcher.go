// Package fetcher downloads the source user collection.
package fetcher

import (
	"context"
	"fmt"

	"github.com/ICTylor/json-to-relational/internal/model"
)

// Source yields the raw user objects of one run.
type Source interface {
	// Fetch retrieves and parses the whole collection.
	Fetch(ctx context.Context) ([]model.RawObject, error)
}

// FetchError reports a failed HTTP exchange: transport error, timeout or a
// non-success status. StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetcher: GET %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetcher: GET %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that is not a JSON array of objects.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("fetcher: parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// isTransientStatus reports whether a status is worth another attempt.
func isTransientStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
