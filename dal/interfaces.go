package dal

import (
	"context"
	"net/url"
)

// APIClientInterface defines the contract for calls against the REST backend
type APIClientInterface interface {
	// Do sends body as JSON and decodes a 2xx response into out (when non-nil).
	// Every failure is returned as *Error.
	Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error
}

// TokenSource supplies the session token at request time
type TokenSource interface {
	Token() string
}
