package dal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"orgconsole/utils/logger"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request correlation id to the backend
const RequestIDHeader = "X-Request-ID"

// APIClient is the HTTP transport to the REST backend. It attaches the
// session token, read from the token source at call time, to every request.
type APIClient struct {
	baseURL    *url.URL
	tokens     TokenSource
	httpClient *http.Client
	logger     logger.Logger
}

// NewAPIClient creates a client for the given base URL. A nil httpClient
// uses http.DefaultClient, so the transport defaults apply.
func NewAPIClient(baseURL string, tokens TokenSource, httpClient *http.Client, log logger.Logger) (*APIClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{
		baseURL:    u,
		tokens:     tokens,
		httpClient: httpClient,
		logger:     log,
	}, nil
}

// WithTokens returns a client sharing the transport but reading tokens from another source
func (c *APIClient) WithTokens(tokens TokenSource) *APIClient {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// Do implements APIClientInterface
func (c *APIClient) Do(ctx context.Context, method, path string, query url.Values, reqBody, out interface{}) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return transportError(fmt.Errorf("json marshal request: %w", err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return transportError(fmt.Errorf("http request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
	}

	c.logger.Debugf("%s %s", method, u.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf("Request %s %s failed: %v", method, path, err)
		return transportError(fmt.Errorf("http do: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(fmt.Errorf("http read: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := NormalizeError(resp.StatusCode, respBody)
		c.logger.Warnf("Request %s %s returned %d: %s", method, path, resp.StatusCode, apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Status: resp.StatusCode, cause: fmt.Errorf("json unmarshal response: %w", err)}
	}
	return nil
}
