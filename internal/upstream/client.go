// Package upstream is the HTTP client for the club platform JSON API, the
// external service that owns clubs, events, interest, holidays and the
// viewer's permissions. clubcal holds no data of its own; every read and
// write goes through this client.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/keyxmakerx/clubcal/internal/middleware"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 4 << 20

// Client issues JSON requests against the platform API. It is safe for
// concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a Client rooted at baseURL. Relative paths passed to Get and
// Post resolve against it, so a trailing slash on baseURL matters.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// StatusError is returned when the API answers with a non-2xx status.
// Message is the API's own error text when the body carried one.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

// AsStatusError reports whether err carries an upstream StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Get fetches path?query and decodes the JSON body into dest. credential is
// the viewer's bearer token; empty means an anonymous request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, credential string, dest any) error {
	u := c.resolve(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building GET %s: %w", path, err)
	}
	return c.do(req, credential, dest)
}

// Post sends body as JSON to path and decodes the response into dest
// (which may be nil when the response body is irrelevant).
func (c *Client) Post(ctx context.Context, path string, body any, credential string, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding POST %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(path).String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building POST %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, credential, dest)
}

func (c *Client) resolve(path string) *url.URL {
	return c.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
}

func (c *Client) do(req *http.Request, credential string, dest any) error {
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	if id := middleware.RequestIDFromContext(req.Context()); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("reading %s %s: %w", req.Method, req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	if dest == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decoding %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body. The
// platform answers {"error": "..."} from most routes and {"message": "..."}
// from validation failures.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
