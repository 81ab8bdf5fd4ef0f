package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ProgressService defines the remote operations the sync engine needs.
// This interface is implemented by *Client and can be used for testing.
type ProgressService interface {
	FetchProgress(ctx context.Context) (*Progress, error)
	UpdateObjective(ctx context.Context, objectiveID string, count int, state ObjectiveState) error
}

// Ensure Client implements ProgressService at compile time.
var _ ProgressService = (*Client)(nil)

// Client talks to the progress tracker HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
}

const (
	DefaultBaseURL   = "https://tarkovtracker.org/api/v2"
	defaultUserAgent = "raidtrack/0.1"
	requestTimeout   = 10 * time.Second
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}

// IsRateLimited reports whether err carries an HTTP 429 response.
func IsRateLimited(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusTooManyRequests
}

// NewClient builds a Client for baseURL authenticating with the bearer token.
// An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, token string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		token:     strings.TrimSpace(token),
		userAgent: defaultUserAgent,
	}, nil
}

// FetchProgress retrieves the full progress document for the token owner.
func (c *Client) FetchProgress(ctx context.Context) (*Progress, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload ProgressResponse
	if err := c.do(ctx, http.MethodGet, "progress", nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Data, nil
}

// UpdateObjective sets the count and state of a single task objective.
func (c *Client) UpdateObjective(ctx context.Context, objectiveID string, count int, state ObjectiveState) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	id := strings.TrimSpace(objectiveID)
	if id == "" {
		return fmt.Errorf("objective id required")
	}
	body := ObjectiveUpdate{Count: count, State: state}
	return c.do(ctx, http.MethodPost, "progress/task/objective/"+url.PathEscape(id), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Method: method, Path: "/" + path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseBaseURL normalizes the base so relative endpoint paths resolve
// underneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
