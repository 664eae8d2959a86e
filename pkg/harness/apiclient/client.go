// Package apiclient is the tenant-scoped REST client for the WorkFlow Pro
// project API. Transient failures are retried with exponential backoff;
// everything else propagates as a typed *APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// maxAttempts is the total number of attempts per request, including
	// the first one.
	maxAttempts = 3

	// backoffBase is the first retry delay; subsequent delays double.
	backoffBase = time.Second

	requestTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second
)

// retryableStatus is the set of status codes worth a second attempt. 4xx
// codes outside this set mean the request itself is wrong and retrying
// cannot help.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client talks to the project API on behalf of one tenant session. The
// token and tenant can be swapped on a live client to simulate session
// switching without reconnecting.
type Client struct {
	baseURL string
	http    *http.Client
	health  *http.Client
	logger  *zap.Logger

	// sleep is swapped in tests to observe backoff without waiting.
	sleep func(time.Duration)

	mu       sync.Mutex
	tenantID string
	headers  map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for resource calls.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client for the given API service root, bearer token, and
// tenant.
func New(baseURL, token, tenantID string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: requestTimeout},
		health:   &http.Client{Timeout: healthTimeout},
		logger:   zap.NewNop(),
		sleep:    time.Sleep,
		tenantID: tenantID,
		headers: map[string]string{
			"Authorization": "Bearer " + token,
			"X-Tenant-ID":   tenantID,
			"Content-Type":  "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken swaps the bearer token on the live client.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.headers["Authorization"] = "Bearer " + token
	c.mu.Unlock()
}

// SetTenant swaps the tenant on the live client.
func (c *Client) SetTenant(tenantID string) {
	c.mu.Lock()
	c.tenantID = tenantID
	c.headers["X-Tenant-ID"] = tenantID
	c.mu.Unlock()
}

// TenantID returns the tenant the client currently acts as.
func (c *Client) TenantID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tenantID
}

// CreateProject creates a project and returns the server's representation.
func (c *Client) CreateProject(ctx context.Context, payload ProjectPayload) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects", payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject fetches a project by id. Missing or foreign projects surface
// as an *APIError with the server's status.
func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodGet, "/api/v1/projects/"+url.PathEscape(projectID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects lists the tenant's projects, paginated.
func (c *Client) ListProjects(ctx context.Context, page, limit int) (*ProjectPage, error) {
	path := fmt.Sprintf("/api/v1/projects?page=%d&limit=%d", page, limit)
	var pp ProjectPage
	if err := c.do(ctx, http.MethodGet, path, nil, &pp); err != nil {
		return nil, err
	}
	return &pp, nil
}

// UpdateProject applies a full or partial update to a project.
func (c *Client) UpdateProject(ctx context.Context, projectID string, payload map[string]any) (*Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodPut, "/api/v1/projects/"+url.PathEscape(projectID), payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject deletes a project. Deleting an already-deleted id fails;
// cleanup call sites are expected to swallow that failure themselves.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/projects/"+url.PathEscape(projectID), nil, nil)
}

// AddTeamMember adds a member to a project.
func (c *Client) AddTeamMember(ctx context.Context, projectID, email string) (*Project, error) {
	body := map[string]string{"email": email}
	var p Project
	if err := c.do(ctx, http.MethodPost, "/api/v1/projects/"+url.PathEscape(projectID)+"/members", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RemoveTeamMember removes a member from a project.
func (c *Client) RemoveTeamMember(ctx context.Context, projectID, email string) error {
	path := "/api/v1/projects/" + url.PathEscape(projectID) + "/members/" + url.PathEscape(email)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// HealthCheck reports whether the API is up. It never returns an error;
// any failure maps to false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.health.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// do runs one logical request with bounded retry. Retries happen only on
// retryable statuses and transport errors; the delays are 1s then 2s.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := backoffBase << (attempt - 2)
			c.logger.Debug("retrying request",
				zap.String("method", method), zap.String("path", path),
				zap.Int("attempt", attempt), zap.Duration("delay", delay))
			c.sleep(delay)
		}

		retryable, err := c.attempt(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, maxAttempts, lastErr)
}

// attempt runs a single HTTP exchange. The bool reports whether the failure
// is worth retrying.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	c.mu.Lock()
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	c.mu.Unlock()

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       strings.TrimSpace(string(raw)),
		}
		return retryableStatus[resp.StatusCode], apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return false, nil
}
