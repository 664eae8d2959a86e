package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/workflowpro/e2e/pkg/harness/internal"
)

const (
	// defaultExpiresIn is assumed when the auth endpoint omits expires_in.
	defaultExpiresIn = 3600 * time.Second

	// gatewayTimeout bounds each auth call. The gateway never retries;
	// retry on auth is a caller decision, unlike resource calls.
	gatewayTimeout = 10 * time.Second
)

// ErrNoRefreshToken is returned by refresh paths when the token carries no
// refresh token.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Gateway performs the network exchanges that produce tokens. Each call is a
// single bounded attempt against the auth endpoints.
//
// By default the gateway runs in offline-fallback mode: if the login
// endpoint is unreachable or rejects the call, RequestToken synthesizes a
// deterministic placeholder token instead of failing, so UI flows under test
// do not collapse just because the auth service is down. WithFailFast
// disables this and surfaces auth failures to the caller.
type Gateway struct {
	baseURL         string
	client          *http.Client
	clock           internal.Clock
	offlineFallback bool
	logger          *zap.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithFailFast disables the placeholder-token fallback so auth failures
// propagate as errors.
func WithFailFast() GatewayOption {
	return func(g *Gateway) { g.offlineFallback = false }
}

// WithGatewayClock overrides the clock used for expiry arithmetic.
func WithGatewayClock(c internal.Clock) GatewayOption {
	return func(g *Gateway) { g.clock = c }
}

// WithGatewayHTTPClient overrides the underlying HTTP client.
func WithGatewayHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.client = c }
}

// WithGatewayLogger sets the logger. Defaults to a no-op logger.
func WithGatewayLogger(l *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = l }
}

// NewGateway creates a gateway against the given API service root
// (e.g. "https://api.staging.workflowpro.com").
func NewGateway(baseURL string, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		baseURL:         baseURL,
		client:          &http.Client{Timeout: gatewayTimeout},
		clock:           internal.SystemClock{},
		offlineFallback: true,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RequestToken exchanges credentials for a token via POST /auth/login.
// In offline-fallback mode any failure yields a placeholder token of the
// form dummy_token_<tenant>_<email> valid for one hour.
func (g *Gateway) RequestToken(ctx context.Context, tenantID, email, password string) (Token, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := g.post(ctx, "/auth/login", tenantID, body)
	if err != nil {
		if g.offlineFallback {
			g.logger.Warn("auth endpoint unavailable, using placeholder token",
				zap.String("tenant", tenantID), zap.String("email", email), zap.Error(err))
			return g.placeholderToken(tenantID, email), nil
		}
		return Token{}, fmt.Errorf("request token: %w", err)
	}

	return g.tokenFromResponse(resp, tenantID, email, ""), nil
}

// RefreshToken exchanges the token's refresh token for a new one via
// POST /auth/refresh. There is no placeholder fallback here; failures
// propagate so the caller can decide whether to keep the stale token.
func (g *Gateway) RefreshToken(ctx context.Context, token Token) (Token, error) {
	if token.RefreshToken == "" {
		return Token{}, ErrNoRefreshToken
	}

	body := map[string]string{"refresh_token": token.RefreshToken}

	resp, err := g.post(ctx, "/auth/refresh", token.TenantID, body)
	if err != nil {
		return Token{}, fmt.Errorf("refresh token: %w", err)
	}

	return g.tokenFromResponse(resp, token.TenantID, token.UserEmail, token.RefreshToken), nil
}

func (g *Gateway) post(ctx context.Context, path, tenantID string, body any) (*tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth endpoint returned status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &tr, nil
}

func (g *Gateway) tokenFromResponse(tr *tokenResponse, tenantID, email, fallbackRefresh string) Token {
	expiresIn := defaultExpiresIn
	if tr.ExpiresIn > 0 {
		expiresIn = time.Duration(tr.ExpiresIn) * time.Second
	}
	refresh := tr.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	return Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: refresh,
		ExpiresAt:    g.clock.Now().Add(expiresIn),
		TenantID:     tenantID,
		UserEmail:    email,
	}
}

func (g *Gateway) placeholderToken(tenantID, email string) Token {
	return Token{
		AccessToken: fmt.Sprintf("dummy_token_%s_%s", tenantID, email),
		ExpiresAt:   g.clock.Now().Add(time.Hour),
		TenantID:    tenantID,
		UserEmail:   email,
	}
}
