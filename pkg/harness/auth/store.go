package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/workflowpro/e2e/pkg/harness/config"
	"github.com/workflowpro/e2e/pkg/harness/internal"
)

// ExpiryBuffer is subtracted from a cached token's expiry when deciding
// whether to reuse it. A token inside the buffer is still technically valid
// but is refetched so it cannot expire mid-request.
const ExpiryBuffer = 5 * time.Minute

// TokenIssuer is the network half of token acquisition. *Gateway is the
// production implementation.
type TokenIssuer interface {
	RequestToken(ctx context.Context, tenantID, email, password string) (Token, error)
	RefreshToken(ctx context.Context, token Token) (Token, error)
}

type cacheKey struct {
	tenantID string
	email    string
}

// Store caches tokens per (tenant, user) for the duration of a test run.
// Entries leave the cache only through Invalidate or Clear; there is no
// size- or age-based eviction.
//
// The store is safe for concurrent use. Two goroutines racing on a cold key
// may both hit the network; the second write overwrites the first with an
// equally valid token, which is acceptable.
type Store struct {
	mu     sync.Mutex
	cache  map[cacheKey]Token
	issuer TokenIssuer
	clock  internal.Clock
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreClock overrides the clock used for expiry decisions.
func WithStoreClock(c internal.Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// WithStoreLogger sets the logger. Defaults to a no-op logger.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a token store backed by the given issuer. The store is
// meant to be constructed once per test run and passed by reference to
// everything that needs tokens.
func NewStore(issuer TokenIssuer, opts ...StoreOption) *Store {
	s := &Store{
		cache:  make(map[cacheKey]Token),
		issuer: issuer,
		clock:  internal.SystemClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetToken returns a token for the user, reusing the cached entry when it is
// valid and outside the expiry buffer. forceRefresh always fetches. The
// cache-hit path performs no I/O.
func (s *Store) GetToken(ctx context.Context, tenantID, email, password string, forceRefresh bool) (Token, error) {
	key := cacheKey{tenantID: tenantID, email: email}

	if !forceRefresh {
		s.mu.Lock()
		cached, ok := s.cache[key]
		s.mu.Unlock()

		now := s.clock.Now()
		if ok && cached.ValidAt(now) && now.Before(cached.ExpiresAt.Add(-ExpiryBuffer)) {
			return cached, nil
		}
	}

	token, err := s.issuer.RequestToken(ctx, tenantID, email, password)
	if err != nil {
		return Token{}, err
	}

	s.mu.Lock()
	s.cache[key] = token
	s.mu.Unlock()

	s.logger.Debug("token fetched",
		zap.String("tenant", tenantID), zap.String("email", email),
		zap.Time("expires_at", token.ExpiresAt))
	return token, nil
}

// Refresh exchanges the token's refresh token for a new one and updates the
// cache. If the refresh call fails at the network layer the stale token is
// returned unchanged; callers must treat the result defensively since it may
// already be expired. A token without a refresh token is an error.
func (s *Store) Refresh(ctx context.Context, token Token) (Token, error) {
	if token.RefreshToken == "" {
		return Token{}, ErrNoRefreshToken
	}

	fresh, err := s.issuer.RefreshToken(ctx, token)
	if err != nil {
		s.logger.Warn("token refresh failed, keeping stale token",
			zap.String("tenant", token.TenantID), zap.String("email", token.UserEmail),
			zap.Error(err))
		return token, nil
	}

	s.mu.Lock()
	s.cache[cacheKey{tenantID: token.TenantID, email: token.UserEmail}] = fresh
	s.mu.Unlock()

	return fresh, nil
}

// GetAuthHeaders returns the header set for authenticated API calls.
func (s *Store) GetAuthHeaders(ctx context.Context, tenantID, email, password string) (map[string]string, error) {
	token, err := s.GetToken(ctx, tenantID, email, password, false)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Authorization": "Bearer " + token.AccessToken,
		"X-Tenant-ID":   tenantID,
		"Content-Type":  "application/json",
	}, nil
}

// GetTenantAuth returns auth headers for a tenant's admin user, resolving
// credentials from the tenant registry. Most callers use only this.
func (s *Store) GetTenantAuth(ctx context.Context, tenantID string) (map[string]string, error) {
	tenant, err := config.Tenant(tenantID)
	if err != nil {
		return nil, err
	}
	return s.GetAuthHeaders(ctx, tenant.TenantID, tenant.AdminEmail, tenant.AdminPassword)
}

// Invalidate removes one cache entry, simulating a logout. No-op when the
// entry is absent.
func (s *Store) Invalidate(tenantID, email string) {
	s.mu.Lock()
	delete(s.cache, cacheKey{tenantID: tenantID, email: email})
	s.mu.Unlock()
}

// Clear empties the cache. Used between test runs to avoid cross-test
// leakage.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cache = make(map[cacheKey]Token)
	s.mu.Unlock()
}
