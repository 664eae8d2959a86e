package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflowpro/e2e/pkg/harness/config"
	"github.com/workflowpro/e2e/pkg/harness/internal"
)

// fakeIssuer counts network calls and mints tokens with a controllable
// lifetime.
type fakeIssuer struct {
	mu           sync.Mutex
	requestCalls int
	refreshCalls int
	lifetime     time.Duration
	clock        internal.Clock
	requestErr   error
	refreshErr   error
}

func newFakeIssuer(clock internal.Clock) *fakeIssuer {
	return &fakeIssuer{lifetime: time.Hour, clock: clock}
}

func (f *fakeIssuer) RequestToken(_ context.Context, tenantID, email, _ string) (Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestErr != nil {
		return Token{}, f.requestErr
	}
	f.requestCalls++
	return Token{
		AccessToken:  fmt.Sprintf("token-%s-%s-%d", tenantID, email, f.requestCalls),
		RefreshToken: "refresh-" + tenantID,
		ExpiresAt:    f.clock.Now().Add(f.lifetime),
		TenantID:     tenantID,
		UserEmail:    email,
	}, nil
}

func (f *fakeIssuer) RefreshToken(_ context.Context, token Token) (Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshErr != nil {
		return Token{}, f.refreshErr
	}
	f.refreshCalls++
	token.AccessToken = fmt.Sprintf("refreshed-%d", f.refreshCalls)
	token.ExpiresAt = f.clock.Now().Add(f.lifetime)
	return token, nil
}

func (f *fakeIssuer) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestCalls
}

func newTestStore(t *testing.T) (*Store, *fakeIssuer, *internal.MockClock) {
	t.Helper()
	clock := internal.NewMockClock(time.Time{})
	issuer := newFakeIssuer(clock)
	return NewStore(issuer, WithStoreClock(clock)), issuer, clock
}

func TestStore_SecondGetReusesCachedToken(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetToken(ctx, "company1", "admin@company1.com", "pw", false)
	require.NoError(t, err)

	second, err := store.GetToken(ctx, "company1", "admin@company1.com", "pw", false)
	require.NoError(t, err)

	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, 1, issuer.requests(), "cache hit must not touch the network")
}

func TestStore_DistinctKeysFetchSeparately(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetToken(ctx, "company1", "admin@company1.com", "pw", false)
	require.NoError(t, err)
	_, err = store.GetToken(ctx, "company2", "admin@company2.com", "pw", false)
	require.NoError(t, err)
	_, err = store.GetToken(ctx, "company1", "manager@company1.com", "pw", false)
	require.NoError(t, err)

	assert.Equal(t, 3, issuer.requests())
}

func TestStore_ForceRefreshAlwaysFetches(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	forced, err := store.GetToken(ctx, "company1", "a@b.com", "pw", true)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, forced.AccessToken)
	assert.Equal(t, 2, issuer.requests())

	// The cache now holds the forced token.
	cached, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, forced.AccessToken, cached.AccessToken)
	assert.Equal(t, 2, issuer.requests())
}

func TestStore_TokenInsideExpiryBufferIsRefetched(t *testing.T) {
	store, issuer, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	// Advance to 4 minutes before expiry: still valid, but inside the
	// 5-minute buffer.
	clock.Advance(time.Hour - 4*time.Minute)

	_, err = store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, 2, issuer.requests(), "due-for-refresh token must trigger a fetch")
}

func TestStore_TokenOutsideBufferIsReused(t *testing.T) {
	store, issuer, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	clock.Advance(time.Hour - 6*time.Minute)

	_, err = store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, 1, issuer.requests())
}

func TestStore_ExpiredTokenIsRefetched(t *testing.T) {
	store, issuer, clock := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, 2, issuer.requests())
}

func TestStore_ClearForcesRefetch(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	store.Clear()

	_, err = store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, 2, issuer.requests(), "cleared cache must not serve the old entry")
}

func TestStore_InvalidateRemovesSingleEntry(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	_, err = store.GetToken(ctx, "company2", "a@b.com", "pw", false)
	require.NoError(t, err)

	store.Invalidate("company1", "a@b.com")
	// Absent entry: no-op.
	store.Invalidate("company9", "ghost@b.com")

	_, err = store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	_, err = store.GetToken(ctx, "company2", "a@b.com", "pw", false)
	require.NoError(t, err)

	assert.Equal(t, 3, issuer.requests(), "only the invalidated key refetches")
}

func TestStore_RefreshWithoutRefreshTokenFails(t *testing.T) {
	store, _, clock := newTestStore(t)

	_, err := store.Refresh(context.Background(), Token{
		AccessToken: "abc",
		ExpiresAt:   clock.Now().Add(time.Hour),
		TenantID:    "company1",
		UserEmail:   "a@b.com",
	})
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestStore_RefreshFailureReturnsStaleToken(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	issuer.refreshErr = errors.New("connection refused")

	got, err := store.Refresh(ctx, token)
	require.NoError(t, err, "refresh network failure is absorbed")
	assert.Equal(t, token, got, "stale token returned unchanged")
}

func TestStore_RefreshUpdatesCache(t *testing.T) {
	store, issuer, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)

	fresh, err := store.Refresh(ctx, token)
	require.NoError(t, err)
	assert.NotEqual(t, token.AccessToken, fresh.AccessToken)

	cached, err := store.GetToken(ctx, "company1", "a@b.com", "pw", false)
	require.NoError(t, err)
	assert.Equal(t, fresh.AccessToken, cached.AccessToken)
	assert.Equal(t, 1, issuer.requests(), "refreshed entry serves cache hits")
}

func TestStore_GetAuthHeaders(t *testing.T) {
	store, _, _ := newTestStore(t)

	headers, err := store.GetAuthHeaders(context.Background(), "company1", "a@b.com", "pw")
	require.NoError(t, err)

	assert.Contains(t, headers["Authorization"], "Bearer token-company1-a@b.com")
	assert.Equal(t, "company1", headers["X-Tenant-ID"])
	assert.Equal(t, "application/json", headers["Content-Type"])
}

func TestStore_GetTenantAuthResolvesRegistry(t *testing.T) {
	store, _, _ := newTestStore(t)

	headers, err := store.GetTenantAuth(context.Background(), "company1")
	require.NoError(t, err)
	assert.Equal(t, "company1", headers["X-Tenant-ID"])
	assert.Contains(t, headers["Authorization"], "admin@company1.com")
}

func TestStore_GetTenantAuthUnknownTenant(t *testing.T) {
	store, _, _ := newTestStore(t)

	_, err := store.GetTenantAuth(context.Background(), "ghost-corp")
	assert.ErrorIs(t, err, config.ErrUnknownTenant)
}

func TestStore_ConcurrentAccessIsSafe(t *testing.T) {
	clock := internal.NewMockClock(time.Time{})
	issuer := newFakeIssuer(clock)
	store := NewStore(issuer, WithStoreClock(clock))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tenant := fmt.Sprintf("company%d", n%3+1)
			_, err := store.GetToken(ctx, tenant, "a@b.com", "pw", false)
			assert.NoError(t, err)
			store.Invalidate(tenant, "other@b.com")
		}(i)
	}
	wg.Wait()

	// All three keys must be resident afterwards.
	before := issuer.requests()
	for n := 1; n <= 3; n++ {
		_, err := store.GetToken(ctx, fmt.Sprintf("company%d", n), "a@b.com", "pw", false)
		require.NoError(t, err)
	}
	assert.Equal(t, before, issuer.requests(), "no entry was lost to a racing write")
}
