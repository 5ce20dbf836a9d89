package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"GameIngest/internal/interfaces"
	"GameIngest/internal/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	provider  string
	calls     int
	expiresIn int64
	err       error
}

func (f *countingFetcher) Provider() string { return f.provider }

func (f *countingFetcher) FetchToken(ctx context.Context) (*model.TokenResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.TokenResponse{
		AccessToken: f.provider + "-token",
		ExpiresIn:   f.expiresIn,
		TokenType:   "bearer",
	}, nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newCache(fetchers ...*countingFetcher) (*TokenCache, *fakeClock) {
	logger, _ := test.NewNullLogger()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	fs := make([]interfaces.TokenFetcher, 0, len(fetchers))
	for _, f := range fetchers {
		fs = append(fs, f)
	}
	return NewTokenCache(logger, fs...).WithClock(clock.Now), clock
}

func TestTokenCache_ReusesTokenWithinWindow(t *testing.T) {
	f := &countingFetcher{provider: "catalog", expiresIn: 3600}
	cache, clock := newCache(f)
	ctx := context.Background()

	first, err := cache.Token(ctx, "catalog")
	require.NoError(t, err)
	clock.t = clock.t.Add(30 * time.Minute)
	second, err := cache.Token(ctx, "catalog")
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "catalog-token", second.AccessToken)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), second.ExpiresAt)
}

func TestTokenCache_RefreshesAfterExpiry(t *testing.T) {
	f := &countingFetcher{provider: "catalog", expiresIn: 60}
	cache, clock := newCache(f)
	ctx := context.Background()

	_, err := cache.Token(ctx, "catalog")
	require.NoError(t, err)

	clock.t = clock.t.Add(61 * time.Second)
	refreshed, err := cache.Token(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
	assert.Equal(t, clock.t.Add(60*time.Second), refreshed.ExpiresAt)

	_, err = cache.Token(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestTokenCache_ProvidersAreIndependent(t *testing.T) {
	catalog := &countingFetcher{provider: "catalog", expiresIn: 60}
	marketplace := &countingFetcher{provider: "marketplace", expiresIn: 7200}
	cache, clock := newCache(catalog, marketplace)
	ctx := context.Background()

	_, err := cache.Token(ctx, "catalog")
	require.NoError(t, err)
	_, err = cache.Token(ctx, "marketplace")
	require.NoError(t, err)

	clock.t = clock.t.Add(10 * time.Minute)
	_, err = cache.Token(ctx, "catalog")
	require.NoError(t, err)
	_, err = cache.Token(ctx, "marketplace")
	require.NoError(t, err)

	assert.Equal(t, 2, catalog.calls)
	assert.Equal(t, 1, marketplace.calls)
}

func TestTokenCache_FetchErrorIsNotCached(t *testing.T) {
	f := &countingFetcher{provider: "marketplace", err: errors.New("boom")}
	cache, _ := newCache(f)
	ctx := context.Background()

	_, err := cache.Token(ctx, "marketplace")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	f.err = nil
	f.expiresIn = 100
	tok, err := cache.Token(ctx, "marketplace")
	require.NoError(t, err)
	assert.Equal(t, "marketplace-token", tok.AccessToken)
	assert.Equal(t, 2, f.calls)
}

func TestTokenCache_UnknownProvider(t *testing.T) {
	cache, _ := newCache()
	_, err := cache.Token(context.Background(), "nope")
	assert.Error(t, err)
}

func TestTokenCache_Invalidate(t *testing.T) {
	f := &countingFetcher{provider: "catalog", expiresIn: 3600}
	cache, _ := newCache(f)
	ctx := context.Background()

	_, err := cache.Token(ctx, "catalog")
	require.NoError(t, err)
	cache.Invalidate("catalog")
	_, err = cache.Token(ctx, "catalog")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}
