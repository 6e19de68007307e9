package service

import (
	"errors"
	"testing"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testShopKey = "ABCDABCDABCDABCDABCDABCDABCDABCD"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func testPayload(enabled bool) domain.RemoteConfigPayload {
	var p domain.RemoteConfigPayload
	p.DirectIntegration.Enabled = enabled
	p.IsStagingShop = true
	p.Blocks = []string{"cat", "vendor"}
	return p
}

func newTestRemoteConfig(
	cache *mapCache, fetcher *MockConfigFetcher, clock *testClock,
) *RemoteConfig {
	return NewRemoteConfig(cache, fetcher,
		RemoteConfigTTLOpt(time.Hour),
		RemoteConfigClockOpt(clock.Now),
	)
}

func TestRemoteConfig(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("FetchesOncePerTTL", func(t *testing.T) {
		cache, fetcher, clock := newMapCache(), new(MockConfigFetcher), &testClock{t0}
		fetcher.On("FetchConfig", mock.Anything, testShopKey).Return(testPayload(true), nil)
		rc := newTestRemoteConfig(cache, fetcher, clock)

		enabled, err := rc.IsDirectIntegrationEnabled(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.True(t, enabled)

		clock.now = t0.Add(59 * time.Minute)
		staging, err := rc.IsStaging(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.True(t, staging)

		blocks, err := rc.SmartSuggestBlocks(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "vendor"}, blocks)

		fetcher.AssertNumberOfCalls(t, "FetchConfig", 1)
		_, ok := cache.values[RemoteConfigCacheKey(testShopKey)]
		assert.True(t, ok)
	})

	t.Run("RefetchesAfterExpiry", func(t *testing.T) {
		cache, fetcher, clock := newMapCache(), new(MockConfigFetcher), &testClock{t0}
		fetcher.On("FetchConfig", mock.Anything, testShopKey).Return(testPayload(false), nil).Once()
		fetcher.On("FetchConfig", mock.Anything, testShopKey).Return(testPayload(true), nil).Once()
		rc := newTestRemoteConfig(cache, fetcher, clock)

		enabled, err := rc.IsDirectIntegrationEnabled(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.False(t, enabled)

		clock.now = t0.Add(time.Hour + time.Second)
		enabled, err = rc.IsDirectIntegrationEnabled(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.True(t, enabled)

		fetcher.AssertNumberOfCalls(t, "FetchConfig", 2)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		cache, fetcher, clock := newMapCache(), new(MockConfigFetcher), &testClock{t0}
		cache.getErr = errors.New("must not be read")
		rc := newTestRemoteConfig(cache, fetcher, clock)

		_, err := rc.Get(t.Context(), testShopKey, "colour")

		var unknown *domain.UnknownConfigKeyError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "colour", unknown.Key)
		fetcher.AssertNotCalled(t, "FetchConfig", mock.Anything, mock.Anything)
	})

	t.Run("CorruptCacheIsAMiss", func(t *testing.T) {
		cache, fetcher, clock := newMapCache(), new(MockConfigFetcher), &testClock{t0}
		cache.values[RemoteConfigCacheKey(testShopKey)] = []byte("{not json")
		fetcher.On("FetchConfig", mock.Anything, testShopKey).Return(testPayload(true), nil)
		rc := newTestRemoteConfig(cache, fetcher, clock)

		v, err := rc.Get(t.Context(), testShopKey, "shopkey")
		require.NoError(t, err)
		assert.Equal(t, testShopKey, v)

		fetcher.AssertNumberOfCalls(t, "FetchConfig", 1)
		cfg, err := decodeRemoteConfig(cache.values[RemoteConfigCacheKey(testShopKey)])
		require.NoError(t, err)
		assert.True(t, t0.Add(time.Hour).Equal(cfg.ExpireAt))
	})

	t.Run("CacheReadErrorIsAMiss", func(t *testing.T) {
		cache, fetcher, clock := newMapCache(), new(MockConfigFetcher), &testClock{t0}
		cache.getErr = errors.New("disk full")
		fetcher.On("FetchConfig", mock.Anything, testShopKey).Return(testPayload(true), nil)
		rc := newTestRemoteConfig(cache, fetcher, clock)

		enabled, err := rc.IsDirectIntegrationEnabled(t.Context(), testShopKey)
		require.NoError(t, err)
		assert.True(t, enabled)
	})

	t.Run("FetchErrorIsRemoteFetchError", func(t *testing.T) {
		cache, fetcher, clock := newMapCache(), new(MockConfigFetcher), &testClock{t0}
		errNetwork := errors.New("connection refused")
		fetcher.On("FetchConfig", mock.Anything, testShopKey).
			Return(domain.RemoteConfigPayload{}, errNetwork)
		rc := newTestRemoteConfig(cache, fetcher, clock)

		_, err := rc.IsStaging(t.Context(), testShopKey)

		var fetchErr *domain.RemoteFetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, errNetwork)
		assert.Empty(t, cache.values)
	})

	t.Run("DefaultTTL", func(t *testing.T) {
		rc := NewRemoteConfig(newMapCache(), new(MockConfigFetcher), RemoteConfigTTLOpt(0))
		assert.Equal(t, defaultRemoteConfigTTL, rc.ttl)
	})
}

func TestDecodeRemoteConfig(t *testing.T) {
	_, err := decodeRemoteConfig([]byte(`{"shopkey":""}`))
	var deserErr *domain.DeserializationError
	assert.ErrorAs(t, err, &deserErr)
}
