package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
)

var _ port.ServiceConfigReader = (*RemoteConfig)(nil)

const (
	remoteConfigCacheKeyPrefix = "finsearch_serviceconfig_"
	defaultRemoteConfigTTL     = time.Hour
)

// RemoteConfig resolves per shop service configuration, caching it for TTL.
type RemoteConfig struct {
	cache   port.ConfigCache
	fetcher port.ConfigFetcher
	ttl     time.Duration
	now     func() time.Time
}

type RemoteConfigOpt func(*RemoteConfig)

func RemoteConfigTTLOpt(ttl time.Duration) RemoteConfigOpt {
	return func(rc *RemoteConfig) {
		if ttl > 0 {
			rc.ttl = ttl
		}
	}
}

func RemoteConfigClockOpt(now func() time.Time) RemoteConfigOpt {
	return func(rc *RemoteConfig) {
		if now != nil {
			rc.now = now
		}
	}
}

func NewRemoteConfig(
	cache port.ConfigCache, fetcher port.ConfigFetcher, opts ...RemoteConfigOpt,
) *RemoteConfig {
	rc := &RemoteConfig{
		cache:   cache,
		fetcher: fetcher,
		ttl:     defaultRemoteConfigTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

func RemoteConfigCacheKey(shopKey string) string {
	return remoteConfigCacheKeyPrefix + shopKey
}

// Get returns a single config field. Unknown field names fail with
// [*domain.UnknownConfigKeyError] before the cache is consulted.
func (rc *RemoteConfig) Get(ctx context.Context, shopKey, field string) (any, error) {
	const op = "RemoteConfig.Get"

	if !domain.IsConfigField(field) {
		return nil, fmt.Errorf("%s: %w", op, &domain.UnknownConfigKeyError{Key: field})
	}

	cfg, err := rc.load(ctx, shopKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cfg.Field(field)
}

func (rc *RemoteConfig) IsDirectIntegrationEnabled(ctx context.Context, shopKey string) (bool, error) {
	v, err := rc.Get(ctx, shopKey, "enabled")
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (rc *RemoteConfig) IsStaging(ctx context.Context, shopKey string) (bool, error) {
	v, err := rc.Get(ctx, shopKey, "isStaging")
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (rc *RemoteConfig) SmartSuggestBlocks(ctx context.Context, shopKey string) ([]string, error) {
	v, err := rc.Get(ctx, shopKey, "smartSuggestBlocks")
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (rc *RemoteConfig) load(ctx context.Context, shopKey string) (domain.RemoteServiceConfig, error) {
	const op = "RemoteConfig.load"
	log := slog.With("op", op, "shopkey", shopKey)

	key := RemoteConfigCacheKey(shopKey)

	raw, ok, err := rc.cache.Get(ctx, key)
	if err != nil {
		log.Warn("failed to read config cache", "err", err)
		ok = false
	}

	if ok {
		cfg, err := decodeRemoteConfig(raw)
		switch {
		case err != nil:
			log.Warn("discarding cached config", "err", err)
		case !cfg.IsExpired(rc.now()):
			return cfg, nil
		}
	}

	cfg, err := rc.fetch(ctx, shopKey)
	if err != nil {
		return domain.RemoteServiceConfig{}, err
	}

	if err := rc.store(ctx, key, cfg); err != nil {
		log.Warn("failed to write config cache", "err", err)
	}
	return cfg, nil
}

func (rc *RemoteConfig) fetch(ctx context.Context, shopKey string) (domain.RemoteServiceConfig, error) {
	payload, err := rc.fetcher.FetchConfig(ctx, shopKey)
	if err != nil {
		var fetchErr *domain.RemoteFetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.RemoteFetchError{Err: err}
		}
		return domain.RemoteServiceConfig{}, err
	}

	blocks := make([]string, len(payload.Blocks))
	copy(blocks, payload.Blocks)

	return domain.RemoteServiceConfig{
		ShopKey:            shopKey,
		Enabled:            payload.DirectIntegration.Enabled,
		IsStaging:          payload.IsStagingShop,
		SmartSuggestBlocks: blocks,
		ExpireAt:           rc.now().Add(rc.ttl),
	}, nil
}

func (rc *RemoteConfig) store(ctx context.Context, key string, cfg domain.RemoteServiceConfig) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return rc.cache.Set(ctx, key, b)
}

func decodeRemoteConfig(raw []byte) (domain.RemoteServiceConfig, error) {
	var cfg domain.RemoteServiceConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return domain.RemoteServiceConfig{}, &domain.DeserializationError{Err: err}
	}
	if cfg.ShopKey == "" || cfg.ExpireAt.IsZero() {
		return domain.RemoteServiceConfig{}, &domain.DeserializationError{
			Err: errors.New("missing shopkey or expiry"),
		}
	}
	return cfg, nil
}
