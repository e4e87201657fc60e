package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tournament-registration/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProfileCache stores verified profiles for a short time so a CheckPlayer
// preview followed by a Join costs one round of Riot calls.
type ProfileCache interface {
	Get(ctx context.Context, key string) (*PlayerProfile, bool, error)
	Set(ctx context.Context, key string, p *PlayerProfile, ttl time.Duration) error
}

type RedisProfileCache struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisProfileCache(rdb redis.Cmdable) *RedisProfileCache {
	return &RedisProfileCache{rdb: rdb, prefix: "riot:profile:"}
}

func (c *RedisProfileCache) Get(ctx context.Context, key string) (*PlayerProfile, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var p PlayerProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("decoding cached profile: %w", err)
	}
	return &p, true, nil
}

func (c *RedisProfileCache) Set(ctx context.Context, key string, p *PlayerProfile, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return c.rdb.Set(ctx, c.prefix+key, raw, ttl).Err()
}

// CachedVerifier wraps a PlayerVerifier with a ProfileCache. Only successful
// verifications are cached; cache failures fall through to the provider.
type CachedVerifier struct {
	next   PlayerVerifier
	cache  ProfileCache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedVerifier(next PlayerVerifier, cache ProfileCache, ttl time.Duration, logger *zap.Logger) *CachedVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedVerifier{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (v *CachedVerifier) Verify(ctx context.Context, identifier string, game models.GameType, primaryRegion string) (*PlayerProfile, error) {
	if _, _, err := ParseRiotID(identifier); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%d:%s:%s", game, primaryRegion, models.FoldKey(identifier))

	p, ok, err := v.cache.Get(ctx, key)
	if err != nil {
		v.logger.Warn("⚠️ profile cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		return p, nil
	}

	p, err = v.next.Verify(ctx, identifier, game, primaryRegion)
	if err != nil {
		return nil, err
	}
	if err := v.cache.Set(ctx, key, p, v.ttl); err != nil {
		v.logger.Warn("⚠️ profile cache write failed", zap.String("key", key), zap.Error(err))
	}
	return p, nil
}
