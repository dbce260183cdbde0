package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"biotrack/internal/core/cache"
	"biotrack/internal/domain"
)

// LatestCache memoizes the latest measure of a user. Forget must be called after
// any write that can change it.
type LatestCache interface {
	Latest(ctx context.Context, userID uint, load func(context.Context) (*domain.Measure, error)) (*domain.Measure, error)
	Forget(ctx context.Context, userID uint)
}

type noCache struct{}

func (noCache) Latest(ctx context.Context, _ uint, load func(context.Context) (*domain.Measure, error)) (*domain.Measure, error) {
	return load(ctx)
}

func (noCache) Forget(context.Context, uint) {}

// RedisLatestCache stores the latest measure as JSON under
// biotrack:latest:<userID>:<version>. Forget bumps biotrack:latest:ver:<userID>,
// so a load that raced with a write stores into a key no reader asks for.
// A user without measures is cached as null.
type RedisLatestCache struct {
	c   *cache.Cache
	ttl time.Duration
	log *zap.Logger
}

func NewRedisLatestCache(c *cache.Cache, ttl time.Duration, l *zap.Logger) *RedisLatestCache {
	if l == nil {
		l = zap.NewNop()
	}
	return &RedisLatestCache{c: c, ttl: ttl, log: l}
}

func versionKey(userID uint) string {
	return "biotrack:latest:ver:" + strconv.FormatUint(uint64(userID), 10)
}

func latestKey(userID uint, ver int64) string {
	return "biotrack:latest:" + strconv.FormatUint(uint64(userID), 10) + ":" + strconv.FormatInt(ver, 10)
}

func (r *RedisLatestCache) Latest(ctx context.Context, userID uint, load func(context.Context) (*domain.Measure, error)) (*domain.Measure, error) {
	ver, err := r.c.Version(ctx, versionKey(userID))
	if err != nil {
		// without a version nothing may be cached safely
		return load(ctx)
	}
	return cache.GetOrLoadJSON[domain.Measure](r.c, ctx, latestKey(userID, ver), r.ttl, load)
}

func (r *RedisLatestCache) Forget(ctx context.Context, userID uint) {
	if err := r.c.Bump(ctx, versionKey(userID)); err != nil {
		r.log.Warn("latest measure cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}
