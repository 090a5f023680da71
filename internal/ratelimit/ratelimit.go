// Package ratelimit throttles unauthenticated public endpoints. Limits
// are enforced per client key over a fixed one-minute window, backed by
// Redis when configured and by an in-process counter otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/specbook/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const window = time.Minute

// Limiter answers whether a key may perform another request within the
// current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// New builds the limiter. Redis is used when REDIS_ADDR is set so that
// limits hold across replicas; otherwise counting is local to the
// process.
func New(p Params) Limiter {
	limit := p.Config.PublicProposalLimit
	if limit <= 0 {
		limit = 30
	}

	if p.Config.RedisAddr == "" {
		p.Log.Named("ratelimit").Info("redis not configured, using in-process limiter")
		return &localLimiter{
			limit:   limit,
			counts:  make(map[string]*windowCount),
			nowFunc: time.Now,
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     p.Config.RedisAddr,
		Password: p.Config.RedisPassword,
	})
	return &redisLimiter{
		client: client,
		limit:  limit,
		log:    p.Log.Named("ratelimit"),
	}
}

type redisLimiter struct {
	client *redis.Client
	limit  int
	log    *zap.Logger
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(window.Seconds()))

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, window)
	if _, err := pipe.Exec(ctx); err != nil {
		// Fail open so a Redis outage does not take the public
		// endpoints down with it.
		l.log.Warn("rate limit check failed", zap.Error(err))
		return true, nil
	}
	return incr.Val() <= int64(l.limit), nil
}

type windowCount struct {
	windowStart int64
	count       int
}

type localLimiter struct {
	mu      sync.Mutex
	limit   int
	counts  map[string]*windowCount
	nowFunc func() time.Time
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, error) {
	bucket := l.nowFunc().Unix() / int64(window.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.counts[key]
	if !ok || entry.windowStart != bucket {
		if len(l.counts) > 10000 {
			l.counts = make(map[string]*windowCount)
		}
		entry = &windowCount{windowStart: bucket}
		l.counts[key] = entry
	}
	entry.count++
	return entry.count <= l.limit, nil
}

// Module wires the public endpoint limiter.
var Module = fx.Module("ratelimit",
	fx.Provide(New),
)
