package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kjsb_flow_app_go/config"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// FeatureCache holds rendered map payloads keyed by the applicant-name
// filter. Invalidate drops every entry at once.
type FeatureCache interface {
	Get(ctx context.Context, filter string) ([]byte, bool)
	Set(ctx context.Context, filter string, payload []byte)
	Invalidate(ctx context.Context)
}

// Cache is the global feature cache. It never caches until InitializeCache
// finds a redis server.
var Cache FeatureCache = NoopCache{}

// NoopCache is used when redis is not configured
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(context.Context, string, []byte) {}
func (NoopCache) Invalidate(context.Context) {}

const featureCachePrefix = "kjsb:features:"

// RedisCache stores payloads under a generation number. Invalidating bumps
// the generation so stale entries are never read again and expire by TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisCache wraps a redis client
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: zap.L().Named("feature_cache")}
}

// InitializeCache connects to redis when REDIS_ADDR is set
func InitializeCache(cfg *config.Config) {
	log := zap.L().Named("feature_cache")
	if cfg.RedisAddr == "" {
		Cache = NoopCache{}
		log.Info("feature cache disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, feature cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		Cache = NoopCache{}
		return
	}

	Cache = NewRedisCache(client, time.Duration(cfg.FeatureCacheTTLSeconds)*time.Second)
	log.Info("feature cache ready", zap.String("addr", cfg.RedisAddr))
}

func (r *RedisCache) generation(ctx context.Context) (string, error) {
	gen, err := r.client.Get(ctx, featureCachePrefix+"gen").Result()
	if err == redis.Nil {
		return "0", nil
	}
	return gen, err
}

func (r *RedisCache) key(gen, filter string) string {
	return fmt.Sprintf("%sv%s:%s", featureCachePrefix, gen, strings.ToLower(strings.TrimSpace(filter)))
}

// Get returns the cached payload for filter. Redis errors count as a miss.
func (r *RedisCache) Get(ctx context.Context, filter string) ([]byte, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.log.Warn("read generation failed", zap.Error(err))
		return nil, false
	}
	payload, err := r.client.Get(ctx, r.key(gen, filter)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores payload for filter under the current generation
func (r *RedisCache) Set(ctx context.Context, filter string, payload []byte) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.log.Warn("read generation failed", zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, r.key(gen, filter), payload, r.ttl).Err(); err != nil {
		r.log.Warn("cache write failed", zap.Error(err))
	}
}

// Invalidate starts a new generation
func (r *RedisCache) Invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, featureCachePrefix+"gen").Err(); err != nil {
		r.log.Warn("cache invalidate failed", zap.Error(err))
	}
}
