// internal/cache/report.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/resaleworks/bookkeeper/internal/config"
	"github.com/resaleworks/bookkeeper/internal/domain"
)

const (
	yearSeriesKeyPrefix = "report:year"
	scanBatchSize       = 100
	defaultReportTTL    = time.Minute
)

// YearSeriesCache caches built monthly series per actor and year. A miss is
// (zero, false, nil); the caller rebuilds and sets. Invalidation is actor
// wide since any record write can shift any bucket of any cached year.
type YearSeriesCache interface {
	GetSeries(ctx context.Context, actor uuid.UUID, year int) (domain.YearSeries, bool, error)
	SetSeries(ctx context.Context, actor uuid.UUID, series domain.YearSeries) error
	InvalidateActor(ctx context.Context, actor uuid.UUID) error
}

type redisYearSeriesCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopYearSeriesCache struct{}

// NewYearSeriesCache builds the redis-backed cache, or the noop cache when
// caching is disabled.
func NewYearSeriesCache(cfg config.CacheConfig) (YearSeriesCache, error) {
	if !cfg.Enabled {
		return &noopYearSeriesCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ReportTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultReportTTL
	}

	return &redisYearSeriesCache{client: client, ttl: ttl}, nil
}

func NewNoopYearSeriesCache() YearSeriesCache {
	return &noopYearSeriesCache{}
}

func (c *redisYearSeriesCache) GetSeries(ctx context.Context, actor uuid.UUID, year int) (domain.YearSeries, bool, error) {
	payload, err := c.client.Get(ctx, yearSeriesKey(actor, year)).Bytes()
	if err == redis.Nil {
		return domain.YearSeries{}, false, nil
	}
	if err != nil {
		return domain.YearSeries{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var series domain.YearSeries
	if err := json.Unmarshal(payload, &series); err != nil {
		return domain.YearSeries{}, false, fmt.Errorf("decode year series cache: %w", err)
	}
	return series, true, nil
}

func (c *redisYearSeriesCache) SetSeries(ctx context.Context, actor uuid.UUID, series domain.YearSeries) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode year series cache: %w", err)
	}
	if err := c.client.Set(ctx, yearSeriesKey(actor, series.Year), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisYearSeriesCache) InvalidateActor(ctx context.Context, actor uuid.UUID) error {
	prefix := fmt.Sprintf("%s:%s:", yearSeriesKeyPrefix, actor)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (n *noopYearSeriesCache) GetSeries(ctx context.Context, actor uuid.UUID, year int) (domain.YearSeries, bool, error) {
	return domain.YearSeries{}, false, nil
}

func (n *noopYearSeriesCache) SetSeries(ctx context.Context, actor uuid.UUID, series domain.YearSeries) error {
	return nil
}

func (n *noopYearSeriesCache) InvalidateActor(ctx context.Context, actor uuid.UUID) error {
	return nil
}

func yearSeriesKey(actor uuid.UUID, year int) string {
	return fmt.Sprintf("%s:%s:%d", yearSeriesKeyPrefix, actor, year)
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
