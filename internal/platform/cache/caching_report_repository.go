// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tradedesk_backend/internal/feature/analysis/domain/entity"
	"tradedesk_backend/internal/feature/analysis/usecase"
)

// CachingReportRepository decorates a ReportRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingReportRepository struct {
	inner     usecase.ReportRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingReportRepository decorates a ReportRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "reports".
func NewCachingReportRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ReportRepository, namespace string) *CachingReportRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "reports"
	}
	return &CachingReportRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Save persists a report and invalidates cached entries for its instrument.
func (c *CachingReportRepository) Save(ctx context.Context, report *entity.Report) error {
	// First save to the underlying repository
	if err := c.inner.Save(ctx, report); err != nil {
		return err
	}
	// Exit early if Redis is not configured
	if c.rdb == nil || report == nil {
		return nil
	}

	// Invalidate every cached view of this instrument (latest and history)
	_ = c.deleteByPattern(ctx, c.cacheKeyPrefix(report.InstrumentKey)+"*") // Best effort: don't fail if cache deletion fails
	return nil
}

// FindLatestByInstrument retrieves the most recent report, checking cache
// first then falling back to the database.
func (c *CachingReportRepository) FindLatestByInstrument(ctx context.Context, instrumentKey string) (*entity.Report, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FindLatestByInstrument(ctx, instrumentKey)
	}

	key := c.cacheKeyLatest(instrumentKey)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.Report
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.FindLatestByInstrument(ctx, instrumentKey)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// ListByInstrument retrieves the report history, checking cache first then
// falling back to the database. Each limit gets its own cache entry.
func (c *CachingReportRepository) ListByInstrument(ctx context.Context, instrumentKey string, limit int) ([]entity.Report, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.ListByInstrument(ctx, instrumentKey, limit)
	}

	key := c.cacheKeyHistory(instrumentKey, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Report
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.ListByInstrument(ctx, instrumentKey, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKeyLatest generates the cache key for an instrument's newest report.
func (c *CachingReportRepository) cacheKeyLatest(instrumentKey string) string {
	return c.cacheKeyPrefix(instrumentKey) + "latest"
}

// cacheKeyHistory generates the cache key for an instrument's report history.
func (c *CachingReportRepository) cacheKeyHistory(instrumentKey string, limit int) string {
	return fmt.Sprintf("%shistory:%d", c.cacheKeyPrefix(instrumentKey), limit)
}

// cacheKeyPrefix generates a prefix shared by all cache entries of one instrument.
func (c *CachingReportRepository) cacheKeyPrefix(instrumentKey string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(instrumentKey))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingReportRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	// Simple escaping of characters that are problematic for Redis keys
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
