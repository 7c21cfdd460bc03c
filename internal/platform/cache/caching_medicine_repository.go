// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"medicine_backend/internal/feature/medicine/domain"
	"medicine_backend/internal/feature/medicine/domain/entity"
	"medicine_backend/internal/feature/medicine/usecase"
)

const dayKeyLayout = "2006-01-02"

// CachingMedicineRepository decorates a MedicineRepository with a Redis cache
// for List results. Every write by an owner drops that owner's cached lists.
// Derived warnings are not cached; they are computed by the caller on each read.
//
// List keys carry a per-owner generation counter that writes increment. A List
// that read the database before a concurrent write stores its result under the
// old generation, which no later List reads, so it is never served.
type CachingMedicineRepository struct {
	inner     usecase.MedicineRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.MedicineRepository = (*CachingMedicineRepository)(nil)

// NewCachingMedicineRepository decorates a MedicineRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "meds".
func NewCachingMedicineRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MedicineRepository, namespace string) *CachingMedicineRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "meds"
	}
	return &CachingMedicineRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// Create stores the medicine and invalidates the owner's lists.
func (c *CachingMedicineRepository) Create(ctx context.Context, m *entity.Medicine) error {
	if err := c.inner.Create(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, m.OwnerID)
	return nil
}

// List returns the owner's medicines, checking cache first then falling back to the database.
func (c *CachingMedicineRepository) List(ctx context.Context, ownerID string, window *domain.DateRange) ([]entity.Medicine, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.List(ctx, ownerID, window)
	}

	// 0) Resolve the owner's generation before touching the database
	gen, err := c.generation(ctx, ownerID)
	if err != nil {
		slog.Debug("medicine cache generation read failed", "owner_id", ownerID, "error", err)
		return c.inner.List(ctx, ownerID, window)
	}
	key := c.cacheKey(ownerID, gen, window)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Medicine
		if err := json.Unmarshal(b, &out); err == nil && out != nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.List(ctx, ownerID, window)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, c.ttlFor(window)).Err(); err != nil {
			slog.Debug("medicine list cache write failed", "key", key, "error", err)
		}
	}

	return out, nil
}

// FindByID is not cached.
func (c *CachingMedicineRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Medicine, error) {
	return c.inner.FindByID(ctx, ownerID, id)
}

// Update writes through and invalidates the owner's lists.
func (c *CachingMedicineRepository) Update(ctx context.Context, m *entity.Medicine) error {
	if err := c.inner.Update(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, m.OwnerID)
	return nil
}

// Delete removes the medicine and invalidates the owner's lists.
func (c *CachingMedicineRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := c.inner.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	c.invalidate(ctx, ownerID)
	return nil
}

// AppendIntake appends to the log and invalidates the owner's lists, which embed the log.
func (c *CachingMedicineRepository) AppendIntake(ctx context.Context, ownerID, id string, ev entity.IntakeEvent) (*entity.Medicine, error) {
	m, err := c.inner.AppendIntake(ctx, ownerID, id, ev)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, ownerID)
	return m, nil
}

// invalidate bumps the owner's generation and drops the owner's cached lists.
// Failures are logged, not returned.
func (c *CachingMedicineRepository) invalidate(ctx context.Context, ownerID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.generationKey(ownerID)).Err(); err != nil {
		slog.Warn("medicine cache generation bump failed", "owner_id", ownerID, "error", err)
	}
	pattern := c.cacheKeyPrefix(ownerID) + "*"
	if err := c.deleteByPattern(ctx, pattern); err != nil {
		slog.Warn("medicine cache invalidation failed", "pattern", pattern, "error", err)
	}
}

// generation returns the owner's current generation; "0" when none was recorded yet.
func (c *CachingMedicineRepository) generation(ctx context.Context, ownerID string) (string, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey(ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// ttlFor caps windowed entries at the next UTC midnight, when the window moves.
func (c *CachingMedicineRepository) ttlFor(window *domain.DateRange) time.Duration {
	if window == nil {
		return c.ttl
	}
	return min(c.ttl, TimeUntilNextDay(c.now()))
}

// cacheKey generates a cache key for a specific query.
func (c *CachingMedicineRepository) cacheKey(ownerID, gen string, window *domain.DateRange) string {
	if window == nil {
		return fmt.Sprintf("%sg%s:all", c.cacheKeyPrefix(ownerID), gen)
	}
	return fmt.Sprintf("%sg%s:%s_%s",
		c.cacheKeyPrefix(ownerID),
		gen,
		window.From.UTC().Format(dayKeyLayout),
		window.To.UTC().Format(dayKeyLayout),
	)
}

// cacheKeyPrefix generates a prefix for invalidating an owner's entries.
func (c *CachingMedicineRepository) cacheKeyPrefix(ownerID string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(ownerID))
}

// generationKey は所有者の世代カウンタのキーです。cacheKeyPrefix の外に置き、無効化で消えないようにします。
func (c *CachingMedicineRepository) generationKey(ownerID string) string {
	return fmt.Sprintf("%s:gen:%s", c.namespace, safe(ownerID))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingMedicineRepository) deleteByPattern(ctx context.Context, pattern string) error {
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
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
