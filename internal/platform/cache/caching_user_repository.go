// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leaderboard_backend/internal/feature/leaderboard/domain/entity"
	"leaderboard_backend/internal/feature/leaderboard/usecase"
)

// CachingUserRepository decorates a UserRepository with Redis caching of the
// leaderboard page queries. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
//
// Every write (user creation, point award, rank update) invalidates the
// whole namespace, so pages served from cache are at most ttl old and never
// survive a claim.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 30 seconds. If namespace is empty, it uses
// "leaderboard".
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if namespace == "" {
		namespace = "leaderboard"
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists a new user and invalidates cached pages.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := c.inner.Create(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID is a pass-through; single-row lookups are not cached.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return c.inner.FindByID(ctx, id)
}

// FindByNameFold is a pass-through; the uniqueness check must see the
// latest data.
func (c *CachingUserRepository) FindByNameFold(ctx context.Context, name string) (*entity.User, error) {
	return c.inner.FindByNameFold(ctx, name)
}

// ListRanked is a pass-through; the ranking pass must read fresh totals.
func (c *CachingUserRepository) ListRanked(ctx context.Context) ([]entity.User, error) {
	return c.inner.ListRanked(ctx)
}

// ListPage retrieves one leaderboard page, checking cache first then
// falling back to the database.
func (c *CachingUserRepository) ListPage(ctx context.Context, offset, limit int) ([]entity.User, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.ListPage(ctx, offset, limit)
	}

	key := fmt.Sprintf("%s:page:%d:%d", c.namespace, offset, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.ListPage(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Count returns the user total, checking cache first then falling back to
// the database.
func (c *CachingUserRepository) Count(ctx context.Context) (int64, error) {
	if c.rdb == nil {
		return c.inner.Count(ctx)
	}

	key := c.namespace + ":count"

	if raw, err := c.rdb.Get(ctx, key).Int64(); err == nil {
		return raw, nil
	}

	total, err := c.inner.Count(ctx)
	if err != nil {
		return 0, err
	}

	_ = c.rdb.Set(ctx, key, total, c.ttl).Err()
	return total, nil
}

// UpdateRank writes through to the database and invalidates cached pages.
func (c *CachingUserRepository) UpdateRank(ctx context.Context, id uint, rank int) error {
	if err := c.inner.UpdateRank(ctx, id, rank); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// AddPoints writes through to the database and invalidates cached pages.
func (c *CachingUserRepository) AddPoints(ctx context.Context, id uint, points int) (*entity.User, error) {
	u, err := c.inner.AddPoints(ctx, id, points)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return u, nil
}

// invalidate drops every cached entry in the namespace. Best effort: a
// failed invalidation only shortens to the TTL how long a stale page lives.
func (c *CachingUserRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, c.namespace+":*")
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUserRepository) deleteByPattern(ctx context.Context, pattern string) error {
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
