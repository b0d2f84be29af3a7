package repo

import (
	"context"
	"time"

	"go.uber.org/zap"

	"users-api/internal/core/cache"
	"users-api/internal/domain"
)

// CachedUserRepo puts a Redis read-through cache in front of GetByID.
// Misses are not cached, and Update/Delete drop the entry once the store
// write succeeds, so a deleted user is never served from cache.
type CachedUserRepo struct {
	next  domain.UserRepository
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedUserRepo(next domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *CachedUserRepo {
	return &CachedUserRepo{next: next, cache: c, ttl: ttl, log: l}
}

func userKey(id string) string { return "users:" + id }

func (r *CachedUserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.next.Create(ctx, u)
}

func (r *CachedUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return r.next.List(ctx)
}

func (r *CachedUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return cache.GetOrLoadJSON(r.cache, ctx, userKey(id), r.ttl, func(ctx context.Context) (*domain.User, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *CachedUserRepo) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	u, err := r.next.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, id)
	return u, nil
}

func (r *CachedUserRepo) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedUserRepo) invalidate(ctx context.Context, id string) {
	if err := r.cache.Invalidate(ctx, userKey(id)); err != nil {
		r.log.Warn("user cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}
