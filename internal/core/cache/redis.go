package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// genTTL bounds how long an invalidation marker outlives its key.
const genTTL = 24 * time.Hour

var errStale = errors.New("cache: key invalidated during load")

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
	log *zap.Logger
}

func New(addr, pass string, db int, l *zap.Logger) *Cache {
	if l == nil {
		l = zap.NewNop()
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		log: l,
	}
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func genKey(key string) string { return key + ":gen" }

// GetOrLoad returns the cached bytes for key, or runs load once per key across
// concurrent callers and stores its result. Load errors are never cached, and
// a result is dropped instead of stored when Invalidate ran during the load.
// The shared load is detached from the first caller's cancellation.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	b, err := c.RDB.Get(ctx, key).Bytes()
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, redis.Nil) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("cache read failed, loading from source", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		gen, gerr := c.generation(lctx, key)
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		if gerr != nil {
			return b, nil
		}
		if e := c.store(lctx, key, gen, b, ttl); e != nil {
			if errors.Is(e, errStale) || errors.Is(e, redis.TxFailedErr) {
				c.log.Debug("cache store skipped, key invalidated during load", zap.String("key", key))
			} else {
				c.log.Warn("cache store failed", zap.String("key", key), zap.Error(e))
			}
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) generation(ctx context.Context, key string) (int64, error) {
	g, err := c.RDB.Get(ctx, genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.log.Warn("cache generation read failed", zap.String("key", key), zap.Error(err))
	}
	return g, err
}

// store writes b under key only if its generation still equals gen.
func (c *Cache) store(ctx context.Context, key string, gen int64, b []byte, ttl time.Duration) error {
	gk := genKey(key)
	return c.RDB.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}, gk)
}

// Invalidate deletes keys and bumps their generations so loads already in
// flight do not write them back.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, k := range keys {
		c.sf.Forget(k)
	}
	_, err := c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, genKey(k))
			p.Expire(ctx, genKey(k), genTTL)
		}
		p.Del(ctx, keys...)
		return nil
	})
	return err
}
