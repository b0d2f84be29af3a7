package repo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"users-api/internal/core/cache"
	"users-api/internal/domain"
)

func newCachedRepo(t *testing.T) (*CachedUserRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return NewCachedUserRepo(NewUserRepo(newTestDB(t)), c, time.Minute, zap.NewNop()), mr
}

func TestCachedUserRepo_GetByIDPopulatesCache(t *testing.T) {
	ctx := context.Background()
	r, mr := newCachedRepo(t)
	u := seedUser(t, r, "a", "a@x.com")

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Username)
	assert.True(t, mr.Exists(userKey(u.ID)))

	cached, err := mr.Get(userKey(u.ID))
	require.NoError(t, err)
	assert.NotContains(t, cached, "password")
}

func TestCachedUserRepo_MissIsNotCached(t *testing.T) {
	r, mr := newCachedRepo(t)

	_, err := r.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.False(t, mr.Exists(userKey("nope")))
}

func TestCachedUserRepo_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	r, mr := newCachedRepo(t)
	u := seedUser(t, r, "a", "a@x.com")

	_, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)

	name := "z"
	_, err = r.Update(ctx, u.ID, domain.UserPatch{Username: &name})
	require.NoError(t, err)
	assert.False(t, mr.Exists(userKey(u.ID)))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "z", got.Username)
}

func TestCachedUserRepo_DeleteThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	r, _ := newCachedRepo(t)
	u := seedUser(t, r, "a", "a@x.com")

	_, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, u.ID))
	_, err = r.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCachedUserRepo_List(t *testing.T) {
	r, _ := newCachedRepo(t)
	seedUser(t, r, "a", "a@x.com")

	users, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

// gatedRepo parks the first GetByID after it has read the row.
type gatedRepo struct {
	domain.UserRepository
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (g *gatedRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := g.UserRepository.GetByID(ctx, id)
	g.once.Do(func() {
		close(g.loaded)
		<-g.release
	})
	return u, err
}

func TestCachedUserRepo_DeleteDuringLoadIsNotResurrected(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })

	base := NewUserRepo(newTestDB(t))
	gate := &gatedRepo{UserRepository: base, loaded: make(chan struct{}), release: make(chan struct{})}
	r := NewCachedUserRepo(gate, c, time.Minute, zap.NewNop())
	u := seedUser(t, base, "a", "a@x.com")

	done := make(chan error, 1)
	go func() {
		_, err := r.GetByID(ctx, u.ID)
		done <- err
	}()

	<-gate.loaded
	require.NoError(t, r.Delete(ctx, u.ID))
	close(gate.release)
	require.NoError(t, <-done)

	assert.False(t, mr.Exists(userKey(u.ID)))
	_, err := r.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
