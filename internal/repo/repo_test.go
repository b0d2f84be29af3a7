package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"users-api/internal/core/database"
	"users-api/internal/domain"
	"users-api/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      "file:" + utils.NewID() + "?mode=memory&cache=shared",
		LogLevel: "silent",
		// one connection serializes writers, as a server-side store would
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func seedUser(t *testing.T, r domain.UserRepository, username, email string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: email, Password: "hash"}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}
