package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "mongo"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGorm_SQLiteTranslatesUniqueViolation(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:dbtest?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)

	type thing struct {
		ID   uint   `gorm:"primaryKey"`
		Name string `gorm:"uniqueIndex"`
	}
	require.NoError(t, db.AutoMigrate(&thing{}))
	require.NoError(t, db.Create(&thing{Name: "a"}).Error)

	err = db.Create(&thing{Name: "a"}).Error
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
	assert.True(t, IsDuplicateKey(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.True(t, IsDuplicateKey(errors.New("Error 1062: Duplicate entry 'a' for key 'username'")))
}

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{"native passes through", "u:p@tcp(db:3306)/app", "", "", "u:p@tcp(db:3306)/app"},
		{"url form", "mysql://u:p@db:3306/app", "", "", "u:p@tcp(db:3306)/app?charset=utf8mb4&parseTime=true"},
		{"jdbc prefix with overrides", "jdbc:mysql://db:3306/app?charset=latin1", "root", "pw", "root:pw@tcp(db:3306)/app?charset=latin1&parseTime=true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}
