package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// User is the only persisted resource. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:191;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil
}

// Columns maps the provided fields to column names for a partial UPDATE.
func (p UserPatch) Columns() map[string]any {
	cols := make(map[string]any, 3)
	if p.Username != nil {
		cols["username"] = *p.Username
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Password != nil {
		cols["password"] = *p.Password
	}
	return cols
}

// UserRepository errors: ErrUserExists on unique violations in Create,
// ErrUserNotFound for unknown or malformed ids. Anything else is a store failure.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Update(ctx context.Context, id string, p UserPatch) (*User, error)
	Delete(ctx context.Context, id string) error
}
