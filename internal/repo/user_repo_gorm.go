package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"users-api/internal/core/database"
	"users-api/internal/domain"
	"users-api/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Create relies on the unique indexes; there is no pre-check, so two racing
// inserts resolve to exactly one ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return fmt.Errorf("create user: %w", domain.ErrUserExists)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !utils.ValidID(id) {
		return nil, domain.ErrUserNotFound
	}
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if !p.Empty() {
		err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(p.Columns()).Error
		if err != nil {
			if database.IsDuplicateKey(err) {
				return nil, fmt.Errorf("update user %s: %w", id, domain.ErrUserExists)
			}
			return nil, fmt.Errorf("update user %s: %w", id, err)
		}
	}
	// a concurrent delete between the write and this read reports not found
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	if !utils.ValidID(id) {
		return domain.ErrUserNotFound
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
