package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"ict-ticketing/internal/domain/user"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if detail, ok := uniqueViolation(err); ok {
		if mentions(detail, "ux_users_email", "users.email") {
			return user.ErrDuplicateEmail
		}
		return user.ErrDuplicateUsername
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*user.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) first(ctx context.Context, cond string, arg any) (*user.User, error) {
	var out user.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&out).Error; err != nil {
		return nil, notFound(err, user.ErrNotFound)
	}
	return &out, nil
}
