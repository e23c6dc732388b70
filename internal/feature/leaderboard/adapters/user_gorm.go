// Package adapters provides the gorm repository implementations for the
// leaderboard feature.
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"leaderboard_backend/internal/feature/leaderboard/domain"
	"leaderboard_backend/internal/feature/leaderboard/domain/entity"
	"leaderboard_backend/internal/feature/leaderboard/usecase"
)

// rankedOrder is the deterministic leaderboard order: points descending,
// ties broken by creation time then id so equal totals keep a stable rank.
const rankedOrder = "total_points DESC, created_at ASC, id ASC"

// userGorm implements the UserRepository interface on gorm.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check that userGorm satisfies the usecase interface.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a user repository backed by the given gorm.DB.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create persists a new user.
// It returns domain.ErrNameTaken when another user already holds the name in
// any letter case: the unique index on LOWER(name) catches creates that
// race past the usecase's pre-check.
func (r *userGorm) Create(ctx context.Context, user *entity.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrNameTaken
		}
		return err
	}
	return nil
}

// FindByID retrieves a user by id.
// It returns domain.ErrUserNotFound if no such user exists.
func (r *userGorm) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByNameFold retrieves a user whose name matches case-insensitively.
// It returns domain.ErrUserNotFound if no such user exists.
func (r *userGorm) FindByNameFold(ctx context.Context, name string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListRanked returns all users in leaderboard order.
func (r *userGorm) ListRanked(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Order(rankedOrder).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListPage returns one page of users in leaderboard order.
func (r *userGorm) ListPage(ctx context.Context, offset, limit int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Order(rankedOrder).
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the total number of users.
func (r *userGorm) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateRank writes a user's rank without touching other columns or the
// updated_at timestamp.
func (r *userGorm) UpdateRank(ctx context.Context, id uint, rank int) error {
	return r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		UpdateColumn("rank", rank).Error
}

// AddPoints increments a user's total points with a single store-side UPDATE
// and returns the refreshed row. Concurrent claims for the same user both
// land because neither performs a read-modify-write on the total.
// It returns domain.ErrUserNotFound if no such user exists.
func (r *userGorm) AddPoints(ctx context.Context, id uint, points int) (*entity.User, error) {
	var u entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.User{}).
			Where("id = ?", id).
			UpdateColumn("total_points", gorm.Expr("total_points + ?", points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}
		return tx.First(&u, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
