package adapters

import (
	"context"

	"gorm.io/gorm"

	"leaderboard_backend/internal/feature/leaderboard/domain/entity"
	"leaderboard_backend/internal/feature/leaderboard/usecase"
)

// historyOrder lists the newest claims first; id breaks ties between claims
// sharing a timestamp.
const historyOrder = "claimed_at DESC, id DESC"

// historyGorm implements the HistoryRepository interface on gorm.
type historyGorm struct {
	db *gorm.DB
}

var _ usecase.HistoryRepository = (*historyGorm)(nil)

// NewHistoryGorm creates a history repository backed by the given gorm.DB.
func NewHistoryGorm(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

// Create appends a new history entry. Entries are never updated or deleted.
func (r *historyGorm) Create(ctx context.Context, entry *entity.PointHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns one page of history entries, newest first, optionally
// filtered to a single user.
func (r *historyGorm) List(ctx context.Context, userID *uint, offset, limit int) ([]entity.PointHistory, error) {
	q := r.db.WithContext(ctx).Model(&entity.PointHistory{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var entries []entity.PointHistory
	err := q.Order(historyOrder).
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of history entries, optionally filtered to a
// single user.
func (r *historyGorm) Count(ctx context.Context, userID *uint) (int64, error) {
	q := r.db.WithContext(ctx).Model(&entity.PointHistory{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
