package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/streamsentry/streamsentry/pkg/domain/streamtimeout"
	"gorm.io/gorm"
)

type timeoutRepository struct {
	db *gorm.DB
}

func NewTimeoutRepository(db *gorm.DB) streamtimeout.Repository {
	return &timeoutRepository{
		db: db,
	}
}

func (r *timeoutRepository) Create(ctx context.Context, t *streamtimeout.Timeout) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *timeoutRepository) ActiveExists(ctx context.Context, userID, streamID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&streamtimeout.Timeout{}).
		Where("user_id = ? AND stream_id = ? AND is_active = ? AND expires_at > ?", userID, streamID, true, now).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
