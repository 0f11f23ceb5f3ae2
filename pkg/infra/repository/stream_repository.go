package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/streamsentry/streamsentry/pkg/domain"
	"github.com/streamsentry/streamsentry/pkg/domain/stream"
	"gorm.io/gorm"
)

type streamRepository struct {
	db *gorm.DB
}

func NewStreamRepository(db *gorm.DB) stream.Repository {
	return &streamRepository{
		db: db,
	}
}

func (r *streamRepository) Get(ctx context.Context, id uuid.UUID) (*stream.Stream, error) {
	var entity stream.Stream
	err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("stream", id)
		}
		return nil, err
	}
	return &entity, nil
}

func (r *streamRepository) MarkEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&stream.Stream{}).
		Where("id = ? AND status <> ?", id, stream.StatusEnded).
		Updates(map[string]interface{}{
			"status":   stream.StatusEnded,
			"ended_at": endedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	// RowsAffected == 0 means the stream was already ended or missing; both
	// are terminal for moderation purposes.
	return nil
}
