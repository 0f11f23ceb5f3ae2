package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/streamsentry/streamsentry/pkg/domain/violation"
	"gorm.io/gorm"
)

type violationRepository struct {
	db *gorm.DB
}

func NewViolationRepository(db *gorm.DB) violation.Repository {
	return &violationRepository{
		db: db,
	}
}

func (r *violationRepository) Create(ctx context.Context, v *violation.Violation) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *violationRepository) CountByUserAndStream(ctx context.Context, userID, streamID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&violation.Violation{}).
		Where("user_id = ? AND stream_id = ?", userID, streamID).
		Count(&count).Error
	return count, err
}

func (r *violationRepository) ListByStream(ctx context.Context, streamID uuid.UUID) ([]*violation.Violation, error) {
	var violations []*violation.Violation
	err := r.db.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Order("created_at DESC").
		Find(&violations).Error
	return violations, err
}

func (r *violationRepository) ListByUserAndStream(ctx context.Context, userID, streamID uuid.UUID) ([]*violation.Violation, error) {
	var violations []*violation.Violation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stream_id = ?", userID, streamID).
		Order("created_at DESC").
		Find(&violations).Error
	return violations, err
}
