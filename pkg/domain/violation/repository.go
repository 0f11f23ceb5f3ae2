package violation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, violation *Violation) error
	CountByUserAndStream(ctx context.Context, userID, streamID uuid.UUID) (int64, error)
	ListByStream(ctx context.Context, streamID uuid.UUID) ([]*Violation, error)
	ListByUserAndStream(ctx context.Context, userID, streamID uuid.UUID) ([]*Violation, error)
}
