package stream

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Stream, error)
	// MarkEnded sets the stream status to ended and stamps the end time.
	// Ending an already-ended stream is a no-op.
	MarkEnded(ctx context.Context, id uuid.UUID, endedAt time.Time) error
}
