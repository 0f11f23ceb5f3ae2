package streamtimeout

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, timeout *Timeout) error
	// ActiveExists reports whether an active timeout with expires_at after now
	// exists for the (user, stream) pair.
	ActiveExists(ctx context.Context, userID, streamID uuid.UUID, now time.Time) (bool, error)
}
