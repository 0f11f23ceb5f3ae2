package streamtimeout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timeout suspends one user from speaking in one stream for a fixed duration.
// Expiry is passive: nothing revokes a timeout, readers compare ExpiresAt to
// the current time.
type Timeout struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `json:"user_id" gorm:"type:uuid;index:idx_timeouts_user_stream_active"`
	StreamID        uuid.UUID `json:"stream_id" gorm:"type:uuid;index:idx_timeouts_user_stream_active"`
	DurationSeconds int       `json:"duration_seconds" gorm:"column:duration_seconds"`
	Reason          string    `json:"reason"`
	StartedAt       time.Time `json:"started_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	IsActive        bool      `json:"is_active" gorm:"index:idx_timeouts_user_stream_active"`
}

func New(userID, streamID uuid.UUID, duration time.Duration, reason string, now time.Time) *Timeout {
	return &Timeout{
		ID:              uuid.New(),
		UserID:          userID,
		StreamID:        streamID,
		DurationSeconds: int(duration.Seconds()),
		Reason:          reason,
		StartedAt:       now,
		ExpiresAt:       now.Add(duration),
		IsActive:        true,
	}
}

func (t *Timeout) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

func (t *Timeout) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.UserID == uuid.Nil || t.StreamID == uuid.Nil {
		return fmt.Errorf("user_id and stream_id are required")
	}
	if t.DurationSeconds <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	return nil
}

func (t *Timeout) TableName() string {
	return "public.stream_timeouts"
}
