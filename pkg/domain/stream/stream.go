package stream

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusLive  = "live"
	StatusEnded = "ended"
)

type Stream struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID  `json:"owner_id" gorm:"type:uuid;index"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

func (s *Stream) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = StatusLive
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	if s.Title == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func (s *Stream) TableName() string {
	return "public.streams"
}
