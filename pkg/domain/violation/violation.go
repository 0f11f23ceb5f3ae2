package violation

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Kind string

const (
	KindWarning    Kind = "warning"
	KindTimeout    Kind = "timeout"
	KindStreamStop Kind = "stream_stop"
)

// TermsJSON stores the detected terms as a JSONB column.
type TermsJSON []string

func (t TermsJSON) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TermsJSON) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan detected terms: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, t)
}

// Violation is an immutable record of one toxic utterance. It is created once
// by the escalation engine and never updated.
type Violation struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;index:idx_violations_user_stream"`
	StreamID      uuid.UUID `json:"stream_id" gorm:"type:uuid;index:idx_violations_user_stream"`
	Transcript    string    `json:"transcript"`
	ToxicityScore float64   `json:"toxicity_score"`
	DetectedTerms TermsJSON `json:"detected_terms" gorm:"type:jsonb"`
	Kind          Kind      `json:"violation_type" gorm:"column:violation_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func (v *Violation) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	return v.Validate()
}

func (v *Violation) Validate() error {
	if v.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if v.StreamID == uuid.Nil {
		return fmt.Errorf("stream_id is required")
	}
	switch v.Kind {
	case KindWarning, KindTimeout, KindStreamStop:
	default:
		return fmt.Errorf("invalid violation type %q", v.Kind)
	}
	return nil
}

func (v *Violation) TableName() string {
	return "public.speech_violations"
}
