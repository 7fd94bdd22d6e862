package types

import (
	"time"

	"github.com/google/uuid"
)

// AICallLog records one chat or embedding call for auditing.
type AICallLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID     *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	TopicID     *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	CallType    string     `gorm:"column:call_type;not null" json:"call_type"`
	PromptName  string     `gorm:"column:prompt_name" json:"prompt_name,omitempty"`
	Fingerprint string     `gorm:"column:fingerprint" json:"fingerprint,omitempty"`
	Model       string     `gorm:"column:model;not null" json:"model"`
	DurationMS  int64      `gorm:"column:duration_ms" json:"duration_ms"`
	Success     bool       `gorm:"column:success;not null" json:"success"`
	Error       string     `gorm:"column:error" json:"error,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (AICallLog) TableName() string {
	return "ai_call_log"
}
