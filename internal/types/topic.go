package types

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a row in the content plan: one email to generate.
type Topic struct {
	ID            uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"event_id"`
	Event         *Event       `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`
	ContentTypeID uuid.UUID    `gorm:"type:uuid;not null;index" json:"content_type_id"`
	ContentType   *ContentType `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentTypeID;references:ID" json:"content_type,omitempty"`
	Title         string       `gorm:"column:title;not null" json:"title"`
	Segment       string       `gorm:"column:segment" json:"segment,omitempty"`
	Language      string       `gorm:"column:language" json:"language,omitempty"`
	ToneOverride  string       `gorm:"column:tone_override" json:"tone_override,omitempty"`
	ModelOverride string       `gorm:"column:model_override" json:"model_override,omitempty"`
	Status        string       `gorm:"column:status;default:'pending'" json:"status"`
	CreatedAt     time.Time    `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:now()" json:"updated_at"`
}

func (Topic) TableName() string {
	return "topic"
}
