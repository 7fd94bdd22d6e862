package types

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Date         string    `gorm:"column:date" json:"date"`
	Venue        string    `gorm:"column:venue" json:"venue,omitempty"`
	LogoURL      string    `gorm:"column:logo_url" json:"logo_url,omitempty"`
	DefaultModel string    `gorm:"column:default_model" json:"default_model,omitempty"`
	DefaultTone  string    `gorm:"column:default_tone" json:"default_tone,omitempty"`
	ProgramDocID string    `gorm:"column:program_doc_id" json:"program_doc_id,omitempty"`
	PainDocID    string    `gorm:"column:pain_doc_id" json:"pain_doc_id,omitempty"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Event) TableName() string {
	return "event"
}
