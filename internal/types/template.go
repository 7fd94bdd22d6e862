package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SlotSchema describes the named fields a template expects from Pass-2.
type SlotSchema struct {
	Required   []string                `json:"required"`
	Properties map[string]SlotProperty `json:"properties"`
}

type SlotProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
	Items       string `json:"items,omitempty"`
}

// Template holds the verbatim reference HTML a human designed, the adapted
// layout with placeholder tokens, and the slot schema driving Pass-2.
type Template struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_id"`
	Event         *Event         `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`
	ContentTypeID uuid.UUID      `gorm:"type:uuid;not null;index" json:"content_type_id"`
	ContentType   *ContentType   `gorm:"constraint:OnDelete:CASCADE;foreignKey:ContentTypeID;references:ID" json:"content_type,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	ReferenceHTML string         `gorm:"column:reference_html;type:text" json:"reference_html,omitempty"`
	HTMLLayout    string         `gorm:"column:html_layout;type:text" json:"html_layout"`
	SlotsSchema   datatypes.JSON `gorm:"type:jsonb;column:slots_schema" json:"slots_schema"`
	Active        bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Template) TableName() string {
	return "template"
}

func (t *Template) Schema() (SlotSchema, error) {
	var s SlotSchema
	if len(t.SlotsSchema) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(t.SlotsSchema, &s); err != nil {
		return SlotSchema{}, err
	}
	return s, nil
}
