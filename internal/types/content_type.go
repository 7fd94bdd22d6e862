package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CTA is one allowed call-to-action of a content type.
type CTA struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

// ContentType is the shape of an email (e.g. "speaker announcement").
// It carries the CTA catalog and defaults.
type ContentType struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID             uuid.UUID      `gorm:"type:uuid;not null;index" json:"event_id"`
	Event               *Event         `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`
	Name                string         `gorm:"column:name;not null" json:"name"`
	Description         string         `gorm:"column:description" json:"description,omitempty"`
	AllowedCTAs         datatypes.JSON `gorm:"type:jsonb;column:allowed_ctas" json:"allowed_ctas"`
	DefaultPrimaryCTA   string         `gorm:"column:default_primary_cta" json:"default_primary_cta,omitempty"`
	DefaultSecondaryCTA string         `gorm:"column:default_secondary_cta" json:"default_secondary_cta,omitempty"`
	DefaultPrimaryURL   string         `gorm:"column:default_primary_url" json:"default_primary_url,omitempty"`
	DefaultSecondaryURL string         `gorm:"column:default_secondary_url" json:"default_secondary_url,omitempty"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentType) TableName() string {
	return "content_type"
}

// MarshalCTAs encodes a catalog for the allowed_ctas column.
func MarshalCTAs(ctas []CTA) ([]byte, error) {
	if ctas == nil {
		ctas = []CTA{}
	}
	return json.Marshal(ctas)
}

// CTACatalog decodes the allowed_ctas column. A null or malformed column
// yields an empty catalog.
func (ct *ContentType) CTACatalog() []CTA {
	if len(ct.AllowedCTAs) == 0 {
		return []CTA{}
	}
	var out []CTA
	if err := json.Unmarshal(ct.AllowedCTAs, &out); err != nil {
		return []CTA{}
	}
	return out
}
