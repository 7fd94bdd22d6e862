package types

import (
	"time"

	"github.com/google/uuid"
)

type MailingList struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID        uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	Event          *Event    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	UTMSource      string    `gorm:"column:utm_source" json:"utm_source,omitempty"`
	UTMMedium      string    `gorm:"column:utm_medium" json:"utm_medium,omitempty"`
	UTMCampaign    string    `gorm:"column:utm_campaign" json:"utm_campaign,omitempty"`
	UTMTerm        string    `gorm:"column:utm_term" json:"utm_term,omitempty"`
	UTMContent     string    `gorm:"column:utm_content" json:"utm_content,omitempty"`
	FromName       string    `gorm:"column:from_name" json:"from_name,omitempty"`
	FromEmail      string    `gorm:"column:from_email" json:"from_email,omitempty"`
	UnsubscribeURL string    `gorm:"column:unsubscribe_url" json:"unsubscribe_url,omitempty"`
	ModelOverride  string    `gorm:"column:model_override" json:"model_override,omitempty"`
	ToneOverride   string    `gorm:"column:tone_override" json:"tone_override,omitempty"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MailingList) TableName() string {
	return "mailing_list"
}
