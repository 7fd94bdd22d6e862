package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type KnowledgeItemType string

const (
	KnowledgeProgramItem  KnowledgeItemType = "program_item"
	KnowledgePainPoint    KnowledgeItemType = "pain_point"
	KnowledgeStyleSnippet KnowledgeItemType = "style_snippet"
)

// KnowledgeItem is one embedded text unit owned by an event. The whole
// (event, type) partition is replaced atomically on re-index.
type KnowledgeItem struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"event_id"`
	Event     *Event            `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`
	ItemType  KnowledgeItemType `gorm:"column:item_type;not null;index" json:"item_type"`
	Content   string            `gorm:"column:content;type:text;not null" json:"content"`
	Metadata  datatypes.JSON    `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	Embedding datatypes.JSON    `gorm:"type:jsonb;column:embedding" json:"embedding,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:now()" json:"updated_at"`
}

func (KnowledgeItem) TableName() string {
	return "knowledge_item"
}
