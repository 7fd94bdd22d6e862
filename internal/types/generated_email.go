package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GeneratedEmailStatus string

const (
	GeneratedDraft          GeneratedEmailStatus = "draft"
	GeneratedPassed         GeneratedEmailStatus = "passed"
	GeneratedRequiresReview GeneratedEmailStatus = "requires_review"
	GeneratedFailed         GeneratedEmailStatus = "failed"
)

// GeneratedEmail is the immutable artifact of one generation run, with full
// provenance: both model passes, retrieval sources and QA metrics.
type GeneratedEmail struct {
	ID            uuid.UUID            `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID       uuid.UUID            `gorm:"type:uuid;not null;index" json:"event_id"`
	MailingListID uuid.UUID            `gorm:"type:uuid;not null;index" json:"mailing_list_id"`
	ContentTypeID uuid.UUID            `gorm:"type:uuid;not null;index" json:"content_type_id"`
	TopicID       uuid.UUID            `gorm:"type:uuid;index" json:"topic_id"`
	Subject       string               `gorm:"column:subject;not null" json:"subject"`
	Preheader     string               `gorm:"column:preheader" json:"preheader"`
	HTML          string               `gorm:"column:html;type:text" json:"html"`
	PlainText     string               `gorm:"column:plain_text;type:text" json:"plain_text"`
	Pass1JSON     datatypes.JSON       `gorm:"type:jsonb;column:pass1_json" json:"pass1_json,omitempty"`
	Pass2JSON     datatypes.JSON       `gorm:"type:jsonb;column:pass2_json" json:"pass2_json,omitempty"`
	RAGSources    datatypes.JSON       `gorm:"type:jsonb;column:rag_sources" json:"rag_sources,omitempty"`
	QAMetrics     datatypes.JSON       `gorm:"type:jsonb;column:qa_metrics" json:"qa_metrics,omitempty"`
	Status        GeneratedEmailStatus `gorm:"column:status;not null;default:'draft';index" json:"status"`
	CreatedAt     time.Time            `gorm:"not null;default:now()" json:"created_at"`
}

func (GeneratedEmail) TableName() string {
	return "generated_email"
}
