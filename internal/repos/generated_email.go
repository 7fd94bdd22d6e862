package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type GeneratedEmailRepo interface {
	Create(ctx context.Context, tx *gorm.DB, email *types.GeneratedEmail) (*types.GeneratedEmail, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GeneratedEmail, error)
	ListByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.GeneratedEmail, error)
	// FindExistingDraft implements the duplicate key (list, content type,
	// topic title). A draft is any artifact not marked failed. Returns nil
	// when no draft exists.
	FindExistingDraft(ctx context.Context, tx *gorm.DB, listID, contentTypeID uuid.UUID, title string) (*types.GeneratedEmail, error)
}

type generatedEmailRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedEmailRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedEmailRepo {
	return &generatedEmailRepo{db: db, log: baseLog.With("repo", "GeneratedEmailRepo")}
}

func (r *generatedEmailRepo) Create(ctx context.Context, tx *gorm.DB, email *types.GeneratedEmail) (*types.GeneratedEmail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(email).Error; err != nil {
		return nil, err
	}
	return email, nil
}

func (r *generatedEmailRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GeneratedEmail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var email types.GeneratedEmail
	if err := transaction.WithContext(ctx).First(&email, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *generatedEmailRepo) ListByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.GeneratedEmail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.GeneratedEmail
	if err := transaction.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *generatedEmailRepo) FindExistingDraft(ctx context.Context, tx *gorm.DB, listID, contentTypeID uuid.UUID, title string) (*types.GeneratedEmail, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var email types.GeneratedEmail
	err := transaction.WithContext(ctx).
		Joins("JOIN topic ON topic.id = generated_email.topic_id").
		Where("generated_email.mailing_list_id = ? AND generated_email.content_type_id = ? AND topic.title = ? AND generated_email.status <> ?",
			listID, contentTypeID, title, types.GeneratedFailed).
		First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}
