package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type ContentTypeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ct *types.ContentType) (*types.ContentType, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentType, error)
	ListByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.ContentType, error)
	Update(ctx context.Context, tx *gorm.DB, ct *types.ContentType) error
}

type contentTypeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentTypeRepo(db *gorm.DB, baseLog *logger.Logger) ContentTypeRepo {
	return &contentTypeRepo{db: db, log: baseLog.With("repo", "ContentTypeRepo")}
}

func (r *contentTypeRepo) Create(ctx context.Context, tx *gorm.DB, ct *types.ContentType) (*types.ContentType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(ct).Error; err != nil {
		return nil, err
	}
	return ct, nil
}

func (r *contentTypeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ContentType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ct types.ContentType
	if err := transaction.WithContext(ctx).First(&ct, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *contentTypeRepo) ListByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.ContentType, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ContentType
	if err := transaction.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *contentTypeRepo) Update(ctx context.Context, tx *gorm.DB, ct *types.ContentType) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(ct).Error
}
