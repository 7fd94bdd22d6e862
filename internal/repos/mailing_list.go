package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type MailingListRepo interface {
	Create(ctx context.Context, tx *gorm.DB, list *types.MailingList) (*types.MailingList, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MailingList, error)
	ListByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.MailingList, error)
}

type mailingListRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMailingListRepo(db *gorm.DB, baseLog *logger.Logger) MailingListRepo {
	return &mailingListRepo{db: db, log: baseLog.With("repo", "MailingListRepo")}
}

func (r *mailingListRepo) Create(ctx context.Context, tx *gorm.DB, list *types.MailingList) (*types.MailingList, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *mailingListRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.MailingList, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var list types.MailingList
	if err := transaction.WithContext(ctx).First(&list, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *mailingListRepo) ListByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.MailingList, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.MailingList
	if err := transaction.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
