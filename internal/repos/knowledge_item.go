package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type KnowledgeItemRepo interface {
	// ReplaceForEventType atomically clears the (event, type) partition and
	// inserts the given items in its place.
	ReplaceForEventType(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, itemType types.KnowledgeItemType, items []*types.KnowledgeItem) error
	ListByEventType(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, itemType types.KnowledgeItemType) ([]*types.KnowledgeItem, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.KnowledgeItem, error)
}

type knowledgeItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeItemRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeItemRepo {
	return &knowledgeItemRepo{db: db, log: baseLog.With("repo", "KnowledgeItemRepo")}
}

func (r *knowledgeItemRepo) ReplaceForEventType(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, itemType types.KnowledgeItemType, items []*types.KnowledgeItem) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// Keep batches small because Content and Embedding are large
	const batchSize = 100

	return transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.
			Where("event_id = ? AND item_type = ?", eventID, itemType).
			Delete(&types.KnowledgeItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return inner.CreateInBatches(items, batchSize).Error
	})
}

func (r *knowledgeItemRepo) ListByEventType(ctx context.Context, tx *gorm.DB, eventID uuid.UUID, itemType types.KnowledgeItemType) ([]*types.KnowledgeItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.KnowledgeItem
	if err := transaction.WithContext(ctx).
		Where("event_id = ? AND item_type = ?", eventID, itemType).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *knowledgeItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.KnowledgeItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.KnowledgeItem
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
