package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/types"
)

type TemplateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tpl *types.Template) (*types.Template, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Template, error)
	// GetActive returns the single active template for (event, content type),
	// or gorm.ErrRecordNotFound.
	GetActive(ctx context.Context, tx *gorm.DB, eventID, contentTypeID uuid.UUID) (*types.Template, error)
	// ReplaceLayout swaps the adapted layout and slot schema in place,
	// preserving the reference HTML.
	ReplaceLayout(ctx context.Context, tx *gorm.DB, id uuid.UUID, htmlLayout string, slotsSchema []byte) error
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

func (r *templateRepo) Create(ctx context.Context, tx *gorm.DB, tpl *types.Template) (*types.Template, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	// A new active template deactivates any previous one for the pair.
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if tpl.Active {
			if err := inner.Model(&types.Template{}).
				Where("event_id = ? AND content_type_id = ? AND active = ?", tpl.EventID, tpl.ContentTypeID, true).
				Update("active", false).Error; err != nil {
				return err
			}
		}
		return inner.Create(tpl).Error
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

func (r *templateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Template, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var tpl types.Template
	if err := transaction.WithContext(ctx).First(&tpl, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) GetActive(ctx context.Context, tx *gorm.DB, eventID, contentTypeID uuid.UUID) (*types.Template, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var tpl types.Template
	if err := transaction.WithContext(ctx).
		Where("event_id = ? AND content_type_id = ? AND active = ?", eventID, contentTypeID, true).
		First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepo) ReplaceLayout(ctx context.Context, tx *gorm.DB, id uuid.UUID, htmlLayout string, slotsSchema []byte) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Model(&types.Template{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"html_layout":  htmlLayout,
			"slots_schema": slotsSchema,
		}).Error
}
