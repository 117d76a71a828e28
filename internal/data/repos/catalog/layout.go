package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type LayoutRepo interface {
	Create(ctx context.Context, tx *gorm.DB, layouts []*domain.Layout) ([]*domain.Layout, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.Layout, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Layout, error)
}

type layoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLayoutRepo(db *gorm.DB, baseLog *logger.Logger) LayoutRepo {
	repoLog := baseLog.With("repo", "LayoutRepo")
	return &layoutRepo{db: db, log: repoLog}
}

func (r *layoutRepo) Create(ctx context.Context, tx *gorm.DB, layouts []*domain.Layout) ([]*domain.Layout, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(layouts) == 0 {
		return []*domain.Layout{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&layouts).Error; err != nil {
		return nil, err
	}
	return layouts, nil
}

func (r *layoutRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.Layout, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Layout
	if err := transaction.WithContext(ctx).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *layoutRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Layout, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Layout
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
