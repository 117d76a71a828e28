package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type LegacyRuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rules []*domain.LegacyCustomizationRule) ([]*domain.LegacyCustomizationRule, error)
	GetByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType) ([]*domain.LegacyCustomizationRule, error)
}

type legacyRuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLegacyRuleRepo(db *gorm.DB, baseLog *logger.Logger) LegacyRuleRepo {
	repoLog := baseLog.With("repo", "LegacyRuleRepo")
	return &legacyRuleRepo{db: db, log: repoLog}
}

func (r *legacyRuleRepo) Create(ctx context.Context, tx *gorm.DB, rules []*domain.LegacyCustomizationRule) ([]*domain.LegacyCustomizationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rules) == 0 {
		return []*domain.LegacyCustomizationRule{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *legacyRuleRepo) GetByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType) ([]*domain.LegacyCustomizationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.LegacyCustomizationRule
	if err := transaction.WithContext(ctx).
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
