package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type RuleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rules []*domain.CustomizationRule) ([]*domain.CustomizationRule, error)
	GetByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType) ([]*domain.CustomizationRule, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.CustomizationRule, error)
}

type ruleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRuleRepo(db *gorm.DB, baseLog *logger.Logger) RuleRepo {
	repoLog := baseLog.With("repo", "RuleRepo")
	return &ruleRepo{db: db, log: repoLog}
}

func (r *ruleRepo) Create(ctx context.Context, tx *gorm.DB, rules []*domain.CustomizationRule) ([]*domain.CustomizationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rules) == 0 {
		return []*domain.CustomizationRule{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *ruleRepo) GetByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType) ([]*domain.CustomizationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.CustomizationRule
	if err := transaction.WithContext(ctx).
		Where("item_id = ? AND item_type = ?", itemID, itemType).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ruleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.CustomizationRule, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.CustomizationRule
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
