package constraints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type ConstraintRepo interface {
	Create(ctx context.Context, tx *gorm.DB, constraint *domain.ItemConstraint) (*domain.ItemConstraint, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.ItemConstraint, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.ItemConstraint, error)
	// GetTouching returns every row where the given item appears on
	// either side. Mutual exclusion is stored directed but evaluated
	// from both directions, so callers need both sides.
	GetTouching(ctx context.Context, tx *gorm.DB, ref domain.ItemRef) ([]*domain.ItemConstraint, error)
	ExistsTriple(ctx context.Context, tx *gorm.DB, target domain.ItemRef, constraintType domain.ConstraintType, related domain.ItemRef) (bool, error)
	Search(ctx context.Context, tx *gorm.DB, query string) ([]*domain.ItemConstraint, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type constraintRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConstraintRepo(db *gorm.DB, baseLog *logger.Logger) ConstraintRepo {
	repoLog := baseLog.With("repo", "ConstraintRepo")
	return &constraintRepo{db: db, log: repoLog}
}

func (r *constraintRepo) Create(ctx context.Context, tx *gorm.DB, constraint *domain.ItemConstraint) (*domain.ItemConstraint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(constraint).Error; err != nil {
		return nil, err
	}
	return constraint, nil
}

func (r *constraintRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.ItemConstraint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemConstraint
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *constraintRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.ItemConstraint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemConstraint
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

func (r *constraintRepo) GetTouching(ctx context.Context, tx *gorm.DB, ref domain.ItemRef) ([]*domain.ItemConstraint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemConstraint
	if err := transaction.WithContext(ctx).
		Where(
			"(target_item_id = ? AND target_item_type = ?) OR (related_item_id = ? AND related_item_type = ?)",
			ref.ID, ref.Type, ref.ID, ref.Type,
		).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *constraintRepo) ExistsTriple(ctx context.Context, tx *gorm.DB, target domain.ItemRef, constraintType domain.ConstraintType, related domain.ItemRef) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.ItemConstraint{}).
		Where(
			"target_item_id = ? AND target_item_type = ? AND constraint_type = ? AND related_item_id = ? AND related_item_type = ?",
			target.ID, target.Type, constraintType, related.ID, related.Type,
		).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *constraintRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*domain.ItemConstraint, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ItemConstraint
	pattern := "%" + query + "%"
	if err := transaction.WithContext(ctx).
		Where(
			"message ILIKE ? OR target_item_id::text ILIKE ? OR related_item_id::text ILIKE ?",
			pattern, pattern, pattern,
		).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *constraintRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.ItemConstraint{}).Error
}
