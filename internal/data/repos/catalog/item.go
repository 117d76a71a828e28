package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type ItemRepo interface {
	CreateProducts(ctx context.Context, tx *gorm.DB, products []*domain.Product) ([]*domain.Product, error)
	CreateAdditionals(ctx context.Context, tx *gorm.DB, additionals []*domain.Additional) ([]*domain.Additional, error)
	GetProductsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Product, error)
	GetAdditionalsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Additional, error)
	NamesByRefs(ctx context.Context, tx *gorm.DB, refs []domain.ItemRef) (map[uuid.UUID]string, error)
}

type itemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	repoLog := baseLog.With("repo", "ItemRepo")
	return &itemRepo{db: db, log: repoLog}
}

func (r *itemRepo) CreateProducts(ctx context.Context, tx *gorm.DB, products []*domain.Product) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(products) == 0 {
		return []*domain.Product{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *itemRepo) CreateAdditionals(ctx context.Context, tx *gorm.DB, additionals []*domain.Additional) ([]*domain.Additional, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(additionals) == 0 {
		return []*domain.Additional{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&additionals).Error; err != nil {
		return nil, err
	}
	return additionals, nil
}

func (r *itemRepo) GetProductsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Product, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Product
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

func (r *itemRepo) GetAdditionalsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Additional, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Additional
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

// NamesByRefs resolves display names for a mixed set of item refs,
// used when a constraint rejection needs a generated default message.
func (r *itemRepo) NamesByRefs(ctx context.Context, tx *gorm.DB, refs []domain.ItemRef) (map[uuid.UUID]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	names := make(map[uuid.UUID]string, len(refs))
	if len(refs) == 0 {
		return names, nil
	}

	var productIDs, additionalIDs []uuid.UUID
	for _, ref := range refs {
		switch ref.Type {
		case domain.ItemTypeProduct:
			productIDs = append(productIDs, ref.ID)
		case domain.ItemTypeAdditional:
			additionalIDs = append(additionalIDs, ref.ID)
		}
	}

	if len(productIDs) > 0 {
		var products []*domain.Product
		if err := transaction.WithContext(ctx).
			Where("id IN ?", productIDs).
			Find(&products).Error; err != nil {
			return nil, err
		}
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	if len(additionalIDs) > 0 {
		var additionals []*domain.Additional
		if err := transaction.WithContext(ctx).
			Where("id IN ?", additionalIDs).
			Find(&additionals).Error; err != nil {
			return nil, err
		}
		for _, a := range additionals {
			names[a.ID] = a.Name
		}
	}

	return names, nil
}
