package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type CartLineRepo interface {
	Create(ctx context.Context, tx *gorm.DB, line *domain.CartLine) (*domain.CartLine, error)
	GetByCart(ctx context.Context, tx *gorm.DB, cartID string) ([]*domain.CartLine, error)
	GetByFingerprint(ctx context.Context, tx *gorm.DB, cartID string, fingerprint string) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, tx *gorm.DB, lineID uuid.UUID, quantity int) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type cartLineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartLineRepo(db *gorm.DB, baseLog *logger.Logger) CartLineRepo {
	repoLog := baseLog.With("repo", "CartLineRepo")
	return &cartLineRepo{db: db, log: repoLog}
}

func (r *cartLineRepo) Create(ctx context.Context, tx *gorm.DB, line *domain.CartLine) (*domain.CartLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *cartLineRepo) GetByCart(ctx context.Context, tx *gorm.DB, cartID string) ([]*domain.CartLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.CartLine
	if err := transaction.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *cartLineRepo) GetByFingerprint(ctx context.Context, tx *gorm.DB, cartID string, fingerprint string) (*domain.CartLine, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var line domain.CartLine
	err := transaction.WithContext(ctx).
		Where("cart_id = ? AND fingerprint = ?", cartID, fingerprint).
		First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *cartLineRepo) UpdateQuantity(ctx context.Context, tx *gorm.DB, lineID uuid.UUID, quantity int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *cartLineRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.CartLine{}).Error
}
