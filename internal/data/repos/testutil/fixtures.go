package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/domain"
)

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, basePrice float64, discountPercent float64) *domain.Product {
	tb.Helper()
	p := &domain.Product{
		ID:                  uuid.New(),
		Name:                name,
		BasePrice:           basePrice,
		DiscountPercent:     discountPercent,
		AllowsCustomization: true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedAdditional(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, price float64) *domain.Additional {
	tb.Helper()
	a := &domain.Additional{
		ID:    uuid.New(),
		Name:  name,
		Price: price,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed additional: %v", err)
	}
	return a
}

func SeedRule(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType, title string, ruleType domain.RuleType, required bool, displayOrder int) *domain.CustomizationRule {
	tb.Helper()
	r := &domain.CustomizationRule{
		ID:               uuid.New(),
		ItemID:           itemID,
		ItemType:         itemType,
		Title:            title,
		RuleType:         ruleType,
		Required:         required,
		DisplayOrder:     displayOrder,
		AvailableOptions: datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed rule: %v", err)
	}
	return r
}

func SeedLegacyRule(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType, title string, ruleType domain.RuleType, required bool, displayOrder int) *domain.LegacyCustomizationRule {
	tb.Helper()
	r := &domain.LegacyCustomizationRule{
		ID:               uuid.New(),
		ItemID:           itemID,
		ItemType:         itemType,
		Title:            title,
		RuleType:         ruleType,
		Required:         required,
		DisplayOrder:     displayOrder,
		AvailableOptions: datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed legacy rule: %v", err)
	}
	return r
}

func SeedConstraint(tb testing.TB, ctx context.Context, tx *gorm.DB, target domain.ItemRef, constraintType domain.ConstraintType, related domain.ItemRef, message string) *domain.ItemConstraint {
	tb.Helper()
	c := &domain.ItemConstraint{
		ID:              uuid.New(),
		TargetItemID:    target.ID,
		TargetItemType:  target.Type,
		ConstraintType:  constraintType,
		RelatedItemID:   related.ID,
		RelatedItemType: related.Type,
		Message:         message,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed constraint: %v", err)
	}
	return c
}
