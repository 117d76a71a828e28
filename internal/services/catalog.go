package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/apierr"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// CustomizationConfig is everything a wizard needs to start: the item
// flags, both rule generations and the layout catalog.
type CustomizationConfig struct {
	Item        ConfigItem        `json:"item"`
	Rules       []domain.RuleView `json:"rules"`
	LegacyRules []domain.RuleView `json:"legacyRules"`
	Layouts     []*domain.Layout  `json:"layouts"`
}

type ConfigItem struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	AllowsCustomization bool      `json:"allowsCustomization"`
}

type CatalogService interface {
	CustomizationConfig(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) (CustomizationConfig, error)
}

type catalogService struct {
	log        *logger.Logger
	itemRepo   catalog.ItemRepo
	ruleRepo   catalog.RuleRepo
	legacyRepo catalog.LegacyRuleRepo
	layoutRepo catalog.LayoutRepo
}

func NewCatalogService(log *logger.Logger, itemRepo catalog.ItemRepo, ruleRepo catalog.RuleRepo, legacyRepo catalog.LegacyRuleRepo, layoutRepo catalog.LayoutRepo) CatalogService {
	return &catalogService{
		log:        log.With("service", "CatalogService"),
		itemRepo:   itemRepo,
		ruleRepo:   ruleRepo,
		legacyRepo: legacyRepo,
		layoutRepo: layoutRepo,
	}
}

func (cs *catalogService) CustomizationConfig(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) (CustomizationConfig, error) {
	if !itemType.Valid() {
		return CustomizationConfig{}, apierr.New(http.StatusBadRequest, "invalid_item_type", fmt.Errorf("unknown item type %q", itemType))
	}

	item, err := cs.configItem(ctx, itemType, itemID)
	if err != nil {
		return CustomizationConfig{}, err
	}

	rules, err := cs.ruleRepo.GetByItem(ctx, nil, itemID, itemType)
	if err != nil {
		return CustomizationConfig{}, fmt.Errorf("load rules: %w", err)
	}
	legacy, err := cs.legacyRepo.GetByItem(ctx, nil, itemID, itemType)
	if err != nil {
		return CustomizationConfig{}, fmt.Errorf("load legacy rules: %w", err)
	}
	layouts, err := cs.layoutRepo.GetAll(ctx, nil)
	if err != nil {
		return CustomizationConfig{}, fmt.Errorf("load layouts: %w", err)
	}

	cfg := CustomizationConfig{
		Item:        item,
		Rules:       make([]domain.RuleView, 0, len(rules)),
		LegacyRules: make([]domain.RuleView, 0, len(legacy)),
		Layouts:     layouts,
	}
	for _, r := range rules {
		cfg.Rules = append(cfg.Rules, r.View())
	}
	for _, r := range legacy {
		cfg.LegacyRules = append(cfg.LegacyRules, r.View())
	}
	return cfg, nil
}

func (cs *catalogService) configItem(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) (ConfigItem, error) {
	switch itemType {
	case domain.ItemTypeProduct:
		products, err := cs.itemRepo.GetProductsByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil {
			return ConfigItem{}, fmt.Errorf("load product: %w", err)
		}
		if len(products) == 0 {
			return ConfigItem{}, apierr.New(http.StatusNotFound, "item_not_found", fmt.Errorf("product %s not found", itemID))
		}
		p := products[0]
		return ConfigItem{ID: p.ID, Name: p.Name, AllowsCustomization: p.AllowsCustomization}, nil

	default:
		additionals, err := cs.itemRepo.GetAdditionalsByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil {
			return ConfigItem{}, fmt.Errorf("load additional: %w", err)
		}
		if len(additionals) == 0 {
			return ConfigItem{}, apierr.New(http.StatusNotFound, "item_not_found", fmt.Errorf("additional %s not found", itemID))
		}
		a := additionals[0]
		return ConfigItem{ID: a.ID, Name: a.Name, AllowsCustomization: true}, nil
	}
}
