package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/data/repos/cart"
	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/apierr"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// CartLineView is one priced line as returned to clients. Prices are
// rounded here, at the formatting boundary, never earlier.
type CartLineView struct {
	Line      *domain.CartLine `json:"line"`
	Breakdown PriceBreakdown   `json:"breakdown"`
}

type CartView struct {
	CartID string         `json:"cart_id"`
	Lines  []CartLineView `json:"lines"`
	Total  float64        `json:"total"`
}

type CartService interface {
	// AddOrMerge admits a configured line into the cart: the
	// constraint resolver is consulted first and a rejection leaves
	// the cart untouched. Identical configurations merge quantity;
	// any customization difference produces a separate line.
	AddOrMerge(ctx context.Context, cartID string, productID uuid.UUID, quantity int, additionalIDs []uuid.UUID, customizations []domain.CustomizationInput) (*domain.CartLine, error)
	// UpdateQuantity sets a line's quantity; zero or less removes the
	// line entirely.
	UpdateQuantity(ctx context.Context, cartID string, fingerprint string, quantity int) error
	// Remove deletes the line matching the fingerprint of the given
	// configuration. Omitting additionals and customizations targets
	// the base-configuration fingerprint.
	Remove(ctx context.Context, cartID string, productID uuid.UUID, additionalIDs []uuid.UUID, customizations []domain.CustomizationInput) error
	GetPriced(ctx context.Context, cartID string) (CartView, error)
}

type cartService struct {
	db          *gorm.DB
	log         *logger.Logger
	lineRepo    cart.CartLineRepo
	itemRepo    catalog.ItemRepo
	constraints ConstraintService
}

func NewCartService(db *gorm.DB, log *logger.Logger, lineRepo cart.CartLineRepo, itemRepo catalog.ItemRepo, constraints ConstraintService) CartService {
	return &cartService{
		db:          db,
		log:         log.With("service", "CartService"),
		lineRepo:    lineRepo,
		itemRepo:    itemRepo,
		constraints: constraints,
	}
}

func (cs *cartService) AddOrMerge(ctx context.Context, cartID string, productID uuid.UUID, quantity int, additionalIDs []uuid.UUID, customizations []domain.CustomizationInput) (*domain.CartLine, error) {
	if quantity <= 0 {
		return nil, apierr.New(http.StatusBadRequest, "invalid_quantity", fmt.Errorf("quantity must be positive"))
	}

	products, err := cs.itemRepo.GetProductsByIDs(ctx, nil, []uuid.UUID{productID})
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if len(products) == 0 {
		return nil, apierr.New(http.StatusNotFound, "product_not_found", fmt.Errorf("product %s not found", productID))
	}
	product := products[0]

	fingerprint := Fingerprint(productID.String(), uuidStrings(additionalIDs), customizations)

	var result *domain.CartLine
	err = cs.db.Transaction(func(tx *gorm.DB) error {
		currentItems, err := cs.currentItems(ctx, tx, cartID)
		if err != nil {
			return err
		}

		// Admission check for the product and each additional; the
		// resolver only decides, the mutation below is ours.
		candidates := []domain.ItemRef{product.Ref()}
		for _, id := range additionalIDs {
			candidates = append(candidates, domain.ItemRef{ID: id, Type: domain.ItemTypeAdditional})
		}
		for _, candidate := range candidates {
			decision, err := cs.constraints.CanAdd(ctx, candidate, currentItems)
			if err != nil {
				return err
			}
			if !decision.Allowed {
				return apierr.New(http.StatusUnprocessableEntity, "constraint_conflict", fmt.Errorf("%s", decision.Reason))
			}
			currentItems = append(currentItems, candidate)
		}

		existing, err := cs.lineRepo.GetByFingerprint(ctx, tx, cartID, fingerprint)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := cs.lineRepo.UpdateQuantity(ctx, tx, existing.ID, existing.Quantity+quantity); err != nil {
				return err
			}
			existing.Quantity += quantity
			result = existing
			return nil
		}

		line, err := cs.buildLine(cartID, product, quantity, additionalIDs, customizations, fingerprint)
		if err != nil {
			return err
		}
		created, err := cs.lineRepo.Create(ctx, tx, line)
		if err != nil {
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.log.Debug("Cart line added or merged", "cart_id", cartID, "fingerprint", fingerprint, "quantity", result.Quantity)
	return result, nil
}

func (cs *cartService) buildLine(cartID string, product *domain.Product, quantity int, additionalIDs []uuid.UUID, customizations []domain.CustomizationInput, fingerprint string) (*domain.CartLine, error) {
	sortedIDs := uuidStrings(additionalIDs)
	sort.Strings(sortedIDs)
	idsJSON, err := json.Marshal(sortedIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal additional ids: %w", err)
	}
	customizationsJSON, err := json.Marshal(customizations)
	if err != nil {
		return nil, fmt.Errorf("marshal customizations: %w", err)
	}

	return &domain.CartLine{
		ID:                 uuid.New(),
		CartID:             cartID,
		ProductID:          product.ID,
		Quantity:           quantity,
		UnitPrice:          product.BasePrice,
		EffectiveUnitPrice: EffectiveUnitPrice(product.BasePrice, product.DiscountPercent),
		AdditionalIDs:      datatypes.JSON(idsJSON),
		Customizations:     datatypes.JSON(customizationsJSON),
		Fingerprint:        fingerprint,
	}, nil
}

func (cs *cartService) UpdateQuantity(ctx context.Context, cartID string, fingerprint string, quantity int) error {
	return cs.db.Transaction(func(tx *gorm.DB) error {
		line, err := cs.lineRepo.GetByFingerprint(ctx, tx, cartID, fingerprint)
		if err != nil {
			return err
		}
		if line == nil {
			return apierr.New(http.StatusNotFound, "cart_line_not_found", fmt.Errorf("no line with fingerprint %s", fingerprint))
		}
		if quantity <= 0 {
			return cs.lineRepo.DeleteByIDs(ctx, tx, []uuid.UUID{line.ID})
		}
		return cs.lineRepo.UpdateQuantity(ctx, tx, line.ID, quantity)
	})
}

func (cs *cartService) Remove(ctx context.Context, cartID string, productID uuid.UUID, additionalIDs []uuid.UUID, customizations []domain.CustomizationInput) error {
	fingerprint := Fingerprint(productID.String(), uuidStrings(additionalIDs), customizations)
	return cs.db.Transaction(func(tx *gorm.DB) error {
		line, err := cs.lineRepo.GetByFingerprint(ctx, tx, cartID, fingerprint)
		if err != nil {
			return err
		}
		if line == nil {
			return apierr.New(http.StatusNotFound, "cart_line_not_found", fmt.Errorf("no line matches the given configuration"))
		}
		return cs.lineRepo.DeleteByIDs(ctx, tx, []uuid.UUID{line.ID})
	})
}

func (cs *cartService) GetPriced(ctx context.Context, cartID string) (CartView, error) {
	lines, err := cs.lineRepo.GetByCart(ctx, nil, cartID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}

	view := CartView{CartID: cartID, Lines: []CartLineView{}}
	var total float64
	for _, line := range lines {
		breakdown, err := cs.priceLine(ctx, line)
		if err != nil {
			return CartView{}, err
		}
		total += breakdown.LineTotal

		breakdown = roundBreakdown(breakdown)
		view.Lines = append(view.Lines, CartLineView{Line: line, Breakdown: breakdown})
	}
	view.Total = Round2(total)
	return view, nil
}

func (cs *cartService) priceLine(ctx context.Context, line *domain.CartLine) (PriceBreakdown, error) {
	additionalIDs, err := decodeAdditionalIDs(line.AdditionalIDs)
	if err != nil {
		return PriceBreakdown{}, err
	}
	additionals, err := cs.itemRepo.GetAdditionalsByIDs(ctx, nil, additionalIDs)
	if err != nil {
		return PriceBreakdown{}, fmt.Errorf("load additionals: %w", err)
	}

	priced := make([]PricedAdditional, 0, len(additionals))
	for _, a := range additionals {
		priced = append(priced, PricedAdditional{ID: a.ID.String(), Name: a.Name, Price: a.Price})
	}

	customizations, err := decodeCustomizations(line.Customizations)
	if err != nil {
		return PriceBreakdown{}, err
	}

	discountPercent := 0.0
	if line.UnitPrice != 0 {
		discountPercent = (1 - line.EffectiveUnitPrice/line.UnitPrice) * 100
	}

	return ComposePrice(line.UnitPrice, discountPercent, priced, PricedCustomizationsFrom(customizations), line.Quantity), nil
}

// PricedCustomizationsFrom flattens recorded inputs into the shape the
// calculator matches against additionals: one entry per input id with
// the summed adjustments of its selected options.
func PricedCustomizationsFrom(inputs []domain.CustomizationInput) []PricedCustomization {
	out := make([]PricedCustomization, 0, len(inputs))
	for _, input := range inputs {
		entry := PricedCustomization{ID: input.RuleID}
		if options, ok := input.Data.(domain.OptionAnswer); ok {
			for _, sel := range options.Selected {
				entry.PriceAdjustment += sel.PriceAdjustment
			}
		}
		out = append(out, entry)
	}
	return out
}

func (cs *cartService) currentItems(ctx context.Context, tx *gorm.DB, cartID string) ([]domain.ItemRef, error) {
	lines, err := cs.lineRepo.GetByCart(ctx, tx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}

	var refs []domain.ItemRef
	seen := make(map[domain.ItemRef]struct{})
	add := func(ref domain.ItemRef) {
		if _, ok := seen[ref]; !ok {
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}

	for _, line := range lines {
		add(domain.ItemRef{ID: line.ProductID, Type: domain.ItemTypeProduct})
		ids, err := decodeAdditionalIDs(line.AdditionalIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			add(domain.ItemRef{ID: id, Type: domain.ItemTypeAdditional})
		}
	}
	return refs, nil
}

func roundBreakdown(b PriceBreakdown) PriceBreakdown {
	b.UnitPrice = Round2(b.UnitPrice)
	b.EffectiveUnitPrice = Round2(b.EffectiveUnitPrice)
	b.LineTotal = Round2(b.LineTotal)
	for i := range b.Additionals {
		b.Additionals[i].Base = Round2(b.Additionals[i].Base)
		b.Additionals[i].Adjustments = Round2(b.Additionals[i].Adjustments)
		b.Additionals[i].Total = Round2(b.Additionals[i].Total)
	}
	return b
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func decodeAdditionalIDs(raw datatypes.JSON) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal(raw, &strs); err != nil {
		return nil, fmt.Errorf("decode additional ids: %w", err)
	}
	out := make([]uuid.UUID, 0, len(strs))
	for _, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("decode additional id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func decodeCustomizations(raw datatypes.JSON) ([]domain.CustomizationInput, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var inputs []domain.CustomizationInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("decode customizations: %w", err)
	}
	return inputs, nil
}
