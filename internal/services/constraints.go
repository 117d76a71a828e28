package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/data/repos/constraints"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/apierr"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// AddDecision is the resolver's verdict on a proposed cart admission.
// The resolver never mutates the cart; it only approves or rejects.
type AddDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

type ConstraintService interface {
	// CanAdd evaluates every constraint touching the candidate
	// against the cart's current item set. Mutual exclusion is
	// checked from both directions; REQUIRES blocks the add when the
	// dependency is absent (dependencies are never auto-inserted).
	CanAdd(ctx context.Context, candidate domain.ItemRef, currentItems []domain.ItemRef) (AddDecision, error)

	// Authoring (admin), not cart runtime.
	Create(ctx context.Context, constraint *domain.ItemConstraint) (*domain.ItemConstraint, error)
	List(ctx context.Context) ([]*domain.ItemConstraint, error)
	ListForItem(ctx context.Context, ref domain.ItemRef) ([]*domain.ItemConstraint, error)
	Search(ctx context.Context, query string) ([]*domain.ItemConstraint, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type constraintService struct {
	log            *logger.Logger
	constraintRepo constraints.ConstraintRepo
	itemRepo       catalog.ItemRepo
}

func NewConstraintService(log *logger.Logger, constraintRepo constraints.ConstraintRepo, itemRepo catalog.ItemRepo) ConstraintService {
	return &constraintService{
		log:            log.With("service", "ConstraintService"),
		constraintRepo: constraintRepo,
		itemRepo:       itemRepo,
	}
}

func (cs *constraintService) CanAdd(ctx context.Context, candidate domain.ItemRef, currentItems []domain.ItemRef) (AddDecision, error) {
	touching, err := cs.constraintRepo.GetTouching(ctx, nil, candidate)
	if err != nil {
		return AddDecision{}, fmt.Errorf("load constraints: %w", err)
	}

	present := make(map[domain.ItemRef]struct{}, len(currentItems))
	for _, item := range currentItems {
		present[item] = struct{}{}
	}

	for _, constraint := range touching {
		switch constraint.ConstraintType {
		case domain.ConstraintMutuallyExclusive:
			// Stored directed, evaluated symmetric: whichever side
			// the candidate sits on, the opposite item blocks it.
			var opposite domain.ItemRef
			switch {
			case constraint.Target().Equal(candidate):
				opposite = constraint.Related()
			case constraint.Related().Equal(candidate):
				opposite = constraint.Target()
			default:
				continue
			}
			if _, ok := present[opposite]; ok {
				reason := constraint.Message
				if reason == "" {
					reason = cs.defaultExclusionMessage(ctx, candidate, opposite)
				}
				return AddDecision{Allowed: false, Reason: reason}, nil
			}

		case domain.ConstraintRequires:
			if !constraint.Target().Equal(candidate) {
				continue
			}
			dependency := constraint.Related()
			if _, ok := present[dependency]; !ok {
				reason := constraint.Message
				if reason == "" {
					reason = cs.defaultRequiresMessage(ctx, candidate, dependency)
				}
				return AddDecision{Allowed: false, Reason: reason}, nil
			}
		}
	}

	return AddDecision{Allowed: true}, nil
}

func (cs *constraintService) defaultExclusionMessage(ctx context.Context, a, b domain.ItemRef) string {
	names := cs.namesFor(ctx, a, b)
	return fmt.Sprintf("%s não pode ser combinado com %s", names[a.ID], names[b.ID])
}

func (cs *constraintService) defaultRequiresMessage(ctx context.Context, a, b domain.ItemRef) string {
	names := cs.namesFor(ctx, a, b)
	return fmt.Sprintf("%s requer %s no carrinho", names[a.ID], names[b.ID])
}

func (cs *constraintService) namesFor(ctx context.Context, refs ...domain.ItemRef) map[uuid.UUID]string {
	names, err := cs.itemRepo.NamesByRefs(ctx, nil, refs)
	if err != nil {
		cs.log.Warn("Failed to resolve item names for constraint message", "error", err)
		names = map[uuid.UUID]string{}
	}
	for _, ref := range refs {
		if names[ref.ID] == "" {
			names[ref.ID] = ref.ID.String()
		}
	}
	return names
}

func (cs *constraintService) Create(ctx context.Context, constraint *domain.ItemConstraint) (*domain.ItemConstraint, error) {
	if !constraint.ConstraintType.Valid() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_constraint_type", fmt.Errorf("unknown constraint type %q", constraint.ConstraintType))
	}
	if !constraint.TargetItemType.Valid() || !constraint.RelatedItemType.Valid() {
		return nil, apierr.New(http.StatusBadRequest, "invalid_item_type", fmt.Errorf("item types must be PRODUCT or ADDITIONAL"))
	}
	if constraint.Target().Equal(constraint.Related()) {
		return nil, apierr.New(http.StatusBadRequest, "self_constraint", fmt.Errorf("um item não pode ter restrição consigo mesmo"))
	}

	exists, err := cs.constraintRepo.ExistsTriple(ctx, nil, constraint.Target(), constraint.ConstraintType, constraint.Related())
	if err != nil {
		return nil, fmt.Errorf("check duplicate constraint: %w", err)
	}
	if exists {
		// Distinct from a generic creation failure: the admin UI
		// surfaces "already exists" specifically.
		return nil, apierr.New(http.StatusConflict, "constraint_already_exists", fmt.Errorf("restrição já existe"))
	}

	created, err := cs.constraintRepo.Create(ctx, nil, constraint)
	if err != nil {
		return nil, fmt.Errorf("create constraint: %w", err)
	}
	cs.log.Info("Constraint created", "constraint_id", created.ID, "type", created.ConstraintType)
	return created, nil
}

func (cs *constraintService) List(ctx context.Context) ([]*domain.ItemConstraint, error) {
	return cs.constraintRepo.GetAll(ctx, nil)
}

func (cs *constraintService) ListForItem(ctx context.Context, ref domain.ItemRef) ([]*domain.ItemConstraint, error) {
	return cs.constraintRepo.GetTouching(ctx, nil, ref)
}

func (cs *constraintService) Search(ctx context.Context, query string) ([]*domain.ItemConstraint, error) {
	return cs.constraintRepo.Search(ctx, nil, query)
}

func (cs *constraintService) Delete(ctx context.Context, id uuid.UUID) error {
	return cs.constraintRepo.DeleteByIDs(ctx, nil, []uuid.UUID{id})
}
