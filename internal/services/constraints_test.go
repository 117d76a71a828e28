package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/data/repos/constraints"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/apierr"
	"github.com/meumosaico/backend/internal/platform/logger"
)

type fakeConstraintRepo struct {
	rows []*domain.ItemConstraint
}

var _ constraints.ConstraintRepo = (*fakeConstraintRepo)(nil)

func (f *fakeConstraintRepo) Create(ctx context.Context, tx *gorm.DB, constraint *domain.ItemConstraint) (*domain.ItemConstraint, error) {
	f.rows = append(f.rows, constraint)
	return constraint, nil
}

func (f *fakeConstraintRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*domain.ItemConstraint, error) {
	return f.rows, nil
}

func (f *fakeConstraintRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.ItemConstraint, error) {
	var out []*domain.ItemConstraint
	for _, row := range f.rows {
		for _, id := range ids {
			if row.ID == id {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func (f *fakeConstraintRepo) GetTouching(ctx context.Context, tx *gorm.DB, ref domain.ItemRef) ([]*domain.ItemConstraint, error) {
	var out []*domain.ItemConstraint
	for _, row := range f.rows {
		if row.Target().Equal(ref) || row.Related().Equal(ref) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeConstraintRepo) ExistsTriple(ctx context.Context, tx *gorm.DB, target domain.ItemRef, constraintType domain.ConstraintType, related domain.ItemRef) (bool, error) {
	for _, row := range f.rows {
		if row.Target().Equal(target) && row.ConstraintType == constraintType && row.Related().Equal(related) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConstraintRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*domain.ItemConstraint, error) {
	return f.rows, nil
}

func (f *fakeConstraintRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	var kept []*domain.ItemConstraint
	for _, row := range f.rows {
		remove := false
		for _, id := range ids {
			if row.ID == id {
				remove = true
			}
		}
		if !remove {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

type fakeItemNames struct {
	names map[uuid.UUID]string
}

func (f *fakeItemNames) CreateProducts(ctx context.Context, tx *gorm.DB, products []*domain.Product) ([]*domain.Product, error) {
	return products, nil
}

func (f *fakeItemNames) CreateAdditionals(ctx context.Context, tx *gorm.DB, additionals []*domain.Additional) ([]*domain.Additional, error) {
	return additionals, nil
}

func (f *fakeItemNames) GetProductsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Product, error) {
	return nil, nil
}

func (f *fakeItemNames) GetAdditionalsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.Additional, error) {
	return nil, nil
}

func (f *fakeItemNames) NamesByRefs(ctx context.Context, tx *gorm.DB, refs []domain.ItemRef) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	for _, ref := range refs {
		if name, ok := f.names[ref.ID]; ok {
			out[ref.ID] = name
		}
	}
	return out, nil
}

func newConstraintServiceForTest(t *testing.T, rows ...*domain.ItemConstraint) (ConstraintService, *fakeConstraintRepo, map[uuid.UUID]string) {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)

	repo := &fakeConstraintRepo{rows: rows}
	names := map[uuid.UUID]string{}
	return NewConstraintService(log, repo, &fakeItemNames{names: names}), repo, names
}

func ref(t domain.ItemType) domain.ItemRef {
	return domain.ItemRef{ID: uuid.New(), Type: t}
}

func exclusion(target, related domain.ItemRef, message string) *domain.ItemConstraint {
	return &domain.ItemConstraint{
		ID:              uuid.New(),
		TargetItemID:    target.ID,
		TargetItemType:  target.Type,
		ConstraintType:  domain.ConstraintMutuallyExclusive,
		RelatedItemID:   related.ID,
		RelatedItemType: related.Type,
		Message:         message,
	}
}

func requires(target, related domain.ItemRef) *domain.ItemConstraint {
	return &domain.ItemConstraint{
		ID:              uuid.New(),
		TargetItemID:    target.ID,
		TargetItemType:  target.Type,
		ConstraintType:  domain.ConstraintRequires,
		RelatedItemID:   related.ID,
		RelatedItemType: related.Type,
	}
}

// One directed MUTUALLY_EXCLUSIVE row blocks admission from both
// directions.
func TestCanAddMutualExclusionIsSymmetric(t *testing.T) {
	a := ref(domain.ItemTypeProduct)
	b := ref(domain.ItemTypeAdditional)
	svc, _, names := newConstraintServiceForTest(t, exclusion(a, b, ""))
	names[a.ID] = "Quadro Grande"
	names[b.ID] = "Moldura Clássica"

	ctx := context.Background()

	decision, err := svc.CanAdd(ctx, b, []domain.ItemRef{a})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "não pode ser combinado")

	decision, err = svc.CanAdd(ctx, a, []domain.ItemRef{b})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestCanAddExclusionUsesAuthoredMessage(t *testing.T) {
	a := ref(domain.ItemTypeProduct)
	b := ref(domain.ItemTypeProduct)
	svc, _, _ := newConstraintServiceForTest(t, exclusion(a, b, "Escolha apenas um tamanho de quadro"))

	decision, err := svc.CanAdd(context.Background(), a, []domain.ItemRef{b})
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, "Escolha apenas um tamanho de quadro", decision.Reason)
}

func TestCanAddRequiresGating(t *testing.T) {
	a := ref(domain.ItemTypeAdditional)
	b := ref(domain.ItemTypeProduct)
	svc, _, _ := newConstraintServiceForTest(t, requires(a, b))

	ctx := context.Background()

	decision, err := svc.CanAdd(ctx, a, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "missing dependency must block the add")

	decision, err = svc.CanAdd(ctx, a, []domain.ItemRef{b})
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

// REQUIRES is asymmetric: A requiring B never blocks B.
func TestCanAddRequiresIsAsymmetric(t *testing.T) {
	a := ref(domain.ItemTypeProduct)
	b := ref(domain.ItemTypeAdditional)
	svc, _, _ := newConstraintServiceForTest(t, requires(a, b))

	decision, err := svc.CanAdd(context.Background(), b, nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCanAddNoConstraintsAllows(t *testing.T) {
	svc, _, _ := newConstraintServiceForTest(t)

	decision, err := svc.CanAdd(context.Background(), ref(domain.ItemTypeProduct), nil)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestCreateRejectsSelfConstraint(t *testing.T) {
	a := ref(domain.ItemTypeProduct)
	svc, _, _ := newConstraintServiceForTest(t)

	_, err := svc.Create(context.Background(), exclusion(a, a, ""))
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "self_constraint", apiErr.Code)
}

// A duplicate (target, type, related) triple is a distinct conflict,
// not a generic failure.
func TestCreateRejectsDuplicateWithConflict(t *testing.T) {
	a := ref(domain.ItemTypeProduct)
	b := ref(domain.ItemTypeAdditional)
	svc, _, _ := newConstraintServiceForTest(t, exclusion(a, b, ""))

	_, err := svc.Create(context.Background(), exclusion(a, b, "outra mensagem"))
	require.Error(t, err)

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "constraint_already_exists", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "já existe")
}
