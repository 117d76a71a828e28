package constraints

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meumosaico/backend/internal/data/repos/testutil"
	"github.com/meumosaico/backend/internal/domain"
)

func TestGetTouchingMatchesEitherSide(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewConstraintRepo(db, testutil.Logger(t))

	vidro := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	acrilico := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	outro := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	testutil.SeedConstraint(t, ctx, tx, vidro, domain.ConstraintMutuallyExclusive, acrilico, "")
	testutil.SeedConstraint(t, ctx, tx, outro, domain.ConstraintRequires, vidro, "")

	// vidro appears once as target, once as related.
	touching, err := repo.GetTouching(ctx, tx, vidro)
	require.NoError(t, err)
	assert.Len(t, touching, 2)

	touching, err = repo.GetTouching(ctx, tx, acrilico)
	require.NoError(t, err)
	assert.Len(t, touching, 1)

	none, err := repo.GetTouching(ctx, tx, domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeProduct})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetTouchingDistinguishesItemType(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewConstraintRepo(db, testutil.Logger(t))

	sharedID := uuid.New()
	asProduct := domain.ItemRef{ID: sharedID, Type: domain.ItemTypeProduct}
	asAdditional := domain.ItemRef{ID: sharedID, Type: domain.ItemTypeAdditional}
	related := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	testutil.SeedConstraint(t, ctx, tx, asProduct, domain.ConstraintMutuallyExclusive, related, "")

	touching, err := repo.GetTouching(ctx, tx, asAdditional)
	require.NoError(t, err)
	assert.Empty(t, touching)
}

func TestExistsTripleIsDirectional(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewConstraintRepo(db, testutil.Logger(t))

	target := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeProduct}
	related := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	testutil.SeedConstraint(t, ctx, tx, target, domain.ConstraintRequires, related, "")

	exists, err := repo.ExistsTriple(ctx, tx, target, domain.ConstraintRequires, related)
	require.NoError(t, err)
	assert.True(t, exists)

	// Same pair, reversed direction: a distinct triple.
	exists, err = repo.ExistsTriple(ctx, tx, related, domain.ConstraintRequires, target)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsTriple(ctx, tx, target, domain.ConstraintMutuallyExclusive, related)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSearchMatchesMessageAndIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewConstraintRepo(db, testutil.Logger(t))

	target := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	related := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	seeded := testutil.SeedConstraint(t, ctx, tx, target, domain.ConstraintMutuallyExclusive, related, "Moldura e vidro não combinam")

	byMessage, err := repo.Search(ctx, tx, "moldura")
	require.NoError(t, err)
	require.Len(t, byMessage, 1)
	assert.Equal(t, seeded.ID, byMessage[0].ID)

	byID, err := repo.Search(ctx, tx, target.ID.String())
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, seeded.ID, byID[0].ID)
}

func TestDeleteByIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewConstraintRepo(db, testutil.Logger(t))

	target := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	related := domain.ItemRef{ID: uuid.New(), Type: domain.ItemTypeAdditional}
	seeded := testutil.SeedConstraint(t, ctx, tx, target, domain.ConstraintRequires, related, "")

	require.NoError(t, repo.DeleteByIDs(ctx, tx, []uuid.UUID{seeded.ID}))

	remaining, err := repo.GetByIDs(ctx, tx, []uuid.UUID{seeded.ID})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Empty input is a no-op, not an error.
	require.NoError(t, repo.DeleteByIDs(ctx, tx, nil))
}
