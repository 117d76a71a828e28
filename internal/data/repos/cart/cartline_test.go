package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meumosaico/backend/internal/data/repos/testutil"
	"github.com/meumosaico/backend/internal/domain"
)

func newLine(cartID, fingerprint string, quantity int) *domain.CartLine {
	return &domain.CartLine{
		ID:                 uuid.New(),
		CartID:             cartID,
		ProductID:          uuid.New(),
		Quantity:           quantity,
		UnitPrice:          100,
		EffectiveUnitPrice: 90,
		Fingerprint:        fingerprint,
	}
}

func TestGetByFingerprintScopedToCart(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCartLineRepo(db, testutil.Logger(t))

	cartA := uuid.NewString()
	cartB := uuid.NewString()
	_, err := repo.Create(ctx, tx, newLine(cartA, "fp-1", 1))
	require.NoError(t, err)
	_, err = repo.Create(ctx, tx, newLine(cartB, "fp-1", 2))
	require.NoError(t, err)

	line, err := repo.GetByFingerprint(ctx, tx, cartA, "fp-1")
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, cartA, line.CartID)
	assert.Equal(t, 1, line.Quantity)

	// Miss is nil, nil rather than an error.
	line, err = repo.GetByFingerprint(ctx, tx, cartA, "fp-missing")
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestDuplicateFingerprintInCartRejected(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCartLineRepo(db, testutil.Logger(t))

	cartID := uuid.NewString()
	_, err := repo.Create(ctx, tx, newLine(cartID, "fp-dup", 1))
	require.NoError(t, err)

	_, err = repo.Create(ctx, tx, newLine(cartID, "fp-dup", 1))
	require.Error(t, err)
}

func TestUpdateQuantity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCartLineRepo(db, testutil.Logger(t))

	cartID := uuid.NewString()
	created, err := repo.Create(ctx, tx, newLine(cartID, "fp-q", 1))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateQuantity(ctx, tx, created.ID, 5))

	line, err := repo.GetByFingerprint(ctx, tx, cartID, "fp-q")
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 5, line.Quantity)
}

func TestGetByCartOrdersByCreation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCartLineRepo(db, testutil.Logger(t))

	cartID := uuid.NewString()
	first, err := repo.Create(ctx, tx, newLine(cartID, "fp-a", 1))
	require.NoError(t, err)
	second, err := repo.Create(ctx, tx, newLine(cartID, "fp-b", 1))
	require.NoError(t, err)

	lines, err := repo.GetByCart(ctx, tx, cartID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, first.ID, lines[0].ID)
	assert.Equal(t, second.ID, lines[1].ID)
}

func TestDeleteByIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCartLineRepo(db, testutil.Logger(t))

	cartID := uuid.NewString()
	created, err := repo.Create(ctx, tx, newLine(cartID, "fp-del", 1))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByIDs(ctx, tx, []uuid.UUID{created.ID}))

	lines, err := repo.GetByCart(ctx, tx, cartID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
