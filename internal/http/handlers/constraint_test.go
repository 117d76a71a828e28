package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/http/response"
	"github.com/meumosaico/backend/internal/platform/apierr"
	"github.com/meumosaico/backend/internal/services"
)

type stubConstraintService struct {
	createErr error
	created   *domain.ItemConstraint
}

var _ services.ConstraintService = (*stubConstraintService)(nil)

func (s *stubConstraintService) CanAdd(ctx context.Context, candidate domain.ItemRef, currentItems []domain.ItemRef) (services.AddDecision, error) {
	return services.AddDecision{Allowed: true}, nil
}

func (s *stubConstraintService) Create(ctx context.Context, constraint *domain.ItemConstraint) (*domain.ItemConstraint, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = constraint
	return constraint, nil
}

func (s *stubConstraintService) List(ctx context.Context) ([]*domain.ItemConstraint, error) {
	return nil, nil
}

func (s *stubConstraintService) ListForItem(ctx context.Context, ref domain.ItemRef) ([]*domain.ItemConstraint, error) {
	return nil, nil
}

func (s *stubConstraintService) Search(ctx context.Context, query string) ([]*domain.ItemConstraint, error) {
	return nil, nil
}

func (s *stubConstraintService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func performCreate(t *testing.T, svc services.ConstraintService, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewConstraintHandler(svc)
	r.POST("/api/admin/constraints", h.Create)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/constraints", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func constraintBody() string {
	return fmt.Sprintf(`{
		"targetItemId": %q,
		"targetItemType": "ADDITIONAL",
		"constraintType": "MUTUALLY_EXCLUSIVE",
		"relatedItemId": %q,
		"relatedItemType": "ADDITIONAL",
		"message": "Vidro e acrílico não combinam"
	}`, uuid.NewString(), uuid.NewString())
}

func TestCreateConstraintForwardsConflictStatus(t *testing.T) {
	svc := &stubConstraintService{
		createErr: apierr.New(http.StatusConflict, "constraint_already_exists", fmt.Errorf("restrição já existe")),
	}

	w := performCreate(t, svc, constraintBody())

	assert.Equal(t, http.StatusConflict, w.Code)
	var envelope response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "constraint_already_exists", envelope.Error.Code)
	assert.Contains(t, envelope.Error.Message, "já existe")
}

func TestCreateConstraintSuccess(t *testing.T) {
	svc := &stubConstraintService{}

	w := performCreate(t, svc, constraintBody())

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, domain.ConstraintMutuallyExclusive, svc.created.ConstraintType)
	assert.Equal(t, "Vidro e acrílico não combinam", svc.created.Message)
}

func TestCreateConstraintRejectsMalformedBody(t *testing.T) {
	w := performCreate(t, &stubConstraintService{}, `{"targetItemId": "not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
