package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/http/response"
	"github.com/meumosaico/backend/internal/services"
)

type ConstraintHandler struct {
	constraints services.ConstraintService
}

func NewConstraintHandler(constraints services.ConstraintService) *ConstraintHandler {
	return &ConstraintHandler{constraints: constraints}
}

type createConstraintRequest struct {
	TargetItemID    uuid.UUID `json:"targetItemId" binding:"required"`
	TargetItemType  string    `json:"targetItemType" binding:"required"`
	ConstraintType  string    `json:"constraintType" binding:"required"`
	RelatedItemID   uuid.UUID `json:"relatedItemId" binding:"required"`
	RelatedItemType string    `json:"relatedItemType" binding:"required"`
	Message         string    `json:"message"`
}

// POST /api/admin/constraints
func (h *ConstraintHandler) Create(c *gin.Context) {
	var req createConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	constraint := &domain.ItemConstraint{
		TargetItemID:    req.TargetItemID,
		TargetItemType:  domain.ItemType(req.TargetItemType),
		ConstraintType:  domain.ConstraintType(req.ConstraintType),
		RelatedItemID:   req.RelatedItemID,
		RelatedItemType: domain.ItemType(req.RelatedItemType),
		Message:         req.Message,
	}

	created, err := h.constraints.Create(c.Request.Context(), constraint)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "create_constraint_failed")
		return
	}
	response.RespondCreated(c, created)
}

// GET /api/admin/constraints
func (h *ConstraintHandler) List(c *gin.Context) {
	constraints, err := h.constraints.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "list_constraints_failed")
		return
	}
	response.RespondOK(c, gin.H{"constraints": constraints})
}

// GET /api/admin/constraints/item/:type/:id
func (h *ConstraintHandler) ListForItem(c *gin.Context) {
	itemType, err := parseItemType(c.Param("type"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_type", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	constraints, err := h.constraints.ListForItem(c.Request.Context(), domain.ItemRef{ID: itemID, Type: itemType})
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "list_constraints_failed")
		return
	}
	response.RespondOK(c, gin.H{"constraints": constraints})
}

// GET /api/admin/constraints/search?q=
func (h *ConstraintHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query", fmt.Errorf("query parameter q is required"))
		return
	}

	constraints, err := h.constraints.Search(c.Request.Context(), query)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "search_constraints_failed")
		return
	}
	response.RespondOK(c, gin.H{"constraints": constraints})
}

// DELETE /api/admin/constraints/:id
func (h *ConstraintHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_constraint_id", err)
		return
	}

	if err := h.constraints.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "delete_constraint_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
