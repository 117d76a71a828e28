package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/http/response"
	"github.com/meumosaico/backend/internal/services"
)

type CustomizationHandler struct {
	catalog    services.CatalogService
	validation services.ValidationService
	preview    services.PreviewService
}

func NewCustomizationHandler(catalog services.CatalogService, validation services.ValidationService, preview services.PreviewService) *CustomizationHandler {
	return &CustomizationHandler{
		catalog:    catalog,
		validation: validation,
		preview:    preview,
	}
}

func parseItemType(raw string) (domain.ItemType, error) {
	itemType := domain.ItemType(strings.ToUpper(raw))
	if !itemType.Valid() {
		return "", fmt.Errorf("unknown item type %q", raw)
	}
	return itemType, nil
}

// GET /api/customizations/:itemType/:itemId
func (h *CustomizationHandler) GetConfig(c *gin.Context) {
	itemType, err := parseItemType(c.Param("itemType"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_type", err)
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_id", err)
		return
	}

	cfg, err := h.catalog.CustomizationConfig(c.Request.Context(), itemType, itemID)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "get_config_failed")
		return
	}
	response.RespondOK(c, cfg)
}

type previewRequest struct {
	ProductID         uuid.UUID                   `json:"productId" binding:"required"`
	CustomizationData []domain.CustomizationInput `json:"customizationData"`
}

// POST /api/customization/preview
func (h *CustomizationHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.preview.Compose(c.Request.Context(), req.ProductID, req.CustomizationData)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "preview_failed")
		return
	}
	response.RespondOK(c, result)
}

type validateV1Request struct {
	ProductID      uuid.UUID                   `json:"productId" binding:"required"`
	Customizations []domain.CustomizationInput `json:"customizations"`
}

// POST /api/customization/validate
//
// Legacy shape kept for older storefront clients; same engine as v2.
func (h *CustomizationHandler) ValidateV1(c *gin.Context) {
	var req validateV1Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	result, err := h.validation.ValidateRemote(c.Request.Context(), domain.ItemTypeProduct, req.ProductID, req.Customizations)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "validation_failed")
		return
	}
	response.RespondOK(c, result)
}

type validateV2Request struct {
	ItemType string                      `json:"itemType" binding:"required"`
	ItemID   uuid.UUID                   `json:"itemId" binding:"required"`
	Inputs   []domain.CustomizationInput `json:"inputs"`
}

// POST /api/customizations/validate
func (h *CustomizationHandler) ValidateV2(c *gin.Context) {
	var req validateV2Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	itemType, err := parseItemType(req.ItemType)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_type", err)
		return
	}

	result, err := h.validation.ValidateRemote(c.Request.Context(), itemType, req.ItemID, req.Inputs)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "validation_failed")
		return
	}
	response.RespondOK(c, result)
}
