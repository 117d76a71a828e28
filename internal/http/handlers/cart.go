package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/http/response"
	"github.com/meumosaico/backend/internal/services"
)

type CartHandler struct {
	cart services.CartService
}

func NewCartHandler(cart services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type addCartItemRequest struct {
	ProductID      uuid.UUID                   `json:"productId" binding:"required"`
	Quantity       int                         `json:"quantity" binding:"required"`
	AdditionalIDs  []uuid.UUID                 `json:"additionalIds"`
	Customizations []domain.CustomizationInput `json:"customizations"`
}

// POST /api/cart/:cartId/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	line, err := h.cart.AddOrMerge(c.Request.Context(), c.Param("cartId"), req.ProductID, req.Quantity, req.AdditionalIDs, req.Customizations)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "add_cart_item_failed")
		return
	}
	response.RespondCreated(c, gin.H{"line": line})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PATCH /api/cart/:cartId/items/:fingerprint/quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.cart.UpdateQuantity(c.Request.Context(), c.Param("cartId"), c.Param("fingerprint"), req.Quantity); err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "update_quantity_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

type removeCartItemRequest struct {
	ProductID      uuid.UUID                   `json:"productId" binding:"required"`
	AdditionalIDs  []uuid.UUID                 `json:"additionalIds"`
	Customizations []domain.CustomizationInput `json:"customizations"`
}

// DELETE /api/cart/:cartId/items
//
// The line is addressed by its recomputed fingerprint: omitting
// additionals and customizations targets the base configuration.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req removeCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.cart.Remove(c.Request.Context(), c.Param("cartId"), req.ProductID, req.AdditionalIDs, req.Customizations); err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "remove_cart_item_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/cart/:cartId
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cart.GetPriced(c.Request.Context(), c.Param("cartId"))
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "get_cart_failed")
		return
	}
	response.RespondOK(c, view)
}
