package handler

import (
	"strconv"

	"storefront-wallet/internal/adapter/http/dto"
	"storefront-wallet/internal/core/ports"
	"storefront-wallet/pkg/apperror"
	"storefront-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// CartHandler handles cart-related endpoints.
type CartHandler struct {
	cartSvc ports.CartService
	catalog ports.CatalogClient
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartSvc ports.CartService, catalog ports.CatalogClient) *CartHandler {
	return &CartHandler{cartSvc: cartSvc, catalog: catalog}
}

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(c *gin.Context) {
	response.OK(c, dto.ToCartResponse(h.cartSvc.Items(), h.cartSvc.Total()))
}

// AddItem handles POST /api/v1/cart/items. The product is fetched from the
// catalog so the cart stores the current title and price, not whatever the
// client claims.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.cartSvc.AddItem(c.Request.Context(), *product, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToCartResponse(h.cartSvc.Items(), h.cartSvc.Total()))
}

// UpdateQuantity handles PUT /api/v1/cart/items/:id. Quantity zero removes
// the item.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("product id must be an integer"))
		return
	}

	var req dto.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.cartSvc.UpdateQuantity(c.Request.Context(), productID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToCartResponse(h.cartSvc.Items(), h.cartSvc.Total()))
}

// RemoveItem handles DELETE /api/v1/cart/items/:id.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("product id must be an integer"))
		return
	}

	if err := h.cartSvc.RemoveItem(c.Request.Context(), productID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToCartResponse(h.cartSvc.Items(), h.cartSvc.Total()))
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartSvc.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToCartResponse(nil, h.cartSvc.Total()))
}

// Checkout handles POST /api/v1/cart/checkout.
func (h *CartHandler) Checkout(c *gin.Context) {
	tx, err := h.cartSvc.Checkout(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToTransactionResponse(tx))
}
