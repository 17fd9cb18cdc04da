package handlers

import (
	"net/http"

	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler serves both table carts (session token) and customer carts (JWT).
// The owner always comes from the request context.
type CartHandler struct {
	cartService services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cs services.CartService) *CartHandler {
	return &CartHandler{cartService: cs}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	cart, err := h.cartService.GetCart(c.Request.Context(), owner)
	if err != nil {
		respondServiceError(c, err, "fetch cart")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	var req services.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "AddItem")
		return
	}
	cart, err := h.cartService.AddItem(c.Request.Context(), owner, req)
	if err != nil {
		respondServiceError(c, err, "add item to cart")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Item added to cart", cart)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateItem")
		return
	}
	cart, err := h.cartService.UpdateItem(c.Request.Context(), owner, itemID, req)
	if err != nil {
		respondServiceError(c, err, "update cart item")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Cart item updated", cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	cart, err := h.cartService.RemoveItem(c.Request.Context(), owner, itemID)
	if err != nil {
		respondServiceError(c, err, "remove cart item")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Cart item removed", cart)
}

// Checkout turns the caller's cart into an order. An empty body is allowed for table carts.
func (h *CartHandler) Checkout(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		return
	}
	var req services.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err, "Checkout")
			return
		}
	}
	resp, err := h.cartService.Checkout(c.Request.Context(), owner, req)
	if err != nil {
		respondServiceError(c, err, "place order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Order placed", resp)
}
