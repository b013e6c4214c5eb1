package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CartController struct {
	cart services.CartService
}

func NewCartController(cart services.CartService) *CartController {
	return &CartController{cart: cart}
}

// AddItem godoc
// @Summary Add a pizza to the cart
// @Description Every call stores a new row with quantity 1, identical pizzas are not merged
// @Tags cart
// @Accept json
// @Produce json
// @Param item body services.CartItemInput true "Pizza configuration"
// @Success 201 {object} models.CartItem
// @Failure 400 {object} models.APIError
// @Security CookieAuth
// @Router /api/cart [post]
func (cc *CartController) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	item, err := cc.cart.AddItem(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// ListItems godoc
// @Summary Get my cart
// @Tags cart
// @Produce json
// @Success 200 {array} models.CartItem
// @Security CookieAuth
// @Router /api/cart [get]
func (cc *CartController) ListItems(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := cc.cart.ListItems(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RemoveItem godoc
// @Summary Remove a cart item
// @Tags cart
// @Produce json
// @Param id path int true "Cart item ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.APIError
// @Security CookieAuth
// @Router /api/cart/{id} [delete]
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := cc.cart.RemoveItem(c.Request.Context(), userID, itemID); err != nil {
		respondError(c, err, models.ErrCartItemNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// Clear godoc
// @Summary Empty my cart
// @Tags cart
// @Produce json
// @Success 200 {object} map[string]string
// @Security CookieAuth
// @Router /api/cart [delete]
func (cc *CartController) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := cc.cart.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared successfully"})
}
