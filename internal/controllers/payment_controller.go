package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	payments services.PaymentService
}

func NewPaymentController(payments services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// CreateOrder godoc
// @Summary Start a payment
// @Description Creates a gateway order for the server computed cart total
// @Tags payment
// @Accept json
// @Produce json
// @Param body body object{promoCode=string} false "Optional promo code"
// @Success 200 {object} services.Intent
// @Failure 400 {object} models.APIError
// @Failure 502 {object} models.APIError
// @Security CookieAuth
// @Router /api/payment/create-order [post]
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		PromoCode string `json:"promoCode"`
	}
	// The body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}

	intent, err := pc.payments.CreateIntent(c.Request.Context(), userID, req.PromoCode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, intent)
}

// VerifyPayment godoc
// @Summary Confirm a payment
// @Description Verifies the gateway signature, turns the cart into orders and deducts inventory
// @Tags payment
// @Accept json
// @Produce json
// @Param confirmation body services.Confirmation true "Gateway callback fields"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security CookieAuth
// @Router /api/payment/verify-payment [post]
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var confirmation services.Confirmation
	if err := c.ShouldBindJSON(&confirmation); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := pc.payments.Verify(c.Request.Context(), userID, confirmation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Payment verified and order placed",
		"orders":         result.Orders,
		"lowStock":       result.LowStock,
		"inventoryError": result.InventoryError,
	})
}
