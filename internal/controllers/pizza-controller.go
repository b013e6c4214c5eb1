package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/pricing"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
)

// PizzaController serves the pizza builder: ingredients, price previews and direct orders
type PizzaController interface {
	// GetIngredients returns the ingredient catalog
	GetIngredients(c *gin.Context)
	// CalculatePrice prices a configuration without saving it
	CalculatePrice(c *gin.Context)
	// CreateOrder places a single pending order
	CreateOrder(c *gin.Context)
	// GetMyOrders lists the caller's orders
	GetMyOrders(c *gin.Context)
	// GetMyOrder returns one of the caller's orders
	GetMyOrder(c *gin.Context)
}

type controller struct {
	catalog *catalog.Catalog
	pricing *pricing.Calculator
	orders  services.OrderService
}

// NewPizzaController creates a new instance of PizzaController
func NewPizzaController(c *catalog.Catalog, orders services.OrderService) *controller {
	return &controller{catalog: c, pricing: pricing.NewCalculator(c), orders: orders}
}

// GetIngredients godoc
// @Summary Get pizza ingredients
// @Description Bases, sauces, cheeses, toppings and sizes with their prices
// @Tags pizza
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/pizza/ingredients [get]
func (p *controller) GetIngredients(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": p.catalog})
}

type priceRequest struct {
	Crust    string            `json:"crust"`
	Sauce    string            `json:"sauce"`
	Cheeses  models.StringList `json:"cheeses"`
	Toppings models.StringList `json:"toppings"`
	Size     string            `json:"size"`
}

// CalculatePrice godoc
// @Summary Preview a pizza price
// @Description Prices a configuration with the same rule used at checkout
// @Tags pizza
// @Accept json
// @Produce json
// @Param pizza body priceRequest true "Pizza configuration"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Router /api/pizza/calculate-price [post]
func (p *controller) CalculatePrice(ctx *gin.Context) {
	var req priceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	breakdown := p.pricing.Breakdown(pricing.Config{Size: req.Size, Toppings: req.Toppings, Cheeses: req.Cheeses})
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"price":     breakdown.Total,
			"breakdown": breakdown,
		},
	})
}

// CreateOrder godoc
// @Summary Order a pizza
// @Description Creates a pending order priced server side. Crust and sauce are required.
// @Tags pizza
// @Accept json
// @Produce json
// @Param order body services.OrderInput true "Pizza order"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Security CookieAuth
// @Router /api/pizza/order [post]
func (p *controller) CreateOrder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var input services.OrderInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		badRequest(ctx, "Invalid request body")
		return
	}

	order, err := p.orders.Create(ctx.Request.Context(), userID, input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Pizza order created successfully",
		"data":    order,
	})
}

// GetMyOrders godoc
// @Summary List my orders
// @Tags pizza
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.OAuth2Error
// @Security CookieAuth
// @Router /api/pizza/orders [get]
func (p *controller) GetMyOrders(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	orders, err := p.orders.ListForUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// GetMyOrder godoc
// @Summary Get one of my orders
// @Tags pizza
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security CookieAuth
// @Router /api/pizza/orders/{id} [get]
func (p *controller) GetMyOrder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	orderID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	order, err := p.orders.GetForUser(ctx.Request.Context(), userID, orderID)
	if err != nil {
		respondError(ctx, err, models.ErrOrderNotFound)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}
