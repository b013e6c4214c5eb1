package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminController serves the dashboard: every order, status changes and statistics
type AdminController struct {
	orders services.OrderService
	stats  services.StatsService
}

func NewAdminController(orders services.OrderService, stats services.StatsService) *AdminController {
	return &AdminController{orders: orders, stats: stats}
}

// ListOrders godoc
// @Summary List all orders
// @Description Every order with its customer, newest first
// @Tags admin
// @Produce json
// @Success 200 {array} models.PizzaOrder
// @Failure 403 {object} models.APIError
// @Security CookieAuth
// @Router /api/admin/orders [get]
func (ac *AdminController) ListOrders(c *gin.Context) {
	orders, err := ac.orders.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get an order
// @Tags admin
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.PizzaOrder
// @Failure 404 {object} models.APIError
// @Security CookieAuth
// @Router /api/admin/orders/{id} [get]
func (ac *AdminController) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := ac.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err, models.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus godoc
// @Summary Change an order status
// @Description Status must be one of pending, preparing, delivered, cancelled
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body object{status=string} true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security CookieAuth
// @Router /api/admin/orders/{id}/status [patch]
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	order, err := ac.orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, err, models.ErrOrderNotFound)
		return
	}

	customer := ""
	if order.User != nil {
		customer = order.User.Name
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"order": gin.H{
			"id":        order.ID,
			"status":    order.Status,
			"updatedAt": order.UpdatedAt,
			"customer":  customer,
		},
	})
}

// GetStats godoc
// @Summary Order statistics
// @Description Count and revenue per status plus grand totals
// @Tags admin
// @Produce json
// @Success 200 {object} services.Stats
// @Security CookieAuth
// @Router /api/admin/stats [get]
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.stats.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportOrders godoc
// @Summary Export orders
// @Description Downloads every order and the status summary as an Excel workbook
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Security CookieAuth
// @Router /api/admin/orders/export [get]
func (ac *AdminController) ExportOrders(c *gin.Context) {
	// Buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := ac.stats.ExportOrders(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
