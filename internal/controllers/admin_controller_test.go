package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, app *testApp, cookie *http.Cookie) models.PizzaOrder {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/pizza/order", margherita(), cookie)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Data models.PizzaOrder `json:"data"`
	}
	decode(t, w, &body)
	return body.Data
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t)
	customer := app.cookieFor(t, app.createUser(t, "customer@example.com", models.RoleCustomer))

	for _, path := range []string{"/api/admin/orders", "/api/admin/stats", "/api/admin/inventory", "/api/admin/clients"} {
		w := app.do(t, http.MethodGet, path, nil, customer)
		assert.Equal(t, http.StatusForbidden, w.Code, path)

		w = app.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminOrders(t *testing.T) {
	app := newTestApp(t)
	customer := app.createUser(t, "customer@example.com", models.RoleCustomer)
	admin := app.cookieFor(t, app.createUser(t, "boss@example.com", models.RoleAdmin))
	order := placeOrder(t, app, app.cookieFor(t, customer))
	path := fmt.Sprintf("/api/admin/orders/%d", order.ID)

	t.Run("list includes the customer", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/admin/orders", nil, admin)
		require.Equal(t, http.StatusOK, w.Code)
		var orders []models.PizzaOrder
		decode(t, w, &orders)
		require.Len(t, orders, 1)
		require.NotNil(t, orders[0].User)
		assert.Equal(t, customer.Email, orders[0].User.Email)
	})

	t.Run("get", func(t *testing.T) {
		w := app.do(t, http.MethodGet, path, nil, admin)
		assert.Equal(t, http.StatusOK, w.Code)

		w = app.do(t, http.MethodGet, "/api/admin/orders/9999", nil, admin)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, models.ErrOrderNotFound, errorCode(t, w))
	})

	t.Run("invalid status", func(t *testing.T) {
		w := app.do(t, http.MethodPatch, path+"/status", gin.H{"status": "burnt"}, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrOrderInvalidState, errorCode(t, w))
	})

	t.Run("valid status", func(t *testing.T) {
		w := app.do(t, http.MethodPatch, path+"/status", gin.H{"status": "Delivered"}, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Order struct {
				ID       uint   `json:"id"`
				Status   string `json:"status"`
				Customer string `json:"customer"`
			} `json:"order"`
		}
		decode(t, w, &body)
		assert.Equal(t, order.ID, body.Order.ID)
		assert.Equal(t, models.StatusDelivered, body.Order.Status)
		assert.Equal(t, customer.Name, body.Order.Customer)
	})

	t.Run("missing order", func(t *testing.T) {
		w := app.do(t, http.MethodPatch, "/api/admin/orders/9999/status", gin.H{"status": "cancelled"}, admin)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminStatsAndExport(t *testing.T) {
	app := newTestApp(t)
	customer := app.cookieFor(t, app.createUser(t, "customer@example.com", models.RoleCustomer))
	admin := app.cookieFor(t, app.createUser(t, "boss@example.com", models.RoleAdmin))
	placeOrder(t, app, customer)
	placeOrder(t, app, customer)

	w := app.do(t, http.MethodGet, "/api/admin/stats", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.Stats
	decode(t, w, &stats)
	assert.Len(t, stats.StatusStats, len(models.OrderStatuses))
	assert.Equal(t, int64(2), stats.StatusStats[models.StatusPending].Count)
	assert.Equal(t, int64(598), stats.Totals.Revenue)
	assert.Zero(t, stats.StatusStats[models.StatusDelivered].Count)

	w = app.do(t, http.MethodGet, "/api/admin/orders/export", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment;"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"), "xlsx is a zip archive")
}
