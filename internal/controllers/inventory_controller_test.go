package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := app.cookieFor(t, app.createUser(t, "boss@example.com", models.RoleAdmin))

	w := app.do(t, http.MethodGet, "/api/admin/inventory", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.InventoryItem
	decode(t, w, &items)
	require.Len(t, items, len(services.DefaultInventory()))

	w = app.do(t, http.MethodGet, "/api/admin/inventory/low-stock", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	var mushrooms models.InventoryItem
	for _, it := range items {
		if it.Name == "Mushrooms" {
			mushrooms = it
		}
	}
	require.NotZero(t, mushrooms.ID)

	t.Run("update marks item low", func(t *testing.T) {
		w := app.do(t, http.MethodPut, fmt.Sprintf("/api/admin/inventory/%d", mushrooms.ID), gin.H{"currentStock": 5}, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var updated models.InventoryItem
		decode(t, w, &updated)
		assert.Equal(t, 5, updated.CurrentStock)
		assert.Equal(t, mushrooms.Threshold, updated.Threshold)

		w = app.do(t, http.MethodGet, "/api/admin/inventory/low-stock", nil, admin)
		var low []models.InventoryItem
		decode(t, w, &low)
		require.Len(t, low, 1)
		assert.Equal(t, "Mushrooms", low[0].Name)
	})

	t.Run("update unknown item", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/admin/inventory/9999", gin.H{"currentStock": 5}, admin)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, models.ErrInventoryNotFound, errorCode(t, w))
	})

	t.Run("create", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/admin/inventory", gin.H{"name": "Olives", "category": "veggie", "currentStock": 40}, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("create keeps an explicit zero threshold", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/admin/inventory", gin.H{"name": "Capers", "category": "veggie", "currentStock": 5, "threshold": 0}, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created models.InventoryItem
		decode(t, w, &created)
		assert.Equal(t, 0, created.Threshold)

		var stored models.InventoryItem
		require.NoError(t, app.db.First(&stored, created.ID).Error)
		assert.Equal(t, 0, stored.Threshold)
	})

	t.Run("create defaults a missing threshold", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/admin/inventory", gin.H{"name": "Jalapenos", "category": "veggie", "currentStock": 50}, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created models.InventoryItem
		decode(t, w, &created)
		assert.Equal(t, models.DefaultThreshold, created.Threshold)
	})

	t.Run("create duplicate", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/admin/inventory", gin.H{"name": "Cheddar", "category": "cheese"}, admin)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, models.ErrInventoryDuplicate, errorCode(t, w))
	})

	t.Run("create with unknown category", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/admin/inventory", gin.H{"name": "Pineapple", "category": "fruit"}, admin)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, models.ErrValidationFailed, errorCode(t, w))
	})
}
