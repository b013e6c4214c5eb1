package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
)

type InventoryController struct {
	inventory services.InventoryService
}

func NewInventoryController(inventory services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

// List godoc
// @Summary List inventory
// @Tags inventory
// @Produce json
// @Success 200 {array} models.InventoryItem
// @Security CookieAuth
// @Router /api/admin/inventory [get]
func (ic *InventoryController) List(c *gin.Context) {
	items, err := ic.inventory.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// LowStock godoc
// @Summary Items at or below threshold
// @Tags inventory
// @Produce json
// @Success 200 {array} models.InventoryItem
// @Security CookieAuth
// @Router /api/admin/inventory/low-stock [get]
func (ic *InventoryController) LowStock(c *gin.Context) {
	items, err := ic.inventory.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Update godoc
// @Summary Correct stock or threshold
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Inventory item ID"
// @Param body body services.InventoryUpdate true "Fields to change"
// @Success 200 {object} models.InventoryItem
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security CookieAuth
// @Router /api/admin/inventory/{id} [put]
func (ic *InventoryController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var update services.InventoryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	item, err := ic.inventory.Update(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, err, models.ErrInventoryNotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

// inventoryItemRequest tells an omitted threshold apart from an explicit zero
type inventoryItemRequest struct {
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category" binding:"required,oneof=base sauce cheese veggie"`
	CurrentStock int    `json:"currentStock"`
	Threshold    *int   `json:"threshold"`
	Unit         string `json:"unit"`
}

// Create godoc
// @Summary Add an inventory item
// @Tags inventory
// @Accept json
// @Produce json
// @Param item body inventoryItemRequest true "Inventory item, threshold defaults to 20"
// @Success 201 {object} models.InventoryItem
// @Failure 400 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security CookieAuth
// @Router /api/admin/inventory [post]
func (ic *InventoryController) Create(c *gin.Context) {
	var req inventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, err.Error()))
		return
	}

	item := models.InventoryItem{
		Name:         req.Name,
		Category:     req.Category,
		CurrentStock: req.CurrentStock,
		Threshold:    models.DefaultThreshold,
		Unit:         req.Unit,
	}
	if req.Threshold != nil {
		item.Threshold = *req.Threshold
	}

	if err := ic.inventory.Create(c.Request.Context(), &item); err != nil {
		if errors.Is(err, services.ErrConflict) {
			c.JSON(http.StatusConflict, models.NewAPIError(models.ErrInventoryDuplicate, err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}
