package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"gorm.io/gorm"
)

// CartItemInput is a pizza configuration as submitted by the pizza builder.
// Ingredient values may be catalog ids or display names.
type CartItemInput struct {
	Name     string            `json:"name"`
	Crust    string            `json:"crust"`
	Sauce    string            `json:"sauce"`
	Cheeses  models.StringList `json:"cheeses"`
	Toppings models.StringList `json:"toppings"`
	Size     string            `json:"size"`
}

// CartService manages the server side cart. Every AddItem call creates its own
// row with quantity 1, identical configurations are never merged.
type CartService interface {
	AddItem(ctx context.Context, userID uint, input CartItemInput) (*models.CartItem, error)
	ListItems(ctx context.Context, userID uint) ([]models.CartItem, error)
	// RemoveItem deletes one item owned by userID, ErrNotFound otherwise
	RemoveItem(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

type cartService struct {
	db      *gorm.DB
	catalog *catalog.Catalog
}

func NewCartService(db *gorm.DB, c *catalog.Catalog) CartService {
	return &cartService{db: db, catalog: c}
}

func (s *cartService) AddItem(ctx context.Context, userID uint, input CartItemInput) (*models.CartItem, error) {
	if strings.TrimSpace(input.Crust) == "" || strings.TrimSpace(input.Sauce) == "" {
		return nil, fmt.Errorf("%w: crust and sauce are required", ErrValidation)
	}

	item := &models.CartItem{
		UserID:   userID,
		Name:     strings.TrimSpace(input.Name),
		Crust:    s.catalog.NormalizeName(catalog.KindBase, input.Crust),
		Sauce:    s.catalog.NormalizeName(catalog.KindSauce, input.Sauce),
		Cheeses:  s.normalizeAll(catalog.KindCheese, input.Cheeses),
		Toppings: s.normalizeAll(catalog.KindTopping, input.Toppings),
		Size:     s.sizeLabel(input.Size),
		Quantity: 1,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) ListItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	items := []models.CartItem{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id asc").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

func (s *cartService) normalizeAll(kind string, values []string) models.StringList {
	out := make(models.StringList, 0, len(values))
	for _, v := range values {
		if name := s.catalog.NormalizeName(kind, v); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// sizeLabel resolves a size to its display label, defaulting to medium
func (s *cartService) sizeLabel(size string) string {
	if sz, ok := s.catalog.Size(size); ok {
		return sz.Name
	}
	return s.catalog.DefaultSize().Name
}
