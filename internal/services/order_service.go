package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/metrics"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/pricing"
	"gorm.io/gorm"
)

// OrderInput is a direct order for a single pizza configuration
type OrderInput struct {
	Crust    string            `json:"crust"`
	Sauce    string            `json:"sauce"`
	Cheeses  models.StringList `json:"cheeses"`
	Toppings models.StringList `json:"toppings"`
	Size     string            `json:"size"`
	Quantity int               `json:"quantity"`
}

type OrderService interface {
	// Create stores a pending order priced with the canonical pricing rule
	Create(ctx context.Context, userID uint, input OrderInput) (*models.PizzaOrder, error)
	// ListAll returns every order with its user, newest first
	ListAll(ctx context.Context) ([]models.PizzaOrder, error)
	ListForUser(ctx context.Context, userID uint) ([]models.PizzaOrder, error)
	GetForUser(ctx context.Context, userID, orderID uint) (*models.PizzaOrder, error)
	Get(ctx context.Context, orderID uint) (*models.PizzaOrder, error)
	// UpdateStatus sets one of models.OrderStatuses, ErrInvalidStatus for anything else
	UpdateStatus(ctx context.Context, orderID uint, status string) (*models.PizzaOrder, error)
}

type orderService struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	pricing *pricing.Calculator
	events  EventPublisher
}

func NewOrderService(db *gorm.DB, c *catalog.Catalog, events EventPublisher) OrderService {
	return &orderService{
		db:      db,
		catalog: c,
		pricing: pricing.NewCalculator(c),
		events:  publisherOrNoop(events),
	}
}

func (s *orderService) Create(ctx context.Context, userID uint, input OrderInput) (*models.PizzaOrder, error) {
	if strings.TrimSpace(input.Crust) == "" || strings.TrimSpace(input.Sauce) == "" {
		return nil, fmt.Errorf("%w: crust and sauce are required", ErrValidation)
	}
	if input.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	cheeses := make(models.StringList, 0, len(input.Cheeses))
	for _, c := range input.Cheeses {
		cheeses = append(cheeses, s.catalog.NormalizeName(catalog.KindCheese, c))
	}
	toppings := make(models.StringList, 0, len(input.Toppings))
	for _, t := range input.Toppings {
		toppings = append(toppings, s.catalog.NormalizeName(catalog.KindTopping, t))
	}

	order := buildOrder(s.catalog, s.pricing, userID, pizzaSpec{
		Crust:    s.catalog.NormalizeName(catalog.KindBase, input.Crust),
		Sauce:    s.catalog.NormalizeName(catalog.KindSauce, input.Sauce),
		Cheeses:  cheeses,
		Toppings: toppings,
		Size:     input.Size,
		Quantity: input.Quantity,
	})
	order.Status = models.StatusPending
	order.PaymentStatus = models.PaymentCreated

	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues("direct").Inc()
	s.events.Publish(EventOrderCreated, []models.PizzaOrder{order})
	return &order, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]models.PizzaOrder, error) {
	var orders []models.PizzaOrder
	err := s.db.WithContext(ctx).Preload("User").Order("created_at desc, id desc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]models.PizzaOrder, error) {
	var orders []models.PizzaOrder
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetForUser(ctx context.Context, userID, orderID uint) (*models.PizzaOrder, error) {
	var order models.PizzaOrder
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", orderID, userID).First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

func (s *orderService) Get(ctx context.Context, orderID uint) (*models.PizzaOrder, error) {
	var order models.PizzaOrder
	if err := s.db.WithContext(ctx).Preload("User").First(&order, orderID).Error; err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*models.PizzaOrder, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidStatus(status) {
		return nil, fmt.Errorf("%w: %q, must be one of %s", ErrInvalidStatus, status, strings.Join(models.OrderStatuses, ", "))
	}

	result := s.db.WithContext(ctx).Model(&models.PizzaOrder{}).Where("id = ?", orderID).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(EventOrderStatusChanged, order)
	return order, nil
}

// pizzaSpec is the configuration snapshot shared by direct orders and checkout
type pizzaSpec struct {
	Crust    string
	Sauce    string
	Cheeses  models.StringList
	Toppings models.StringList
	Size     string
	Quantity int
}

// buildOrder prices a configuration and returns an unsaved order.
// TotalPrice is fixed here and never recomputed.
func buildOrder(c *catalog.Catalog, calc *pricing.Calculator, userID uint, p pizzaSpec) models.PizzaOrder {
	qty := p.Quantity
	if qty < 1 {
		qty = 1
	}
	size, ok := c.Size(p.Size)
	if !ok {
		size = c.DefaultSize()
	}
	if p.Cheeses == nil {
		p.Cheeses = models.StringList{}
	}
	if p.Toppings == nil {
		p.Toppings = models.StringList{}
	}

	unit := calc.Price(pricing.Config{Size: size.Name, Toppings: p.Toppings, Cheeses: p.Cheeses})
	return models.PizzaOrder{
		UserID:     userID,
		Crust:      p.Crust,
		Sauce:      p.Sauce,
		Cheeses:    p.Cheeses,
		Toppings:   p.Toppings,
		Size:       size.Name,
		Quantity:   qty,
		UnitPrice:  unit,
		TotalPrice: unit * qty,
	}
}
