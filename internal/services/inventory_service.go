package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/metrics"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/notify"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
}

// InventoryUpdate is a manual stock correction. Nil fields are left unchanged.
type InventoryUpdate struct {
	CurrentStock *int `json:"currentStock"`
	Threshold    *int `json:"threshold"`
}

// InventoryService is the stock ledger. Stock has no floor: deductions past zero
// are recorded as negative stock.
type InventoryService interface {
	// DeductForOrders takes one unit of every ingredient of every order and
	// returns the items left at or below their threshold, one entry per item.
	// A failure midway returns the error with earlier decrements kept.
	DeductForOrders(ctx context.Context, orders []models.PizzaOrder) ([]models.InventoryItem, error)
	List(ctx context.Context) ([]models.InventoryItem, error)
	Get(ctx context.Context, id uint) (*models.InventoryItem, error)
	Update(ctx context.Context, id uint, update InventoryUpdate) (*models.InventoryItem, error)
	Create(ctx context.Context, item *models.InventoryItem) error
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
	// SendLowStockAlert emails the admin the given items
	SendLowStockAlert(ctx context.Context, items []models.InventoryItem) error
	// Seed inserts the default items that do not exist yet
	Seed(ctx context.Context) error
}

type inventoryService struct {
	db         *gorm.DB
	mailer     notify.Mailer
	adminEmail string
	events     EventPublisher
	now        func() time.Time
}

func NewInventoryService(db *gorm.DB, mailer notify.Mailer, adminEmail string, events EventPublisher) InventoryService {
	if mailer == nil {
		mailer = notify.LogMailer{}
	}
	return &inventoryService{
		db:         db,
		mailer:     mailer,
		adminEmail: adminEmail,
		events:     publisherOrNoop(events),
		now:        time.Now,
	}
}

// DefaultInventory is the stock seeded on first start
func DefaultInventory() []models.InventoryItem {
	item := func(name, category string, stock, threshold int) models.InventoryItem {
		return models.InventoryItem{Name: name, Category: category, CurrentStock: stock, Threshold: threshold, Unit: "pieces"}
	}
	return []models.InventoryItem{
		item("Thin Crust", catalog.CategoryBase, 100, 20),
		item("Thick Crust", catalog.CategoryBase, 80, 15),
		item("Stuffed Crust", catalog.CategoryBase, 60, 10),

		item("Tomato Sauce", catalog.CategorySauce, 50, 10),
		item("White Sauce", catalog.CategorySauce, 40, 8),
		item("BBQ Sauce", catalog.CategorySauce, 30, 5),

		item("Mozzarella", catalog.CategoryCheese, 200, 50),
		item("Cheddar", catalog.CategoryCheese, 150, 30),
		item("Parmesan", catalog.CategoryCheese, 100, 20),

		item("Mushrooms", catalog.CategoryVeggie, 80, 15),
		item("Bell Peppers", catalog.CategoryVeggie, 70, 12),
		item("Red Onions", catalog.CategoryVeggie, 60, 10),
		item("Pepperoni", catalog.CategoryVeggie, 90, 20),
	}
}

func (s *inventoryService) DeductForOrders(ctx context.Context, orders []models.PizzaOrder) ([]models.InventoryItem, error) {
	var low []models.InventoryItem
	seen := make(map[string]int)

	take := func(name, category string) error {
		item, err := s.decrement(ctx, name, category)
		if err != nil || item == nil {
			return err
		}
		if !item.IsLow() {
			return nil
		}
		if i, ok := seen[item.Name]; ok {
			low[i] = *item
			return nil
		}
		seen[item.Name] = len(low)
		low = append(low, *item)
		return nil
	}

	for _, order := range orders {
		if err := take(order.Crust, catalog.CategoryBase); err != nil {
			return low, err
		}
		if err := take(order.Sauce, catalog.CategorySauce); err != nil {
			return low, err
		}
		for _, cheese := range order.Cheeses {
			if err := take(cheese, catalog.CategoryCheese); err != nil {
				return low, err
			}
		}
		for _, topping := range order.Toppings {
			if err := take(topping, catalog.CategoryVeggie); err != nil {
				return low, err
			}
		}
	}

	if len(low) > 0 {
		s.events.Publish(EventLowStock, low)
		if err := s.SendLowStockAlert(ctx, low); err != nil {
			log.WithError(err).WithField("items", len(low)).Error("Failed to send low stock alert")
		}
	}
	return low, nil
}

// decrement takes one unit atomically and re-reads the row. It returns nil when
// no inventory row tracks the ingredient.
func (s *inventoryService) decrement(ctx context.Context, name, category string) (*models.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	db := s.db.WithContext(ctx)
	result := db.Model(&models.InventoryItem{}).
		Where("name = ? AND category = ?", name, category).
		Updates(map[string]interface{}{
			"current_stock": gorm.Expr("current_stock - ?", 1),
			"last_updated":  s.now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("decrement %s: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		log.WithFields(logrus.Fields{"ingredient": name, "category": category}).Debug("Ingredient not tracked in inventory")
		return nil, nil
	}

	var item models.InventoryItem
	if err := db.Where("name = ? AND category = ?", name, category).First(&item).Error; err != nil {
		return nil, fmt.Errorf("reload %s: %w", name, err)
	}
	return &item, nil
}

func (s *inventoryService) SendLowStockAlert(ctx context.Context, items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	if s.adminEmail == "" {
		log.Warn("ADMIN_EMAIL not set, low stock alert not sent")
		return nil
	}
	msg, err := notify.LowStockEmail(s.adminEmail, items)
	if err != nil {
		return err
	}
	metrics.LowStockAlerts.Inc()
	return s.mailer.Send(ctx, msg)
}

func (s *inventoryService) List(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := s.db.WithContext(ctx).Order("category asc, name asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *inventoryService) Get(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err, "inventory item")
	}
	return &item, nil
}

func (s *inventoryService) Update(ctx context.Context, id uint, update InventoryUpdate) (*models.InventoryItem, error) {
	if update.Threshold != nil && *update.Threshold < 0 {
		return nil, fmt.Errorf("%w: threshold cannot be negative", ErrValidation)
	}

	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{"last_updated": s.now()}
	if update.CurrentStock != nil {
		changes["current_stock"] = *update.CurrentStock
	}
	if update.Threshold != nil {
		changes["threshold"] = *update.Threshold
	}
	if err := s.db.WithContext(ctx).Model(item).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *inventoryService) Create(ctx context.Context, item *models.InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" || item.Category == "" {
		return fmt.Errorf("%w: name and category are required", ErrValidation)
	}
	if item.Threshold < 0 {
		return fmt.Errorf("%w: threshold cannot be negative", ErrValidation)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("name = ?", item.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: inventory item %s", ErrConflict, item.Name)
	}
	if item.Unit == "" {
		item.Unit = "pieces"
	}
	item.LastUpdated = s.now()
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *inventoryService) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	err := s.db.WithContext(ctx).Where("current_stock <= threshold").Order("category asc, name asc").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *inventoryService) Seed(ctx context.Context) error {
	items := DefaultInventory()
	now := s.now()
	for i := range items {
		items[i].LastUpdated = now
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&items)
	if result.Error != nil {
		return fmt.Errorf("seed inventory: %w", result.Error)
	}
	log.WithField("inserted", result.RowsAffected).Info("Inventory seeded")
	return nil
}
