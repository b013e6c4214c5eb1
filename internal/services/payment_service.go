package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/metrics"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/payment"
	"github.com/franciscosanchezn/pizzeria-api/internal/pricing"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Intent is a payment intent sized to the current cart
type Intent struct {
	GatewayOrderID string          `json:"orderId"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	Receipt        string          `json:"receipt"`
	KeyID          string          `json:"keyId"`
	Summary        pricing.Summary `json:"summary"`
}

// Confirmation is what the checkout widget hands back after a payment
type Confirmation struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// CheckoutResult lists the orders created from the cart. InventoryError is set
// when the orders were saved but the stock deduction failed.
type CheckoutResult struct {
	Orders         []models.PizzaOrder    `json:"orders"`
	Verified       bool                   `json:"verified"`
	LowStock       []models.InventoryItem `json:"lowStock,omitempty"`
	InventoryError string                 `json:"inventoryError,omitempty"`
	// Payment is the intent the confirmation settled, nil when none was recorded
	Payment *models.PaymentIntent `json:"payment,omitempty"`
}

// PaymentOptions tunes the checkout
type PaymentOptions struct {
	Currency string
	// AllowUnsigned accepts confirmations without a valid gateway signature.
	// Orders created this way are recorded with Verified=false.
	AllowUnsigned bool
}

type PaymentService interface {
	// CreateIntent asks the gateway for a payment of the cart total. ErrEmptyCart for an empty cart.
	CreateIntent(ctx context.Context, userID uint, promo string) (*Intent, error)
	// Verify checks the confirmation and turns the cart into orders exactly once
	Verify(ctx context.Context, userID uint, c Confirmation) (*CheckoutResult, error)
}

type paymentService struct {
	db        *gorm.DB
	catalog   *catalog.Catalog
	pricing   *pricing.Calculator
	gateway   payment.Gateway
	inventory InventoryService
	events    EventPublisher
	opts      PaymentOptions
	now       func() time.Time
}

func NewPaymentService(db *gorm.DB, c *catalog.Catalog, gateway payment.Gateway, inventory InventoryService, events EventPublisher, opts PaymentOptions) PaymentService {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	return &paymentService{
		db:        db,
		catalog:   c,
		pricing:   pricing.NewCalculator(c),
		gateway:   gateway,
		inventory: inventory,
		events:    publisherOrNoop(events),
		opts:      opts,
		now:       time.Now,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, userID uint, promo string) (*Intent, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		unit := s.pricing.Price(pricing.Config{Size: item.Size, Toppings: item.Toppings, Cheeses: item.Cheeses})
		lines = append(lines, pricing.Line{UnitPrice: unit, Quantity: item.Quantity})
	}
	summary, err := pricing.Summarize(lines, promo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	receipt := "rcpt_" + strconv.FormatInt(s.now().UnixMilli(), 10)
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   int64(summary.Total) * 100,
		Currency: s.opts.Currency,
		Receipt:  receipt,
		Notes:    map[string]string{"user_id": strconv.FormatUint(uint64(userID), 10)},
	})
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("failed").Inc()
		return nil, err
	}

	record := models.PaymentIntent{
		UserID:         userID,
		GatewayOrderID: order.ID,
		Receipt:        order.Receipt,
		Currency:       order.Currency,
		Subtotal:       summary.Subtotal,
		Tax:            summary.Tax,
		DeliveryFee:    summary.DeliveryFee,
		Discount:       summary.Discount,
		PromoCode:      summary.PromoCode,
		Total:          summary.Total,
		Status:         models.PaymentCreated,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("record payment intent: %w", err)
	}
	metrics.PaymentIntents.WithLabelValues("created").Inc()

	log.WithFields(logrus.Fields{
		"user_id":          userID,
		"gateway_order_id": order.ID,
		"total":            summary.Total,
		"items":            summary.ItemCount,
	}).Info("Payment intent created")

	return &Intent{
		GatewayOrderID: order.ID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Receipt:        order.Receipt,
		KeyID:          s.gateway.KeyID(),
		Summary:        summary,
	}, nil
}

func (s *paymentService) Verify(ctx context.Context, userID uint, c Confirmation) (*CheckoutResult, error) {
	c.PaymentID = strings.TrimSpace(c.PaymentID)
	if c.PaymentID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrValidation)
	}

	verified := s.gateway.VerifySignature(c.OrderID, c.PaymentID, c.Signature)
	if !verified {
		if !s.opts.AllowUnsigned {
			metrics.PaymentVerifications.WithLabelValues("rejected").Inc()
			log.WithFields(logrus.Fields{
				"user_id":    userID,
				"payment_id": c.PaymentID,
			}).Warn("Payment confirmation with invalid signature rejected")
			return nil, ErrPaymentNotVerified
		}
		log.WithField("payment_id", c.PaymentID).Warn("Accepting unsigned payment confirmation")
	}

	paidAt := s.now()
	var orders []models.PizzaOrder
	var settled *models.PaymentIntent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialises checkouts of one user so a concurrent replay sees the first one's orders
		var owner models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", userID).Limit(1).Find(&owner).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.PizzaOrder{}).Where("payment_gateway_payment_id = ?", c.PaymentID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicatePayment
		}

		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id asc").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		orders = make([]models.PizzaOrder, 0, len(items))
		for _, item := range items {
			order := buildOrder(s.catalog, s.pricing, userID, pizzaSpec{
				Crust:    item.Crust,
				Sauce:    item.Sauce,
				Cheeses:  item.Cheeses,
				Toppings: item.Toppings,
				Size:     item.Size,
				Quantity: item.Quantity,
			})
			order.Status = models.StatusPreparing
			order.PaymentStatus = models.PaymentPaid
			order.Payment = models.PaymentRecord{
				GatewayOrderID:   c.OrderID,
				GatewayPaymentID: c.PaymentID,
				Signature:        c.Signature,
				Verified:         verified,
				PaidAt:           &paidAt,
			}
			orders = append(orders, order)
		}

		if err := tx.Create(&orders).Error; err != nil {
			return err
		}

		var intent models.PaymentIntent
		found := tx.Where("gateway_order_id = ? AND user_id = ? AND status = ?", c.OrderID, userID, models.PaymentCreated).
			Order("id desc").Limit(1).Find(&intent)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected > 0 {
			intent.Status = models.PaymentPaid
			intent.GatewayPaymentID = c.PaymentID
			intent.PaidAt = &paidAt
			if err := tx.Save(&intent).Error; err != nil {
				return err
			}
			settled = &intent
		} else {
			log.WithField("gateway_order_id", c.OrderID).Warn("No payment intent recorded for confirmation")
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, ErrDuplicatePayment):
			outcome = "duplicate"
		case errors.Is(err, ErrEmptyCart):
			outcome = "empty_cart"
		}
		metrics.PaymentVerifications.WithLabelValues(outcome).Inc()
		return nil, err
	}

	metrics.PaymentVerifications.WithLabelValues("accepted").Inc()
	metrics.OrdersCreated.WithLabelValues("checkout").Add(float64(len(orders)))
	if settled != nil {
		metrics.Revenue.Add(float64(settled.Total))
	} else {
		for _, o := range orders {
			metrics.Revenue.Add(float64(o.TotalPrice))
		}
	}
	log.WithFields(logrus.Fields{
		"user_id":    userID,
		"payment_id": c.PaymentID,
		"orders":     len(orders),
		"verified":   verified,
	}).Info("Checkout completed")
	s.events.Publish(EventOrderCreated, orders)

	result := &CheckoutResult{Orders: orders, Verified: verified, Payment: settled}
	low, err := s.inventory.DeductForOrders(ctx, orders)
	result.LowStock = low
	if err != nil {
		// The orders stay: the customer has paid. Stock is corrected by an admin.
		metrics.InventoryDeductionFailures.Inc()
		log.WithError(err).WithField("payment_id", c.PaymentID).Error("Inventory deduction failed after checkout")
		result.InventoryError = err.Error()
	}
	return result, nil
}
