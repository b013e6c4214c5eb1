// Package pricing implements the one pricing rule used by every caller that needs
// the price of a pizza: cart checkout, direct orders and the price preview endpoint.
package pricing

import (
	"errors"
	"strings"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/shopspring/decimal"
)

const (
	// ToppingCost is charged per selected topping
	ToppingCost = 30
	// PremiumCheeseCost is charged once when any premium cheese is selected
	PremiumCheeseCost = 50

	// FreeDeliveryThreshold is the subtotal from which delivery is free
	FreeDeliveryThreshold = 500
	// DeliveryFee is charged below FreeDeliveryThreshold
	DeliveryFee = 40
)

var taxRate = decimal.RequireFromString("0.05")

// ErrUnknownPromo is returned for promo codes that are not recognised
var ErrUnknownPromo = errors.New("unknown promo code")

// Config is the part of a pizza configuration that affects its price
type Config struct {
	Size     string   `json:"size"`
	Toppings []string `json:"toppings"`
	Cheeses  []string `json:"cheeses"`
}

// Breakdown itemises a pizza price for display
type Breakdown struct {
	Size          string   `json:"size"`
	BasePrice     int      `json:"basePrice"`
	ToppingCount  int      `json:"toppingCount"`
	ToppingCost   int      `json:"toppingCost"`
	PremiumCheese bool     `json:"premiumCheese"`
	CheeseCost    int      `json:"cheeseCost"`
	Toppings      []string `json:"toppings"`
	Cheeses       []string `json:"cheeses"`
	Total         int      `json:"total"`
}

// Calculator prices pizzas against a catalog
type Calculator struct {
	catalog *catalog.Catalog
}

// NewCalculator creates a calculator for the given catalog
func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{catalog: c}
}

// Price returns the unit price of a pizza:
// size tier + ToppingCost per topping + PremiumCheeseCost if any premium cheese is selected.
// Unknown sizes are priced as medium.
func (p *Calculator) Price(cfg Config) int {
	return p.Breakdown(cfg).Total
}

// Breakdown returns the itemised price of a pizza
func (p *Calculator) Breakdown(cfg Config) Breakdown {
	size, ok := p.catalog.Size(cfg.Size)
	if !ok {
		size = p.catalog.DefaultSize()
	}

	premium := false
	for _, cheese := range cfg.Cheeses {
		if p.catalog.IsPremiumCheese(cheese) {
			premium = true
			break
		}
	}

	b := Breakdown{
		Size:          size.Name,
		BasePrice:     size.Price,
		ToppingCount:  len(cfg.Toppings),
		ToppingCost:   len(cfg.Toppings) * ToppingCost,
		PremiumCheese: premium,
		Toppings:      nonNil(cfg.Toppings),
		Cheeses:       nonNil(cfg.Cheeses),
	}
	if premium {
		b.CheeseCost = PremiumCheeseCost
	}
	b.Total = b.BasePrice + b.ToppingCost + b.CheeseCost
	return b
}

// Line is one priced entry of a checkout
type Line struct {
	UnitPrice int
	Quantity  int
}

// Summary is the amount a customer pays for a set of lines
type Summary struct {
	Subtotal    int    `json:"subtotal"`
	Tax         int    `json:"tax"`
	DeliveryFee int    `json:"deliveryFee"`
	Discount    int    `json:"discount"`
	PromoCode   string `json:"promoCode,omitempty"`
	Total       int    `json:"total"`
	ItemCount   int    `json:"itemCount"`
}

// Summarize computes subtotal, 5% tax, delivery fee, promo discount and the payable total.
// A zero quantity counts as one. The total never goes below zero.
func Summarize(lines []Line, promo string) (Summary, error) {
	var s Summary
	for _, l := range lines {
		qty := l.Quantity
		if qty <= 0 {
			qty = 1
		}
		s.Subtotal += l.UnitPrice * qty
		s.ItemCount += qty
	}

	subtotal := decimal.NewFromInt(int64(s.Subtotal))
	s.Tax = int(subtotal.Mul(taxRate).Round(0).IntPart())
	if s.Subtotal < FreeDeliveryThreshold {
		s.DeliveryFee = DeliveryFee
	}

	discount, err := promoDiscount(promo, subtotal)
	if err != nil {
		return Summary{}, err
	}
	s.Discount = discount
	if s.Discount > 0 {
		s.PromoCode = strings.ToUpper(strings.TrimSpace(promo))
	}

	s.Total = s.Subtotal + s.Tax + s.DeliveryFee - s.Discount
	if s.Total < 0 {
		s.Total = 0
	}
	return s, nil
}

func promoDiscount(code string, subtotal decimal.Decimal) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "":
		return 0, nil
	case "WELCOME10":
		return int(subtotal.Mul(decimal.RequireFromString("0.1")).Round(0).IntPart()), nil
	case "FIRST50":
		return 50, nil
	default:
		return 0, ErrUnknownPromo
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
