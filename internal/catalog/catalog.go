// Package catalog holds the table of pizza ingredients and sizes offered by the shop.
package catalog

import "strings"

// Ingredient kinds, matching the sections of the pizza builder
const (
	KindBase    = "base"
	KindSauce   = "sauce"
	KindCheese  = "cheese"
	KindTopping = "topping"
)

// Inventory categories used by the stock ledger
const (
	CategoryBase   = "base"
	CategorySauce  = "sauce"
	CategoryCheese = "cheese"
	CategoryVeggie = "veggie"
)

// Size labels as shown to customers
const (
	SizeSmall  = `Small (8")`
	SizeMedium = `Medium (12")`
	SizeLarge  = `Large (16")`
)

// Ingredient is a selectable pizza component
type Ingredient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price"`
	Premium     bool   `json:"premium,omitempty"`
}

// Size is a pizza size with its display label and tier price
type Size struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      int     `json:"price"`
	Multiplier float64 `json:"multiplier"`
}

// Catalog is the full ingredient table. It is a plain value so callers can
// build their own for tests instead of mutating a process-wide table.
type Catalog struct {
	Bases    []Ingredient `json:"bases"`
	Sauces   []Ingredient `json:"sauces"`
	Cheeses  []Ingredient `json:"cheeses"`
	Toppings []Ingredient `json:"toppings"`
	Sizes    []Size       `json:"sizes"`
}

// Default returns the standard menu
func Default() *Catalog {
	return &Catalog{
		Bases: []Ingredient{
			{ID: "thin", Name: "Thin Crust", Description: "Crispy and light", Price: 199},
			{ID: "thick", Name: "Thick Crust", Description: "Soft and fluffy", Price: 219},
			{ID: "stuffed", Name: "Stuffed Crust", Description: "Cheese-filled edges", Price: 249},
		},
		Sauces: []Ingredient{
			{ID: "tomato", Name: "Tomato Sauce", Description: "Classic marinara", Price: 0},
			{ID: "white", Name: "White Sauce", Description: "Creamy garlic", Price: 20},
			{ID: "bbq", Name: "BBQ Sauce", Description: "Smoky and sweet", Price: 25},
		},
		Cheeses: []Ingredient{
			{ID: "mozzarella", Name: "Mozzarella", Price: 0},
			{ID: "cheddar", Name: "Cheddar", Price: 50, Premium: true},
			{ID: "parmesan", Name: "Parmesan", Price: 50, Premium: true},
		},
		Toppings: []Ingredient{
			{ID: "mushrooms", Name: "Mushrooms", Price: 30},
			{ID: "bell-peppers", Name: "Bell Peppers", Price: 30},
			{ID: "red-onions", Name: "Red Onions", Price: 30},
			{ID: "pepperoni", Name: "Pepperoni", Price: 30},
		},
		Sizes: []Size{
			{ID: "small", Name: SizeSmall, Price: 199, Multiplier: 1.0},
			{ID: "medium", Name: SizeMedium, Price: 299, Multiplier: 1.3},
			{ID: "large", Name: SizeLarge, Price: 399, Multiplier: 1.6},
		},
	}
}

// Size resolves a size by its label or short id. ok is false for unknown sizes.
func (c *Catalog) Size(label string) (Size, bool) {
	label = strings.TrimSpace(label)
	for _, s := range c.Sizes {
		if strings.EqualFold(s.Name, label) || strings.EqualFold(s.ID, label) {
			return s, true
		}
	}
	return Size{}, false
}

// DefaultSize is the tier used when a size is missing or unknown
func (c *Catalog) DefaultSize() Size {
	s, _ := c.Size(SizeMedium)
	return s
}

// IsPremiumCheese reports whether the cheese carries the premium surcharge
func (c *Catalog) IsPremiumCheese(name string) bool {
	ing, ok := find(c.Cheeses, name)
	return ok && ing.Premium
}

// Base looks up a crust by name or id
func (c *Catalog) Base(name string) (Ingredient, bool) { return find(c.Bases, name) }

// Sauce looks up a sauce by name or id
func (c *Catalog) Sauce(name string) (Ingredient, bool) { return find(c.Sauces, name) }

// Cheese looks up a cheese by name or id
func (c *Catalog) Cheese(name string) (Ingredient, bool) { return find(c.Cheeses, name) }

// Topping looks up a topping by name or id
func (c *Catalog) Topping(name string) (Ingredient, bool) { return find(c.Toppings, name) }

// InventoryCategory maps an ingredient kind to the stock ledger category
func InventoryCategory(kind string) string {
	switch kind {
	case KindBase:
		return CategoryBase
	case KindSauce:
		return CategorySauce
	case KindCheese:
		return CategoryCheese
	default:
		return CategoryVeggie
	}
}

// NormalizeName returns the display name for an ingredient given either its id or name.
// Unknown values are returned trimmed but otherwise unchanged.
func (c *Catalog) NormalizeName(kind, value string) string {
	var list []Ingredient
	switch kind {
	case KindBase:
		list = c.Bases
	case KindSauce:
		list = c.Sauces
	case KindCheese:
		list = c.Cheeses
	case KindTopping:
		list = c.Toppings
	}
	if ing, ok := find(list, value); ok {
		return ing.Name
	}
	return strings.TrimSpace(value)
}

func find(list []Ingredient, key string) (Ingredient, bool) {
	key = strings.TrimSpace(key)
	for _, ing := range list {
		if strings.EqualFold(ing.Name, key) || strings.EqualFold(ing.ID, key) {
			return ing, true
		}
	}
	return Ingredient{}, false
}
