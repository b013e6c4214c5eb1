package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeLookup(t *testing.T) {
	c := Default()

	s, ok := c.Size(`Large (16")`)
	assert.True(t, ok)
	assert.Equal(t, 399, s.Price)

	s, ok = c.Size("small")
	assert.True(t, ok)
	assert.Equal(t, SizeSmall, s.Name)

	_, ok = c.Size("family")
	assert.False(t, ok)

	assert.Equal(t, SizeMedium, c.DefaultSize().Name)
}

func TestPremiumCheeses(t *testing.T) {
	c := Default()

	assert.True(t, c.IsPremiumCheese("Cheddar"))
	assert.True(t, c.IsPremiumCheese("parmesan"))
	assert.False(t, c.IsPremiumCheese("Mozzarella"))
	assert.False(t, c.IsPremiumCheese("Gouda"))
}

func TestNormalizeName(t *testing.T) {
	c := Default()

	assert.Equal(t, "Thin Crust", c.NormalizeName(KindBase, "thin"))
	assert.Equal(t, "BBQ Sauce", c.NormalizeName(KindSauce, "bbq"))
	assert.Equal(t, "Red Onions", c.NormalizeName(KindTopping, "Red Onions"))
	assert.Equal(t, "Pineapple", c.NormalizeName(KindTopping, " Pineapple "))
}

func TestInventoryCategory(t *testing.T) {
	assert.Equal(t, CategoryBase, InventoryCategory(KindBase))
	assert.Equal(t, CategorySauce, InventoryCategory(KindSauce))
	assert.Equal(t, CategoryCheese, InventoryCategory(KindCheese))
	assert.Equal(t, CategoryVeggie, InventoryCategory(KindTopping))
}
