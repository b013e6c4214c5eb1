package database

import (
	"testing"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite uses the path",
			cfg:      DatabaseConfig{Driver: "sqlite", Path: "pizzeria.sqlite"},
			expected: "pizzeria.sqlite",
		},
		{
			name:     "empty driver defaults to sqlite",
			cfg:      DatabaseConfig{Path: ":memory:"},
			expected: ":memory:",
		},
		{
			name: "postgres builds a keyword dsn",
			cfg: DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "pizza",
				Password: "pw", Name: "pizzeria", SSLMode: "disable"},
			expected: "host=db user=pizza password=pw dbname=pizzeria port=5432 sslmode=disable",
		},
		{
			name:     "postgres url wins over fields",
			cfg:      DatabaseConfig{Driver: "postgresql", URL: "postgres://u:p@h/db", Host: "ignored"},
			expected: "postgres://u:p@h/db",
		},
		{
			name:     "unknown driver",
			cfg:      DatabaseConfig{Driver: "mysql"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestStringRedactsPassword(t *testing.T) {
	cfg := DatabaseConfig{Driver: "postgres", Password: "hunter2"}
	assert.NotContains(t, cfg.String(), "hunter2")
}

func TestBackoffDoubles(t *testing.T) {
	cfg := DatabaseConfig{RetryDelay: 10 * time.Millisecond}
	assert.Equal(t, 10*time.Millisecond, cfg.backoff(1))
	assert.Equal(t, 20*time.Millisecond, cfg.backoff(2))
	assert.Equal(t, 80*time.Millisecond, cfg.backoff(4))
	assert.Equal(t, 5, (&DatabaseConfig{}).retries())
}

func TestInitDatabaseSQLiteAndMigrate(t *testing.T) {
	db, err := InitDatabase(DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{
		&models.User{}, &models.CartItem{}, &models.PizzaOrder{},
		&models.InventoryItem{}, &models.PaymentIntent{}, &models.OAuthClient{}, &models.OAuthToken{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}

	// The single pooled connection keeps the in-memory schema visible
	item := models.CartItem{UserID: 1, Crust: "Thin Crust", Sauce: "Tomato Sauce",
		Cheeses: models.StringList{"Mozzarella"}, Size: "Medium (12\")", Quantity: 1}
	require.NoError(t, db.Create(&item).Error)

	var loaded models.CartItem
	require.NoError(t, db.First(&loaded, item.ID).Error)
	assert.Equal(t, models.StringList{"Mozzarella"}, loaded.Cheeses)
	assert.Equal(t, models.StringList{}, loaded.Toppings)
}

func TestInitDatabaseUnsupportedDriver(t *testing.T) {
	_, err := InitDatabase(DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
