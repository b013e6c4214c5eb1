package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	db        *gorm.DB
	gateway   *fakeGateway
	mailer    *fakeMailer
	events    *recordingPublisher
	cart      CartService
	payments  PaymentService
	inventory InventoryService
	user      *models.User
}

func newCheckoutFixture(t *testing.T, opts PaymentOptions) *checkoutFixture {
	db := setupTestDB(t)
	f := &checkoutFixture{
		db:      db,
		gateway: &fakeGateway{validSignature: "good-signature"},
		mailer:  &fakeMailer{},
		events:  &recordingPublisher{},
	}
	cat := testCatalog()
	f.cart = NewCartService(db, cat)
	f.inventory = NewInventoryService(db, f.mailer, "admin@example.com", f.events)
	f.payments = NewPaymentService(db, cat, f.gateway, f.inventory, f.events, opts)
	f.user = createTestUser(t, db, "checkout@example.com")
	require.NoError(t, f.inventory.Seed(context.Background()))
	return f
}

func (f *checkoutFixture) fill(t *testing.T, inputs ...CartItemInput) {
	for _, in := range inputs {
		_, err := f.cart.AddItem(context.Background(), f.user.ID, in)
		require.NoError(t, err)
	}
}

func (f *checkoutFixture) orderCount(t *testing.T) int64 {
	var n int64
	require.NoError(t, f.db.Model(&models.PizzaOrder{}).Count(&n).Error)
	return n
}

func goodConfirmation() Confirmation {
	return Confirmation{OrderID: "order_test", PaymentID: "pay_123", Signature: "good-signature"}
}

func TestCreateIntentEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})

	_, err := f.payments.CreateIntent(context.Background(), f.user.ID, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.gateway.requests)
}

func TestCreateIntentSizedToSummary(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t,
		CartItemInput{Crust: "thin", Sauce: "tomato", Size: catalog.SizeSmall},                                                              // 199
		CartItemInput{Crust: "thick", Sauce: "bbq", Cheeses: []string{"Cheddar"}, Toppings: []string{"Mushrooms"}, Size: catalog.SizeLarge}, // 479
	)

	intent, err := f.payments.CreateIntent(context.Background(), f.user.ID, "")
	require.NoError(t, err)

	// subtotal 678, tax 34, free delivery
	assert.Equal(t, 678, intent.Summary.Subtotal)
	assert.Equal(t, 34, intent.Summary.Tax)
	assert.Equal(t, 0, intent.Summary.DeliveryFee)
	assert.Equal(t, 712, intent.Summary.Total)

	require.Len(t, f.gateway.requests, 1)
	req := f.gateway.requests[0]
	assert.Equal(t, int64(71200), req.Amount)
	assert.Equal(t, "INR", req.Currency)
	assert.True(t, strings.HasPrefix(req.Receipt, "rcpt_"))
	assert.Less(t, len(req.Receipt), 40)
	assert.Equal(t, "order_test", intent.GatewayOrderID)
	assert.Equal(t, "rzp_test_key", intent.KeyID)
}

func TestCreateIntentPromo(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t, CartItemInput{Crust: "thin", Sauce: "tomato"}) // 299

	intent, err := f.payments.CreateIntent(context.Background(), f.user.ID, "first50")
	require.NoError(t, err)
	// 299 + 15 tax + 40 delivery - 50
	assert.Equal(t, 304, intent.Summary.Total)
	assert.Equal(t, "FIRST50", intent.Summary.PromoCode)

	_, err = f.payments.CreateIntent(context.Background(), f.user.ID, "FREEPIZZA")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateIntentGatewayFailure(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t, CartItemInput{Crust: "thin", Sauce: "tomato"})
	f.gateway.err = errors.Join(payment.ErrGateway, errors.New("boom"))

	_, err := f.payments.CreateIntent(context.Background(), f.user.ID, "")
	assert.ErrorIs(t, err, payment.ErrGateway)
}

func TestVerifyConvertsCartExactlyOnce(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t, margherita(), margherita(), CartItemInput{Crust: "stuffed", Sauce: "white", Size: "small"})

	result, err := f.payments.Verify(context.Background(), f.user.ID, goodConfirmation())
	require.NoError(t, err)

	require.Len(t, result.Orders, 3)
	assert.True(t, result.Verified)
	assert.Empty(t, result.InventoryError)
	for _, o := range result.Orders {
		assert.Equal(t, models.StatusPreparing, o.Status)
		assert.Equal(t, models.PaymentPaid, o.PaymentStatus)
		assert.Equal(t, o.UnitPrice*o.Quantity, o.TotalPrice)
		assert.Equal(t, "pay_123", o.Payment.GatewayPaymentID)
		assert.True(t, o.Payment.Verified)
	}
	assert.Equal(t, 329, result.Orders[0].TotalPrice) // medium + one topping
	assert.Equal(t, 199, result.Orders[2].TotalPrice)

	items, err := f.cart.ListItems(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(3), f.orderCount(t))

	// Inventory was deducted once per item
	assert.Equal(t, 98, stockOf(t, f.db, "Thin Crust"))
	assert.Equal(t, 59, stockOf(t, f.db, "Stuffed Crust"))
	assert.Equal(t, 78, stockOf(t, f.db, "Mushrooms"))

	assert.Contains(t, f.events.types(), EventOrderCreated)

	// Replaying the same confirmation creates nothing
	f.fill(t, margherita())
	_, err = f.payments.Verify(context.Background(), f.user.ID, goodConfirmation())
	assert.ErrorIs(t, err, ErrDuplicatePayment)
	assert.Equal(t, int64(3), f.orderCount(t))
	items, _ = f.cart.ListItems(context.Background(), f.user.ID)
	assert.Len(t, items, 1, "cart is untouched by a rejected replay")
}

func TestVerifyEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})

	_, err := f.payments.Verify(context.Background(), f.user.ID, goodConfirmation())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, f.orderCount(t))
}

func TestVerifyRejectsForgedConfirmation(t *testing.T) {
	tests := []struct {
		name string
		conf Confirmation
		want error
	}{
		{"missing payment id", Confirmation{OrderID: "order_test", Signature: "good-signature"}, ErrValidation},
		{"missing signature", Confirmation{OrderID: "order_test", PaymentID: "pay_1"}, ErrPaymentNotVerified},
		{"forged signature", Confirmation{OrderID: "order_test", PaymentID: "pay_1", Signature: "forged"}, ErrPaymentNotVerified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCheckoutFixture(t, PaymentOptions{})
			f.fill(t, margherita())

			_, err := f.payments.Verify(context.Background(), f.user.ID, tt.conf)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.orderCount(t))

			items, err := f.cart.ListItems(context.Background(), f.user.ID)
			require.NoError(t, err)
			assert.Len(t, items, 1)
		})
	}
}

func TestVerifyAllowUnsigned(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{AllowUnsigned: true})
	f.fill(t, margherita())

	result, err := f.payments.Verify(context.Background(), f.user.ID, Confirmation{PaymentID: "pay_demo"})
	require.NoError(t, err)
	assert.False(t, result.Verified)
	require.Len(t, result.Orders, 1)
	assert.False(t, result.Orders[0].Payment.Verified)
}

func TestVerifyReportsLowStock(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	require.NoError(t, f.db.Model(&models.InventoryItem{}).Where("name = ?", "Tomato Sauce").Update("current_stock", 11).Error)
	f.fill(t, margherita(), margherita())

	result, err := f.payments.Verify(context.Background(), f.user.ID, goodConfirmation())
	require.NoError(t, err)

	require.Len(t, result.LowStock, 1)
	assert.Equal(t, "Tomato Sauce", result.LowStock[0].Name)
	assert.Equal(t, 9, result.LowStock[0].CurrentStock)
	assert.Len(t, f.mailer.messages(), 1)
}

func TestVerifySettlesRecordedIntent(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t, margherita()) // 329
	ctx := context.Background()

	intent, err := f.payments.CreateIntent(ctx, f.user.ID, "first50")
	require.NoError(t, err)
	// 329 + 16 tax + 40 delivery - 50
	require.Equal(t, 335, intent.Summary.Total)

	var pending models.PaymentIntent
	require.NoError(t, f.db.Where("gateway_order_id = ?", intent.GatewayOrderID).First(&pending).Error)
	assert.Equal(t, models.PaymentCreated, pending.Status)
	assert.Equal(t, 335, pending.Total)
	assert.Empty(t, pending.GatewayPaymentID)

	result, err := f.payments.Verify(ctx, f.user.ID, goodConfirmation())
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Equal(t, models.PaymentPaid, result.Payment.Status)
	assert.Equal(t, "pay_123", result.Payment.GatewayPaymentID)
	assert.NotNil(t, result.Payment.PaidAt)
	assert.Equal(t, 329, result.Payment.Subtotal)
	assert.Equal(t, 16, result.Payment.Tax)
	assert.Equal(t, 40, result.Payment.DeliveryFee)
	assert.Equal(t, 50, result.Payment.Discount)
	assert.Equal(t, "FIRST50", result.Payment.PromoCode)
	assert.Equal(t, 335, result.Payment.Total)

	stats, err := NewStatsService(f.db).Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(329), stats.Totals.Revenue)
	assert.Equal(t, int64(335), stats.Totals.Collected)
}

func TestVerifyWithoutIntentStillCheckout(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t, margherita())

	result, err := f.payments.Verify(context.Background(), f.user.ID, goodConfirmation())
	require.NoError(t, err)
	assert.Nil(t, result.Payment)
	assert.Len(t, result.Orders, 1)
}

func TestConcurrentReplayCreatesOrdersOnce(t *testing.T) {
	f := newCheckoutFixture(t, PaymentOptions{})
	f.fill(t, margherita(), margherita())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.payments.Verify(context.Background(), f.user.ID, goodConfirmation())
		}(i)
	}
	wg.Wait()

	var ok, duplicate int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicatePayment):
			duplicate++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, duplicate)
	assert.Equal(t, int64(2), f.orderCount(t))
}
