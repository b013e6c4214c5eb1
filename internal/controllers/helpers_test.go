package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/auth"
	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/middleware"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/franciscosanchezn/pizzeria-api/internal/notify"
	"github.com/franciscosanchezn/pizzeria-api/internal/payment"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret  = "controller-test-secret"
	validSignature = "good-signature"
)

type fakeGateway struct {
	err error
}

func (g *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &payment.Order{ID: "order_test123", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *fakeGateway) VerifySignature(_, _, signature string) bool {
	return signature == validSignature
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *fakeMailer) last() notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return notify.Message{}
	}
	return m.sent[len(m.sent)-1]
}

type testApp struct {
	db        *gorm.DB
	router    *gin.Engine
	mailer    *fakeMailer
	gateway   *fakeGateway
	sessions  *auth.SessionIssuer
	inventory services.InventoryService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CartItem{}, &models.PizzaOrder{},
		&models.InventoryItem{}, &models.PaymentIntent{}, &models.OAuthClient{}, &models.OAuthToken{}))

	app := &testApp{
		db:       db,
		mailer:   &fakeMailer{},
		gateway:  &fakeGateway{},
		sessions: auth.NewSessionIssuer(testJWTSecret, time.Hour),
	}

	cat := catalog.Default()
	users := services.NewUserService(db)
	app.inventory = services.NewInventoryService(db, app.mailer, "admin@pizza.test", nil)
	require.NoError(t, app.inventory.Seed(context.Background()))
	orders := services.NewOrderService(db, cat, nil)
	oauth := auth.NewOAuthService(db, testJWTSecret)

	app.router = gin.New()
	RegisterRoutes(app.router, Handlers{
		Auth:      NewAuthController(users, app.sessions, app.mailer, AuthSettings{ClientURL: "http://localhost:5173/"}),
		Pizza:     NewPizzaController(cat, orders),
		Cart:      NewCartController(services.NewCartService(db, cat)),
		Payment:   NewPaymentController(services.NewPaymentService(db, cat, app.gateway, app.inventory, nil, services.PaymentOptions{})),
		Admin:     NewAdminController(orders, services.NewStatsService(db)),
		Inventory: NewInventoryController(app.inventory),
		Clients:   NewClientController(services.NewClientService(db)),
		Token:     oauth.HandleToken,
	}, middleware.Authenticate(testJWTSecret, users))
	return app
}

func (a *testApp) createUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := &models.User{Name: "User " + email, Email: email, Password: "secret123", Role: role, IsEmailVerified: true}
	require.NoError(t, user.HashPassword())
	require.NoError(t, a.db.Create(user).Error)
	return user
}

func (a *testApp) cookieFor(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, _, err := a.sessions.Issue(user)
	require.NoError(t, err)
	return &http.Cookie{Name: auth.SessionCookie, Value: token}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr models.APIError
	decode(t, w, &apiErr)
	return apiErr.Code
}
