package controllers

import (
	"github.com/franciscosanchezn/pizzeria-api/internal/middleware"
	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Handlers groups every controller mounted by RegisterRoutes
type Handlers struct {
	Auth      *AuthController
	Pizza     PizzaController
	Cart      *CartController
	Payment   *PaymentController
	Admin     *AdminController
	Inventory *InventoryController
	Clients   *ClientController
	// Token serves POST /oauth/token
	Token gin.HandlerFunc
	// LiveFeed upgrades GET /api/admin/orders/live to a websocket
	LiveFeed gin.HandlerFunc
}

// RegisterRoutes mounts the API. authenticate must set the user in the context.
func RegisterRoutes(router *gin.Engine, h Handlers, authenticate gin.HandlerFunc) {
	if h.Token != nil {
		router.POST("/oauth/token", h.Token)
	}

	api := router.Group("/api")

	authApi := api.Group("/auth")
	{
		authApi.POST("/signup", h.Auth.Signup)
		authApi.POST("/login", h.Auth.Login)
		authApi.GET("/logout", h.Auth.Logout)
		authApi.POST("/forgotPassword", h.Auth.ForgotPassword)
		authApi.PATCH("/resetPassword/:token", h.Auth.ResetPassword)
		authApi.GET("/verifyEmail/:token", h.Auth.VerifyEmail)
		authApi.GET("/me", authenticate, h.Auth.Me)
	}

	pizzaApi := api.Group("/pizza")
	{
		pizzaApi.GET("/ingredients", h.Pizza.GetIngredients)
		pizzaApi.POST("/calculate-price", h.Pizza.CalculatePrice)
		pizzaApi.POST("/order", authenticate, h.Pizza.CreateOrder)
		pizzaApi.GET("/orders", authenticate, h.Pizza.GetMyOrders)
		pizzaApi.GET("/orders/:id", authenticate, h.Pizza.GetMyOrder)
	}

	cartApi := api.Group("/cart", authenticate)
	{
		cartApi.POST("", h.Cart.AddItem)
		cartApi.GET("", h.Cart.ListItems)
		cartApi.DELETE("", h.Cart.Clear)
		cartApi.DELETE("/:id", h.Cart.RemoveItem)
	}

	paymentApi := api.Group("/payment", authenticate)
	{
		paymentApi.POST("/create-order", h.Payment.CreateOrder)
		paymentApi.POST("/verify-payment", h.Payment.VerifyPayment)
	}

	adminApi := api.Group("/admin", authenticate, middleware.RequireRole(models.RoleAdmin))
	{
		adminApi.GET("/orders", h.Admin.ListOrders)
		adminApi.GET("/orders/export", h.Admin.ExportOrders)
		if h.LiveFeed != nil {
			adminApi.GET("/orders/live", h.LiveFeed)
		}
		adminApi.GET("/orders/:id", h.Admin.GetOrder)
		adminApi.PATCH("/orders/:id/status", h.Admin.UpdateOrderStatus)
		adminApi.GET("/stats", h.Admin.GetStats)

		adminApi.GET("/inventory", h.Inventory.List)
		adminApi.GET("/inventory/low-stock", h.Inventory.LowStock)
		adminApi.POST("/inventory", h.Inventory.Create)
		adminApi.PUT("/inventory/:id", h.Inventory.Update)

		adminApi.POST("/clients", h.Clients.CreateClient)
		adminApi.GET("/clients", h.Clients.ListClients)
		adminApi.DELETE("/clients/:id", h.Clients.DeleteClient)
	}
}
