package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/pizzeria-api/docs" // Import generated docs
	"github.com/franciscosanchezn/pizzeria-api/internal/auth"
	"github.com/franciscosanchezn/pizzeria-api/internal/catalog"
	"github.com/franciscosanchezn/pizzeria-api/internal/config"
	"github.com/franciscosanchezn/pizzeria-api/internal/controllers"
	"github.com/franciscosanchezn/pizzeria-api/internal/database"
	"github.com/franciscosanchezn/pizzeria-api/internal/jobs"
	"github.com/franciscosanchezn/pizzeria-api/internal/middleware"
	"github.com/franciscosanchezn/pizzeria-api/internal/notify"
	"github.com/franciscosanchezn/pizzeria-api/internal/payment"
	"github.com/franciscosanchezn/pizzeria-api/internal/realtime"
	"github.com/franciscosanchezn/pizzeria-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// @title Pizzeria API
// @version 1.0
// @description Pizza builder, cart, checkout and kitchen administration API
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name jwt
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()
	applyLogLevel(configuration.LogLevel)

	// Initialize database connection
	db := setupDatabase(configuration)

	app := buildApp(db, configuration)
	if err := run(app, configuration); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// applyLogLevel overrides the environment default when LOG_LEVEL is explicitly set
func applyLogLevel(level string) {
	if _, set := os.LookupEnv("LOG_LEVEL"); !set {
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(parsed)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase opens the configured database, migrates the schema and seeds the inventory
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{
		Driver:   conf.DBDriver,
		URL:      conf.DatabaseURL,
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Name:     conf.DBName,
		SSLMode:  conf.DBSSLMode,
		Path:     conf.DBPath,
	})
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

type app struct {
	router    *gin.Engine
	hub       *realtime.Hub
	scheduler *jobs.Scheduler
}

// buildApp wires services, controllers and background jobs
func buildApp(db *gorm.DB, conf *config.Config) *app {
	ctx := context.Background()

	cat := catalog.Default()
	hub := realtime.NewHub(conf.CORSOrigins)
	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     conf.SMTPHost,
		Port:     conf.SMTPPort,
		Username: conf.SMTPUser,
		Password: conf.SMTPPassword,
		From:     conf.MailFrom,
	})
	gateway := payment.NewRazorpay(conf.RazorpayKeyID, conf.RazorpayKeySecret)

	users := services.NewUserService(db)
	inventory := services.NewInventoryService(db, mailer, conf.AdminEmail, hub)
	checkPanicErr(inventory.Seed(ctx))
	orders := services.NewOrderService(db, cat, hub)
	payments := services.NewPaymentService(db, cat, gateway, inventory, hub, services.PaymentOptions{
		Currency:      conf.PaymentCurrency,
		AllowUnsigned: conf.PaymentAllowUnsigned,
	})
	oauthService := auth.NewOAuthService(db, conf.JWTSecret)
	sessions := auth.NewSessionIssuer(conf.JWTSecret, time.Duration(conf.JWTTTLHours)*time.Hour)

	scheduler, err := jobs.NewScheduler(conf.InventoryDigestCron, inventory, oauthService)
	checkPanicErr(err)

	router := setupRouter(conf)
	controllers.RegisterRoutes(router, controllers.Handlers{
		Auth: controllers.NewAuthController(users, sessions, mailer, controllers.AuthSettings{
			ClientURL:    conf.ClientURL,
			CookieSecure: conf.CookieSecure,
		}),
		Pizza:     controllers.NewPizzaController(cat, orders),
		Cart:      controllers.NewCartController(services.NewCartService(db, cat)),
		Payment:   controllers.NewPaymentController(payments),
		Admin:     controllers.NewAdminController(orders, services.NewStatsService(db)),
		Inventory: controllers.NewInventoryController(inventory),
		Clients:   controllers.NewClientController(services.NewClientService(db)),
		Token:     oauthService.HandleToken,
		LiveFeed:  hub.Handler,
	}, middleware.Authenticate(conf.JWTSecret, users))

	return &app{router: router, hub: hub, scheduler: scheduler}
}

// setupRouter initializes the Gin router with the global middleware and the
// operational endpoints
func setupRouter(conf *config.Config) *gin.Engine {
	if conf.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.Metrics())

	router.GET("/health", healthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return router
}

// run serves HTTP until SIGINT or SIGTERM, then drains connections and stops the jobs
func run(a *app, conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.scheduler.Start()
		<-gctx.Done()

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		a.hub.Close()
		err := server.Shutdown(shutdownCtx)
		if serr := a.scheduler.Stop(shutdownCtx); serr != nil {
			log.WithError(serr).Warn("Scheduled jobs did not finish in time")
		}
		return err
	})
	return g.Wait()
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "pizzeria-api",
	})
}
