package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"terang/internal/handlers"
	"terang/internal/middleware"
	"terang/internal/models"
	"terang/internal/repositories"
	"terang/internal/services"
	"terang/pkg/cache"
	"terang/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "terang.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("JWT_SECRET", "change_me_in_production")
	viper.SetDefault("OTP_TTL_MINUTES", 5)
	viper.SetDefault("ORDER_NUMBER_PREFIX", "ORD")
	viper.SetDefault("PRODUCT_CACHE_TTL_HOURS", 24)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := openDatabase(viper.GetString("DB_DRIVER"), viper.GetString("DB_DSN"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.CustomerInfo{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			// Checkout still works without events; just say so loudly.
			log.Printf("Warning: RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			defer mqClient.Close()
		}
	}

	// --- Redis product cache (optional) ---
	var productCache *cache.ProductCache
	if addr := viper.GetString("REDIS_ADDR"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: viper.GetString("REDIS_PASSWORD"),
		})
		ttl := time.Duration(viper.GetInt("PRODUCT_CACHE_TTL_HOURS")) * time.Hour
		productCache = cache.NewProductCache(redisClient, ttl)
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	customerInfoRepo := repositories.NewGORMCustomerInfoRepository(db)

	// --- Services ---
	catalogService := services.NewCatalogService(productRepo, categoryRepo, productCache)
	cartService := services.NewCartService(cartRepo, productRepo)
	var publisher services.OrderEventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	orderService := services.NewOrderService(
		orderRepo, productRepo, customerInfoRepo, publisher,
		viper.GetString("ORDER_NUMBER_PREFIX"),
	)
	customerInfoService := services.NewCustomerInfoService(customerInfoRepo)
	authService := services.NewAuthService(
		userRepo, services.LogEmailSender{},
		viper.GetString("JWT_SECRET"),
		time.Duration(viper.GetInt("OTP_TTL_MINUTES"))*time.Minute,
	)

	// --- Handlers ---
	productHandler := handlers.NewProductHandler(catalogService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	customerInfoHandler := handlers.NewCustomerInfoHandler(customerInfoService)
	authHandler := handlers.NewAuthHandler(authService)

	// --- Fiber app ---
	app := fiber.New()
	app.Use(logger.New())

	apiV1 := app.Group("/api/v1")

	// Public storefront routes.
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	categoryHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	customerInfoHandler.RegisterRoutes(apiV1)

	// Catalog management requires a verified login.
	adminRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	productHandler.RegisterAdminRoutes(adminRoutes)
	categoryHandler.RegisterAdminRoutes(adminRoutes)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Order event consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting order event consumer...")
			err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
				log.Printf("Received order event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			})
			if err != nil {
				log.Printf("Order event consumer stopped: %v", err)
			}
		}()
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured GORM backend. TranslateError is on
// so unique violations surface as gorm.ErrDuplicatedKey on every
// driver, which the repositories rely on.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return gorm.Open(sqlite.Open(dsn), cfg)
	}
}
