package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

// App is the wired storefront service.
type App struct {
	Fiber    *fiber.App
	Cart     *services.CartService
	Wishlist *services.WishlistService
	Orders   *services.OrderService
	Auth     *services.AuthService
	Feed     *notify.Feed

	mq      *rabbitmq.Client
	closers []func() error
}

// NewApp builds every repository, service and handler from cfg.
func NewApp(cfg config.Config) (*App, error) {
	a := &App{}

	var (
		db           *gorm.DB
		snapshotRepo repositories.SnapshotRepository
		userRepo     repositories.UserRepository
		productRepo  repositories.ProductRepository
	)

	// --- Storage ---
	if cfg.StorageDriver == config.StorageMemory {
		snapshotRepo = repositories.NewMockSnapshotRepository()
		userRepo = repositories.NewMockUserRepository()
		productRepo = repositories.NewMockProductRepository()
	} else {
		var err error
		db, err = database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { return database.Close(db) })
		snapshotRepo = repositories.NewGORMSnapshotRepository(db)
		userRepo = repositories.NewGORMUserRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
	}
	if cfg.StorageDriver == config.StorageRedis {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisRepo, err := repositories.NewRedisSnapshotRepository(ctx, cfg.RedisURL, "")
		cancel()
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, redisRepo.Close)
		snapshotRepo = redisRepo
	}

	// --- Notifications ---
	a.Feed = notify.NewFeed(cfg.FeedSize)
	sinks := notify.Multi{notify.NewLogSink(log.Default()), a.Feed}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.NotificationQueue})
		if err != nil {
			log.Printf("Warning: notifications will not be published to RabbitMQ: %v", err)
		} else {
			a.mq = mqClient
			a.closers = append(a.closers, mqClient.Close)
			sinks = append(sinks, notify.NewMQSink(mqClient, mqClient.Queue()))
		}
	}

	// --- Catalog ---
	var source catalog.Source
	switch cfg.CatalogDriver {
	case config.CatalogLocal:
		if err := catalog.Seed(productRepo); err != nil {
			a.Close()
			return nil, err
		}
		source = catalog.NewRepositorySource(productRepo)
	default:
		source = catalog.NewHTTPSource(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	}

	// --- Services ---
	opts := services.Options{
		Snapshots:               repositories.NewSnapshotStore(snapshotRepo),
		Sink:                    sinks,
		SuppressMissingRemovals: !cfg.NotifyMissingRemovals,
	}
	a.Cart = services.NewCartService(opts)
	a.Wishlist = services.NewWishlistService(opts)
	a.Orders = services.NewOrderService(opts)
	a.Auth = services.NewAuthService(userRepo, cfg.JWTSecret)
	checkout := services.NewCheckoutService(a.Cart, a.Orders, cfg.CheckoutDelay)
	catalogService := services.NewCatalogService(source)

	// --- HTTP ---
	a.Fiber = fiber.New(fiber.Config{AppName: "storefront"})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(logger.New())
	a.Fiber.Use(middleware.Metrics())

	a.Fiber.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"time":      time.Now().Format(time.RFC3339),
			"storage":   cfg.StorageDriver,
			"catalog":   cfg.CatalogDriver,
			"messaging": a.mq != nil,
		})
	})
	a.Fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := middleware.AuthRequired(a.Auth)
	apiV1 := a.Fiber.Group("/api/v1")
	handlers.NewAuthHandler(a.Auth).RegisterRoutes(apiV1, auth)
	handlers.NewProductHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewNotificationHandler(a.Feed).RegisterRoutes(apiV1)
	handlers.NewCartHandler(a.Cart, checkout).RegisterRoutes(apiV1, auth)
	handlers.NewWishlistHandler(a.Wishlist, a.Cart).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(a.Orders, catalogService).RegisterRoutes(apiV1, auth)

	return a, nil
}

// StartAuditConsumer logs every notification that reaches the queue.
func (a *App) StartAuditConsumer() error {
	if a.mq == nil {
		return nil
	}
	return a.mq.ConsumeNotifications(auditNotification)
}

func auditNotification(msg amqp.Delivery) error {
	var event notify.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("malformed notification: %w", err)
	}
	log.Printf("Audit: %s %s/%s at %s: %s", event.Kind, event.Collection, event.Action, event.At.Format(time.RFC3339), event.Message)
	return nil
}

// Close releases the storage and messaging connections in reverse order.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storefront: %v", err)
	}
	defer app.Close()

	if err := app.StartAuditConsumer(); err != nil {
		log.Printf("Failed to start RabbitMQ consumer: %v", err)
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
