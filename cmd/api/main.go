package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-inventory-ledger/internal/client"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/database"
	applogger "go-inventory-ledger/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := applogger.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(&model.Inventory{}, &model.Purchase{}); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}
	if cfg.SeedDemoData {
		seedDemoInventory(db, logger)
	}

	wsHub := ws.NewHub(logger)
	go wsHub.Run()

	productClient := client.NewProductClient(client.Options{
		BaseURL:        cfg.ProductsBaseURL,
		APIKey:         cfg.InternalAPIKey,
		RequestTimeout: cfg.ProductRequestTimeout,
		RetryAttempts:  cfg.ProductRetryAttempts,
		RetryWait:      cfg.ProductRetryWait,
		RetryMaxWait:   cfg.ProductRetryMaxWait,
	}, logger)

	inventoryRepo := repository.NewInventoryRepo(db)
	purchaseRepo := repository.NewPurchaseRepo(db)

	invService := service.NewInventoryService(inventoryRepo, wsHub, logger)
	purchaseService := service.NewPurchaseService(productClient, purchaseRepo, wsHub, logger)

	invHandler := handler.NewInventoryHandler(invService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)

	app := fiber.New(fiber.Config{
		AppName: "Inventory Ledger v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Service-to-service routes, guarded by the shared secret
	api := app.Group("/api/v1", middleware.RequireAPIKey(cfg.InternalAPIKey))
	api.Get("/inventory/:id", invHandler.GetInventory)
	api.Patch("/inventory/:id", invHandler.AdjustInventory)
	api.Post("/purchases", purchaseHandler.CreatePurchase)
	api.Get("/purchases", purchaseHandler.GetPurchases)
	api.Get("/purchases/:id", purchaseHandler.GetPurchase)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("inventory ledger listening", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}

// seedDemoInventory creates a known stock row so a fresh environment can take
// purchases immediately. Controlled by SEED_DEMO_DATA.
func seedDemoInventory(db *gorm.DB, logger *zap.Logger) {
	demoProductID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	inv := model.Inventory{ProductID: demoProductID, Quantity: 100}
	if err := db.FirstOrCreate(&inv, "product_id = ?", demoProductID).Error; err != nil {
		logger.Warn("failed to seed demo inventory", zap.Error(err))
		return
	}
	logger.Info("demo inventory ready",
		zap.String("product_id", demoProductID.String()),
		zap.Int("quantity", inv.Quantity))
}
