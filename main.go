package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lyralabs/lyra-backend/database"
	"github.com/lyralabs/lyra-backend/internal/config"
	"github.com/lyralabs/lyra-backend/internal/routes"
	"github.com/lyralabs/lyra-backend/internal/services"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal("Failed to load catalog:", err)
	}
	log.Printf("Catalog ready: %d products", catalog.Len())

	orders, err := storage.OpenOrderLog(cfg.OrdersPath, catalog)
	if err != nil {
		log.Fatal("Failed to open order log:", err)
	}
	log.Printf("Order log ready: %d orders in %s", orders.Count(), cfg.OrdersPath)

	sessions := services.NewSessionManager(catalog, orders, cfg.SessionTTL)
	dispatcher := services.NewDispatcher(catalog, orders, sessions)

	app := fiber.New(fiber.Config{
		AppName: "Lyra Shop Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "internal",
					"message": err.Error(),
				},
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Agent-Token",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, dispatcher, sessions, catalog, orders, cfg.AgentToken)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Gracefully shutting down...")
		sessions.Close()
		_ = app.Shutdown()
	}()

	log.Printf("Lyra backend starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}

	// Sessions are ephemeral; only the order log needs closing.
	if err := orders.Close(); err != nil {
		log.Printf("Failed to close order log: %v", err)
	}
	log.Println("Shutdown complete")
}

// loadCatalog picks the catalog source: Postgres when a DSN is configured,
// the JSON product file otherwise. Either way the result is the same
// immutable in-memory index.
func loadCatalog(cfg config.Config) (*storage.Catalog, error) {
	if cfg.CatalogDSN == "" {
		log.Printf("Loading catalog from %s", cfg.CatalogPath)
		return storage.LoadCatalogFile(cfg.CatalogPath)
	}

	log.Println("Loading catalog from PostgreSQL")
	db, err := database.Connect(cfg.CatalogDSN)
	if err != nil {
		return nil, err
	}
	catalog, err := storage.LoadCatalogDB(db)
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		_ = sqlDB.Close()
	}
	return catalog, err
}
