package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lyralabs/lyra-backend/database"
	"github.com/lyralabs/lyra-backend/internal/config"
	"github.com/lyralabs/lyra-backend/internal/mcpserver"
	"github.com/lyralabs/lyra-backend/internal/services"
	"github.com/lyralabs/lyra-backend/internal/storage"
)

// main starts the MCP server on stdio for a voice-agent host process. It
// reads the same catalog and order log paths as the HTTP entrypoint; run
// one process at a time against a given order log.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetPrefix("[MCP] ")

	catalog, err := loadCatalog(cfg)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	orders, err := storage.OpenOrderLog(cfg.OrdersPath, catalog)
	if err != nil {
		log.Fatalf("open order log: %v", err)
	}
	defer orders.Close()

	sessions := services.NewSessionManager(catalog, orders, cfg.SessionTTL)
	defer sessions.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.New(catalog, orders, sessions)
	if err := mcpserver.Serve(ctx, server); err != nil {
		log.Fatalf("failed to serve MCP: %v", err)
	}
}

func loadCatalog(cfg config.Config) (*storage.Catalog, error) {
	if cfg.CatalogDSN == "" {
		return storage.LoadCatalogFile(cfg.CatalogPath)
	}

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
