package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"intake/internal/catalog"
	"intake/internal/config"
	"intake/internal/daemon"
	"intake/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := openCatalog(cfg)
	if err != nil {
		logger.Error("open catalog", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("intaked shutting down")
}

func openCatalog(cfg *config.Config) (*catalog.Store, error) {
	if !cfg.Catalog.Enabled {
		return nil, nil
	}
	return catalog.Open(cfg.CatalogPath())
}
