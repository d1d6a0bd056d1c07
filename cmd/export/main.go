package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"deskbook/internal/config"
	"deskbook/internal/export"
	"deskbook/internal/logging"
	"deskbook/internal/repository"
	"deskbook/internal/service"
)

// One-shot desk report exporter: builds an xlsx snapshot of the full desk
// set from the configured backend and saves it under exports.path.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := baseLogger.With().Str("component", "export").Logger()

	store, storeCloser, err := repository.Open(cfg.Storage, &logger)
	if err != nil {
		return fmt.Errorf("open desk store: %w", err)
	}
	defer storeCloser.Close()

	deskService := service.NewDeskService(store, &logger)
	exporter := export.NewExporter(deskService, &logger)

	path, err := exporter.SaveReport(context.Background(), cfg.Exports.Path)
	if err != nil {
		return err
	}

	logger.Info().Str("path", path).Msg("desk report saved")
	fmt.Println(path)
	return nil
}
