package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/infrastructure/config"
	"github.com/ordersync/backend/internal/infrastructure/logger"
	"github.com/ordersync/backend/internal/infrastructure/persistence"
)

// The schema is model-driven: this command applies the gorm auto-migration
// for every registered model, so deploys can migrate without starting the
// server.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Applying schema migrations",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)
	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema is up to date")
}
