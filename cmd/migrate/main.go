package main

import (
	"yield_wallet/internal/config" // Configuration
	"yield_wallet/internal/db"     // Connection and schema

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if cfg.StoreDriver != config.DriverMySQL {
		logrus.Fatalf("migrations need the %s store driver, got %q", config.DriverMySQL, cfg.StoreDriver)
	}
	gdb, err := db.Open(cfg) // Connect to MySQL
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	logrus.WithField("database", cfg.DBName).Info("Migration completed")
}
