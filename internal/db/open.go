// Package db opens the MySQL connection and owns the schema migration.
package db

import (
	"fmt"
	"time"

	"yield_wallet/internal/config" // Application configuration

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM query logger
)

// DSN builds the Data Source Name for the MySQL connection
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// Open connects to MySQL and configures the connection pool
func Open(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn // Only slow queries and errors by default
	if !cfg.IsProd {
		logLevel = logger.Info // Log every query during development
	}
	gdb, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true, // Map duplicate-key errors to gorm.ErrDuplicatedKey
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to DB: %w", err)
	}
	sqlDB, err := gdb.DB() // Underlying *sql.DB for pool settings
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns) // Upper bound of open connections
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns) // Idle connections kept around
	sqlDB.SetConnMaxLifetime(time.Hour)       // Recycle connections hourly
	return gdb, nil
}
