package db

import (
	"yield_wallet/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table owned by the service
func Models() []any {
	return []any{
		&domain.User{},           // users
		&domain.BlacklistEntry{}, // blacklist_entries
		&domain.Deposit{},        // deposits
		&domain.Withdrawal{},     // withdrawals
		&domain.Plan{},           // plans
		&domain.Bet{},            // bets
		&domain.Entry{},          // entries (history and wallet trails)
		&domain.Message{},        // support chat messages
		&domain.Notification{},   // notifications
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		logrus.WithField("error", err.Error()).Error("Migration failed")
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
