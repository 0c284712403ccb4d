package client

import (
	"fmt"

	"crypto-card-shop/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InMemoryDSN keeps all state in process memory. Losing it on restart is the
// intended behavior of this service, not an accident.
const InMemoryDSN = "file::memory:?cache=shared"

func InitSqliteClient(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// sqlite allows one writer at a time; a single-connection pool makes
	// every read-modify-write serialize at the store and keeps the
	// in-memory database alive for the life of the process.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(
		&model.Card{},
		&model.Order{},
		&model.RedeemCode{},
		&model.WebhookEvent{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}
