package db

import (
	"fmt"

	"github.com/ikkim/cart-backend/config"
	"github.com/ikkim/cart-backend/internal/app/model"
	appLogger "github.com/ikkim/cart-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxIdleConns = 10
	maxOpenConns = 100
)

// Open opens the relational store selected by cfg.Storage.Driver
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		appLogger.Info("Connecting to database", map[string]interface{}{
			"driver":   cfg.Storage.Driver,
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.DBName,
			"user":     cfg.Database.User,
		})
		dialector = postgres.Open(cfg.Database.DSN())
	case config.DriverSQLite:
		appLogger.Info("Opening SQLite database", map[string]interface{}{
			"path": cfg.Database.SQLitePath,
		})
		dialector = sqlite.Open(cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("driver %q is not a relational store", cfg.Storage.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Use silent mode, we'll use our own logger
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Storage.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}

	appLogger.Info("Database connection established successfully", map[string]interface{}{
		"driver": cfg.Storage.Driver,
	})
	return gdb, nil
}

// cartModels lists every table the relational store owns
func cartModels() []interface{} {
	return []interface{}{
		&model.Cart{},
		&model.LineItem{},
	}
}

// Migrate creates or updates the cart tables
func Migrate(gdb *gorm.DB) error {
	appLogger.Info("Running database migrations...")

	models := cartModels()
	if err := gdb.AutoMigrate(models...); err != nil {
		appLogger.Error("Failed to run migrations", err)
		return err
	}

	appLogger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Close closes the database connection
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
