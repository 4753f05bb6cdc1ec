package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"canteen-order-backend/config"
	"canteen-order-backend/internal/model"
)

// Init initializes the database connection and runs migrations. A DSN with
// the "sqlite://" prefix selects the sqlite driver for local development;
// anything else is treated as a postgres DSN.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(openDialector(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Shift{},
		&model.Canteen{},
		&model.Holiday{},
		&model.CutoffConfig{},
		&model.Reservation{},
		&model.PushSubscription{},
	); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := applyConstraintDDL(db); err != nil {
		return nil, err
	}

	return db, nil
}

// applyConstraintDDL adds the partial unique index that enforces "at most
// one non-cancelled reservation per (user, order_date)". AutoMigrate cannot
// express a partial index, so it is raw DDL.
func applyConstraintDDL(db *gorm.DB) error {
	ddl := `CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_active_user_date
		ON reservations (user_id, order_date) WHERE status <> 'CANCELLED'`
	if err := db.Exec(ddl).Error; err != nil {
		return fmt.Errorf("DDL failed on active-reservation index: %w", err)
	}
	return nil
}

func openDialector(dsn string) gorm.Dialector {
	if path, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		return sqlite.Open(path)
	}
	return postgres.Open(dsn)
}
