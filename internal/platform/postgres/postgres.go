package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/llmndev/perfume-storefront/internal/platform/migrations"
)

// Connect opens a PostgreSQL connection via GORM, verifies connectivity and
// applies the storefront schema.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate storefront schema: %w", err)
	}
	return db, nil
}

// ConnectOrWarn dials PostgreSQL and returns the DB plus a cleanup function.
// When the DSN is empty or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectOrWarn(ctx context.Context, dsn string, log *slog.Logger) (*gorm.DB, func()) {
	if strings.TrimSpace(dsn) == "" {
		if log != nil {
			log.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		}
		return nil, func() {}
	}
	db, err := Connect(ctx, dsn)
	if err != nil {
		if log != nil {
			log.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if log != nil {
		log.Info("postgres connection established")
	}
	return db, func() { _ = sqlDB.Close() }
}
