package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"chronobus-api/internal/db/migrations"
)

// gooseUp permite sustituir goose.UpContext en tests.
var gooseUp = func(ctx context.Context, sqlDB *sql.DB, dir string) error {
	return goose.UpContext(ctx, sqlDB, dir)
}

// Migrate aplica las migraciones embebidas sobre el pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	return runMigrations(ctx, sqlDB, logger)
}

func runMigrations(ctx context.Context, sqlDB *sql.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUp(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("database migrations applied")
	return nil
}
