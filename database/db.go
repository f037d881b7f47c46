// Package database implements the Warehouse Loader: schema migrations and
// the star-schema upserts that turn a canonical fact stream into dim_/fact_/
// rel_ rows.
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"finsight/config"
)

// DB holds the shared connection pool. One *sqlx.DB is shared by every
// worker in the pool: one connection each, so the pool size matches the
// configured worker count and sqlx's pool enforces that ceiling itself.
var DB *sqlx.DB

// Connect opens a connection pool sized to the configured worker count.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.WorkerCount)
	db.SetMaxIdleConns(cfg.WorkerCount)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("connected to database %s@%s:%s/%s (pool size %d)",
		cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.WorkerCount)

	return db, nil
}

// Initialize sets up the package-level DB handle.
func Initialize(cfg *config.Config) error {
	db, err := Connect(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Close closes the global pool.
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// HealthCheck performs a liveness check with a bounded timeout.
func HealthCheck() error {
	if DB == nil {
		return fmt.Errorf("database connection not initialized")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return DB.PingContext(ctx)
}
