// Package database provides PostgreSQL access for the analytics service:
// the raw report store (read-only), the precomputed analytics functions,
// and the pattern registry.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// pingTimeout bounds the connectivity check at startup.
const pingTimeout = 5 * time.Second

// Config holds database connection settings.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Connection wraps a configured sql.DB.
type Connection struct {
	DB *sql.DB
}

// NewConnection opens, configures, and verifies a database connection.
func NewConnection(cfg *Config) (*Connection, error) {
	db, openErr := sql.Open("postgres", cfg.DSN())
	if openErr != nil {
		return nil, fmt.Errorf("open database: %w", openErr)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	return &Connection{DB: db}, nil
}

// Ping checks database connectivity.
func (c *Connection) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the underlying database handle.
func (c *Connection) Close() error {
	return c.DB.Close()
}
