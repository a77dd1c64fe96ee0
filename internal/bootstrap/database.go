package bootstrap

import (
	"fmt"

	"github.com/phenomwatch/analytics/internal/config"
	"github.com/phenomwatch/analytics/internal/database"
)

// SetupDatabase opens the PostgreSQL connection pool.
func SetupDatabase(cfg *config.Config) (*database.Connection, error) {
	conn, connErr := database.NewConnection(&database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxConnections:  cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnectionMaxLifetime,
	})
	if connErr != nil {
		return nil, fmt.Errorf("connect database: %w", connErr)
	}

	return conn, nil
}
