package storage

import (
	"fmt"

	"github.com/stabrig/rigview/internal/config"
	"github.com/stabrig/rigview/internal/storage/gormdb"
	"github.com/stabrig/rigview/internal/storage/memory"
)

// NewBackend creates a recorder backend based on configuration.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.Username, cfg.DB.Password, cfg.DB.Database,
		)
		return gormdb.NewPostgres(dsn)
	case "sqlite":
		return gormdb.NewSqlite(cfg.SqlitePath)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
