package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/arjun/deadline-tracker/internal/adapters/registry"
	"github.com/arjun/deadline-tracker/internal/config"
	"github.com/arjun/deadline-tracker/internal/core"
)

// RegistryFactory creates processed registries based on configuration
type RegistryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRegistryFactory creates a new registry factory
func NewRegistryFactory(cfg *config.Config, logger *zap.Logger) *RegistryFactory {
	return &RegistryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRegistry creates a processed registry based on the configuration
func (f *RegistryFactory) CreateRegistry() (core.ProcessedRegistry, error) {
	registryType := f.cfg.GetString("registry.type")
	ttl, err := f.cfg.GetDuration("registry.ttl")
	if err != nil {
		return nil, fmt.Errorf("invalid registry TTL: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("registry.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid registry cleanup frequency: %w", err)
	}

	switch registryType {
	case "", "memory":
		return registry.NewMemoryRegistry(f.logger, ttl, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("registry.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return registry.NewSQLiteRegistry(sqlitePath, f.logger, ttl, cleanupFreq)
	case "mysql":
		mysqlDSN := f.cfg.GetString("registry.mysql_dsn")
		return registry.NewMySQLRegistry(mysqlDSN, f.logger, ttl, cleanupFreq)
	default:
		return nil, fmt.Errorf("unsupported registry type: %s", registryType)
	}
}
