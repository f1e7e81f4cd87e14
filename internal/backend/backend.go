// Package backend wires a ledger store, the optional AMQP publisher and the
// services on top of them from configuration.
package backend

import (
	"fmt"

	"ledger/internal/config"
	"ledger/internal/ledger"
	"ledger/internal/services"
)

// CleanupFunc releases resources held by a backend
type CleanupFunc func() error

// Backend bundles the services built on one store
type Backend struct {
	Store   ledger.Store
	Ledger  *services.LedgerService
	Import  *services.ImportService
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any
func (b *Backend) Close() error {
	if b.Cleanup == nil {
		return nil
	}
	return b.Cleanup()
}

// BackendType represents the type of store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP is optional for every store type
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ImportMaxRows int
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:          backendType,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		AMQPURL:       appConfig.AMQPURL,
		AMQPExchange:  appConfig.AMQPExchange,
		AMQPQueue:     appConfig.AMQPQueue,
		ImportMaxRows: appConfig.ImportMaxRows,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	if c.ImportMaxRows < 0 {
		return fmt.Errorf("import max rows must not be negative")
	}
	return nil
}
