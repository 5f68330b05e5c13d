package datarecording

import (
	"errors"
	"fmt"
)

// Errors reported by NewWithConfig.
var (
	ErrUnknownBackend = errors.New("unknown recorder backend")
	ErrMissingDSN     = errors.New("clickhouse recorder needs a dsn")
)

// Backend names accepted by RecorderConfig.
const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// RecorderConfig selects and configures a recorder backend.
type RecorderConfig struct {
	Type      string
	Path      string
	DSN       string
	BatchSize int
}

// NewWithConfig creates the recorder the config describes. An empty type
// means sqlite.
func NewWithConfig(cfg RecorderConfig) (DataRecorder, error) {
	switch cfg.Type {
	case "", BackendSQLite:
		w, err := newSQLiteWriter(cfg.Path, cfg.BatchSize)
		if err != nil {
			return nil, err
		}

		return w, nil
	case BackendClickHouse:
		if cfg.DSN == "" {
			return nil, ErrMissingDSN
		}

		return NewClickHouse(cfg.DSN, cfg.BatchSize)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Type)
	}
}
