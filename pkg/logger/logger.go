// Package logger is the single construction point for the engine's
// *zap.SugaredLogger, shared by every package's Config.Logger field.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production zap logger tagged with the given service/component
// name, returning its sugared form for the key-value logging style used
// throughout this module.
func New(name string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return base.Named(name).Sugar(), nil
}

// NewNop returns a logger that discards everything, for tests and callers
// that don't want to configure zap themselves.
func NewNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
