// Package logging builds the service's zap loggers. Components do not
// construct their own; they receive a child of the root logger scoped
// via Named so every line carries its origin (agridata.market,
// agridata.api, ...).
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// rootName prefixes every component logger name.
const rootName = "agridata"

// New builds the root logger. Development mode uses the colored console
// encoder; production emits JSON with stacktraces enabled.
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.DisableStacktrace = false
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named(rootName), nil
}

// Named derives a component-scoped child of the given logger. A nil
// parent yields a no-op logger so constructors can take loggers
// optionally without nil checks at every call site.
func Named(parent *zap.Logger, component string) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(component)
}
