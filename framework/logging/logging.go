// Package logging builds the application's zap logger from config.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/km-arc/go-beans/framework/config"
)

// New creates a structured logger appropriate for the environment.
// Production uses JSON output, everything else the development console
// encoder. LOG_LEVEL and LOG_FORMAT override either default. APP_DEBUG
// turns on zap's development mode: DPanic panics and warnings carry stacks.
func New(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	zc.Development = cfg.App.Debug

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid LOG_LEVEL %q", cfg.Log.Level)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Log.Format {
	case "json":
		zc.Encoding = "json"
	case "console":
		zc.Encoding = "console"
	default:
		return nil, errors.Errorf("invalid LOG_FORMAT %q", cfg.Log.Format)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger.With(zap.String("app", cfg.App.Name)), nil
}
