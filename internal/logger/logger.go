package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/marubatsu/internal/config"
)

// New builds the application logger. Production environments get JSON
// output, everything else the development console encoder. The terminal
// belongs to the TUI, so output goes to cfg.LogFile unless it is "stderr".
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	out := cfg.LogFile
	if out == "" {
		out, err = config.DefaultLogPath()
		if err != nil {
			return nil, fmt.Errorf("log path: %w", err)
		}
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}

	return zc.Build()
}
