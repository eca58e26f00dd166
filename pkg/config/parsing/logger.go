package parsing

import (
	"github.com/go-gost/dgram/pkg/config"
	"github.com/go-gost/dgram/pkg/logger"
)

func ParseLogger(cfg *config.LogConfig) logger.Logger {
	if cfg == nil {
		return logger.NewLogger()
	}

	var rotation *logger.Rotation
	if r := cfg.Rotation; r != nil {
		rotation = &logger.Rotation{
			MaxSize:    r.MaxSize,
			MaxBackups: r.MaxBackups,
			MaxAge:     r.MaxAge,
			Compress:   r.Compress,
		}
	}

	return logger.NewLogger(
		logger.FileLoggerOption(cfg.Output, rotation),
		logger.FormatLoggerOption(logger.LogFormat(cfg.Format)),
		logger.LevelLoggerOption(logger.LogLevel(cfg.Level)),
	)
}
