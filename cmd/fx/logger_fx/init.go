package logger_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/config"
	"stayflo/pkg/logger"
)

var Module = fx.Options(
	fx.Provide(provideLogger),
	fx.Invoke(registerSync),
)

func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
}

func registerSync(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
}
