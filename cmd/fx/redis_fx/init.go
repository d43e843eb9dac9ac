package redis_fx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/config"
	"stayflo/internal/infra"
)

var Module = fx.Provide(provideRedis)

// provideRedis returns nil when REDIS_URL is unset.
func provideRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := infra.InitRedis(ctx, cfg.RedisURL, log)
	if err != nil || client == nil {
		return client, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
