package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"stayflo/cmd/fx/config_fx"
	"stayflo/cmd/fx/controllers_fx"
	"stayflo/cmd/fx/db_fx"
	"stayflo/cmd/fx/distance_matrix_fx"
	"stayflo/cmd/fx/itinerary_fx"
	"stayflo/cmd/fx/logger_fx"
	"stayflo/cmd/fx/metrics_fx"
	"stayflo/cmd/fx/narrative_fx"
	"stayflo/cmd/fx/places_fx"
	"stayflo/cmd/fx/property_fx"
	"stayflo/cmd/fx/redis_fx"
	"stayflo/internal/config"
	"stayflo/pkg/utils"
)

func main() {
	app := fx.New(
		config_fx.Module,
		logger_fx.Module,
		metrics_fx.Module,
		db_fx.Module,
		redis_fx.Module,
		property_fx.Module,
		places_fx.Module,
		distance_matrix_fx.Module,
		narrative_fx.Module,
		itinerary_fx.Module,
		controllers_fx.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(utils.RegisterValidators),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("Failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}
