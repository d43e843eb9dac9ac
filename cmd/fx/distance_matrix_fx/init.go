package distance_matrix_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/config"
	"stayflo/internal/services"
	"stayflo/pkg/metrics"
)

var Module = fx.Provide(provideTravelEstimator)

func provideTravelEstimator(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) services.TravelEstimator {
	return services.NewGoogleMatrixClient(services.MatrixOptions{
		APIKey:   cfg.GoogleMapsAPIKey,
		Timeout:  cfg.TravelTimeout,
		CacheTTL: cfg.TravelCacheTTL,
	}, m, log)
}
