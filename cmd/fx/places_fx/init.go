package places_fx

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/config"
	"stayflo/internal/planner"
	"stayflo/internal/services"
	"stayflo/pkg/metrics"
)

var Module = fx.Provide(
	providePlacesClient, provideCandidateSource)

func providePlacesClient(cfg *config.Config, m *metrics.Metrics, log *zap.Logger) services.PlacesServiceInterface {
	if cfg.GoogleMapsAPIKey == "" {
		log.Warn("GOOGLE_MAPS_API_KEY not set, place search will return nothing")
	}
	return services.NewGooglePlacesClient(services.PlacesOptions{
		APIKey:     cfg.GoogleMapsAPIKey,
		Timeout:    cfg.PlacesTimeout,
		RPS:        cfg.PlacesRPS,
		Burst:      cfg.PlacesBurst,
		GeocodeTTL: cfg.GeocodeCacheTTL,
	}, m, log)
}

// provideCandidateSource puts the Redis cache in front of the provider
// when Redis is configured.
func provideCandidateSource(places services.PlacesServiceInterface, client *redis.Client, cfg *config.Config, m *metrics.Metrics, log *zap.Logger) planner.CandidateSource {
	return services.NewCachedCandidateSource(places, client, cfg.PlacesCacheTTL, m, log)
}
