package itinerary_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stayflo/internal/planner"
	"stayflo/internal/services"
	"stayflo/pkg/metrics"
)

var Module = fx.Provide(provideItineraryService)

func provideItineraryService(
	source planner.CandidateSource,
	properties services.PropertyServiceInterface,
	travel services.TravelEstimator,
	narrative services.NarrativeServiceInterface,
	m *metrics.Metrics,
	log *zap.Logger,
) services.ItineraryServiceInterface {
	return services.NewItineraryService(source, properties, travel, narrative, m, log)
}
