package property_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayflo/internal/repositories"
	"stayflo/internal/services"
	"stayflo/pkg/metrics"
)

var Module = fx.Provide(
	NewPropertyRepo, NewPropertyService)

// NewPropertyRepo migrates and seeds Postgres when a database is
// configured, otherwise serves the built-in catalog from memory.
func NewPropertyRepo(db *gorm.DB, log *zap.Logger) (repositories.PropertyRepository, error) {
	if db == nil {
		return repositories.NewMemoryPropertyRepository(repositories.DefaultProperties()...), nil
	}
	if err := repositories.MigrateProperties(db); err != nil {
		return nil, err
	}
	repo := repositories.NewPropertyRepository(db)
	if err := repositories.SeedDefaultProperties(context.Background(), repo); err != nil {
		return nil, err
	}
	log.Info("Property catalog ready")
	return repo, nil
}

func NewPropertyService(repo repositories.PropertyRepository, m *metrics.Metrics, log *zap.Logger) services.PropertyServiceInterface {
	return services.NewPropertyService(repo, m, log)
}
