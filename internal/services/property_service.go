package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"stayflo/internal/models/db_models"
	"stayflo/internal/models/response_models"
	"stayflo/internal/planner"
	"stayflo/internal/repositories"
	"stayflo/pkg/memcache"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

const propertyCacheTTL = 5 * time.Minute

// PropertyLocale is a property resolved into what the planner needs.
type PropertyLocale struct {
	CityLabel string
	Locale    planner.Locale
}

type PropertyServiceInterface interface {
	GetProperty(ctx context.Context, slug string) (response_models.PropertyResponse, error)
	ResolveLocale(ctx context.Context, slug string) (PropertyLocale, error)
}

type PropertyService struct {
	repo    repositories.PropertyRepository
	cache   memcache.Store[db_models.Property]
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewPropertyService(repo repositories.PropertyRepository, m *metrics.Metrics, log *zap.Logger) PropertyServiceInterface {
	if log == nil {
		log = zap.NewNop()
	}
	return &PropertyService{
		repo:    repo,
		cache:   memcache.New[db_models.Property](propertyCacheTTL, 10*time.Minute),
		metrics: m,
		log:     log.Named("property"),
	}
}

func (s *PropertyService) load(ctx context.Context, slug string) (db_models.Property, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return db_models.Property{}, utils.ErrPropertyNotFound
	}
	if p, ok := s.cache.Get(key); ok {
		s.metrics.Cache("property", true)
		return p, nil
	}
	s.metrics.Cache("property", false)

	p, err := s.repo.GetBySlug(ctx, key)
	if err != nil {
		return db_models.Property{}, err
	}
	s.cache.Set(key, *p, 0)
	return *p, nil
}

func (s *PropertyService) GetProperty(ctx context.Context, slug string) (response_models.PropertyResponse, error) {
	p, err := s.load(ctx, slug)
	if err != nil {
		return response_models.PropertyResponse{}, err
	}
	areas := make([]string, 0, len(p.Areas))
	for _, a := range p.Areas {
		areas = append(areas, a.Key)
	}
	return response_models.PropertyResponse{
		Slug:        p.Slug,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		City:        p.CityLabel(),
		Timezone:    p.Timezone,
		Brand: response_models.PropertyBrand{
			LogoURL:   p.LogoURL,
			Theme:     p.Theme,
			AccentHex: p.AccentHex,
		},
		Areas: areas,
	}, nil
}

// ResolveLocale maps a property to search areas, note aliases and its
// civil timezone. A property without areas falls back to the built-in
// San Antonio list.
func (s *PropertyService) ResolveLocale(ctx context.Context, slug string) (PropertyLocale, error) {
	p, err := s.load(ctx, slug)
	if err != nil {
		return PropertyLocale{}, err
	}
	loc, err := utils.LoadCivilLocation(p.Timezone)
	if err != nil {
		s.log.Warn("Property has an unknown timezone, using default",
			zap.String("slug", p.Slug),
			zap.String("timezone", p.Timezone),
		)
		loc = utils.DefaultLocation()
	}

	areas := make([]planner.Area, 0, len(p.Areas))
	var hints []string
	for _, a := range p.Areas {
		areas = append(areas, planner.Area{Key: a.Key, Lat: a.Lat, Lng: a.Lng, RadiusMeters: a.RadiusMeters})
		hints = append(hints, a.Aliases...)
	}
	if len(areas) == 0 {
		areas = planner.SanAntonioAreas
	}

	city := p.CityLabel()
	return PropertyLocale{
		CityLabel: city,
		Locale: planner.Locale{
			SearchCity: city,
			Location:   loc,
			Areas:      areas,
			AreaHints:  hints,
		},
	}, nil
}
