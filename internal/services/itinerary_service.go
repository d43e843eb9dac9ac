package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stayflo/internal/planner"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

const (
	ItineraryVersion = 1
	originCityLabel  = "your area"
)

// GenerateInput selects the locale either by property slug or, in the
// public flow, by the origin inside Prefs.
type GenerateInput struct {
	PropertySlug string
	Prefs        planner.PreferenceInput
}

type ItineraryServiceInterface interface {
	Generate(ctx context.Context, in GenerateInput) (*planner.GeneratedItinerary, error)
	Swap(it planner.GeneratedItinerary, blockID string) (*planner.GeneratedItinerary, error)
	NarrateBlock(ctx context.Context, in BlockNarrativeInput) (BlockNarrative, error)
}

type ItineraryService struct {
	planner    *planner.Planner
	properties PropertyServiceInterface
	travel     TravelEstimator
	narrative  NarrativeServiceInterface
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

func NewItineraryService(
	source planner.CandidateSource,
	properties PropertyServiceInterface,
	travel TravelEstimator,
	narrative NarrativeServiceInterface,
	m *metrics.Metrics,
	log *zap.Logger,
) *ItineraryService {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("itinerary")
	return &ItineraryService{
		planner:    planner.New(source, log.Named("planner")),
		properties: properties,
		travel:     travel,
		narrative:  narrative,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *ItineraryService) WithClock(now func() time.Time) *ItineraryService {
	s.now = now
	return s
}

func (s *ItineraryService) resolve(ctx context.Context, in GenerateInput) (string, planner.Locale, error) {
	if slug := strings.TrimSpace(in.PropertySlug); slug != "" {
		pl, err := s.properties.ResolveLocale(ctx, slug)
		if err != nil {
			return "", planner.Locale{}, err
		}
		return pl.CityLabel, pl.Locale, nil
	}
	if in.Prefs.Origin == nil {
		return "", planner.Locale{}, fmt.Errorf("%w: property or origin is required", utils.ErrInvalidInput)
	}
	city := strings.TrimSpace(in.Prefs.City)
	if city == "" {
		city = originCityLabel
	}
	return city, planner.Locale{Location: utils.DefaultLocation()}, nil
}

func (s *ItineraryService) Generate(ctx context.Context, in GenerateInput) (*planner.GeneratedItinerary, error) {
	started := s.now()
	if err := in.Prefs.Validate(); err != nil {
		return nil, err
	}
	prefs := in.Prefs.Normalized()

	city, locale, err := s.resolve(ctx, GenerateInput{PropertySlug: in.PropertySlug, Prefs: prefs})
	if err != nil {
		return nil, err
	}
	prefs.City = city

	skeleton, err := s.planner.Plan(ctx, prefs, locale, started)
	if err != nil {
		return nil, err
	}
	mode := planMode(skeleton)

	empty := 0
	for _, b := range skeleton.Blocks {
		if b.Primary == nil {
			empty++
		}
	}
	if len(skeleton.Blocks) == 0 || empty == len(skeleton.Blocks) {
		s.metrics.Itinerary("empty", mode, s.now().Sub(started), empty)
		s.log.Info("No strong matches",
			zap.String("city", city),
			zap.String("mode", mode),
			zap.Int("blocks", len(skeleton.Blocks)),
		)
		return nil, utils.ErrEmptyItinerary
	}

	var (
		narrative  Narrative
		travelTips = make([]string, len(skeleton.Blocks))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		narrative = s.narrative.Narrate(gctx, NarrativeInput{City: city, Prefs: prefs, Blocks: skeleton.Blocks})
		return nil
	})
	s.collectTravelTips(gctx, g, skeleton.Blocks, prefs.Transport, travelTips)
	_ = g.Wait()

	blocks := make([]planner.ItineraryBlock, len(skeleton.Blocks))
	for i, b := range skeleton.Blocks {
		text := narrative.For(b.ID)
		b.WhyThis = text.WhyThis
		b.Tips = mergeTips(travelTips[i], text.Tips)
		if b.Alternates == nil {
			b.Alternates = []planner.PlaceCandidate{}
		}
		blocks[i] = b
	}

	s.metrics.Itinerary("ok", mode, s.now().Sub(started), empty)
	return &planner.GeneratedItinerary{
		Version:     ItineraryVersion,
		ID:          uuid.NewString(),
		City:        city,
		GeneratedAt: started.UTC(),
		Prefs:       prefs,
		Headline:    narrative.Headline,
		Overview:    narrative.Overview,
		Blocks:      blocks,
		GeneralTips: narrative.GeneralTips,
		Disclaimers: narrative.Disclaimers,
	}, nil
}

// collectTravelTips estimates each leg between consecutive primaries.
// Failures only cost the tip.
func (s *ItineraryService) collectTravelTips(ctx context.Context, g *errgroup.Group, blocks []planner.ItineraryBlock, t planner.Transport, out []string) {
	if s.travel == nil {
		return
	}
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1].Primary, blocks[i].Primary
		if prev == nil || cur == nil {
			continue
		}
		i := i
		g.Go(func() error {
			est, err := s.travel.Estimate(ctx, prev.PlaceID, cur.PlaceID, t)
			if err != nil {
				s.log.Debug("Travel estimate failed", zap.String("block", blocks[i].ID), zap.Error(err))
				return nil
			}
			out[i] = TravelTip(est, t)
			return nil
		})
	}
}

// mergeTips puts the travel tip first and keeps at most three tips.
func mergeTips(travel string, tips []string) []string {
	out := make([]string, 0, maxBlockTips)
	if travel != "" {
		out = append(out, travel)
	}
	for _, t := range tips {
		if len(out) == maxBlockTips {
			break
		}
		out = append(out, t)
	}
	return out
}

func planMode(s planner.Skeleton) string {
	switch {
	case s.NowMode:
		return "now"
	case s.NightMode:
		return "night"
	default:
		return "day"
	}
}

func (s *ItineraryService) Swap(it planner.GeneratedItinerary, blockID string) (*planner.GeneratedItinerary, error) {
	out, err := planner.Swap(it, blockID)
	if err != nil {
		return nil, err
	}
	s.metrics.SwapInc()
	return &out, nil
}

func (s *ItineraryService) NarrateBlock(ctx context.Context, in BlockNarrativeInput) (BlockNarrative, error) {
	return s.narrative.NarrateBlock(ctx, in)
}
