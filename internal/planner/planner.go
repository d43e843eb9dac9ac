package planner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stayflo/pkg/utils"
)

const (
	// MaxResultsPerSearch is sent to the provider on every query.
	MaxResultsPerSearch = 16
	// EnoughCandidates stops querying further variants for a slot.
	EnoughCandidates = 12
)

// SearchRequest is one text search against a candidate source.
type SearchRequest struct {
	TextQuery  string
	Bias       *Bias
	MinRating  float64
	MaxResults int
}

// CandidateSource looks up scored point-of-interest candidates. Errors are
// treated as zero results for that query.
type CandidateSource interface {
	SearchText(ctx context.Context, req SearchRequest) ([]PlaceCandidate, error)
}

// Skeleton is the narrative-free result of planning.
type Skeleton struct {
	Start     time.Time
	NightMode bool
	NowMode   bool
	Blocks    []ItineraryBlock
}

type Planner struct {
	source CandidateSource
	log    *zap.Logger
}

func New(source CandidateSource, log *zap.Logger) *Planner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Planner{source: source, log: log}
}

// Plan builds the block skeleton for prefs. now is the only clock the
// engine reads. A slot with no usable candidate yields a nil primary.
func (p *Planner) Plan(ctx context.Context, prefs PreferenceInput, locale Locale, now time.Time) (Skeleton, error) {
	if err := prefs.Validate(); err != nil {
		return Skeleton{}, err
	}
	prefs = prefs.Normalized()

	loc := locale.Location
	if loc == nil {
		loc = utils.DefaultLocation()
	}

	res, err := ResolveStart(prefs.PlanDay, prefs.StartClock, now, loc)
	if err != nil {
		return Skeleton{}, err
	}

	signals := NewSignalExtractor(locale.AreaHints).Extract(prefs.Notes, prefs.Vibes)
	slots := NewSlotBuilder(prefs, signals, res, locale.SearchCity, loc).Build()

	minRating := MinRatingFor(prefs.Budget)
	state := newSelectionState()
	blocks := make([]ItineraryBlock, 0, len(slots))

	for _, slot := range slots {
		if err := ctx.Err(); err != nil {
			return Skeleton{}, err
		}
		seed := slotSeed(slot.ID, prefs, now)
		biases := pickBiases(prefs.Origin, locale.Areas, prefs.Transport, seed)

		pool := p.gather(ctx, slot, biases, minRating)
		primary, alternates := state.choose(pool, slot, prefs, seed, now)

		p.log.Debug("Slot planned",
			zap.String("slot", slot.ID),
			zap.Int("candidates", len(pool)),
			zap.Bool("has_primary", primary != nil),
			zap.Int("alternates", len(alternates)),
		)

		blocks = append(blocks, ItineraryBlock{
			ID:         slot.ID,
			TimeLabel:  timeLabel(slot.StartAt, loc, prefs.Duration),
			Title:      slot.Title,
			Category:   slot.Category,
			Primary:    primary,
			Alternates: alternates,
			Tips:       []string{},
		})
	}

	return Skeleton{Start: res.Start, NightMode: res.NightMode, NowMode: res.NowMode, Blocks: blocks}, nil
}

// Slots exposes the template stage on its own.
func Slots(prefs PreferenceInput, locale Locale, now time.Time) ([]SlotTemplate, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	prefs = prefs.Normalized()
	loc := locale.Location
	if loc == nil {
		loc = utils.DefaultLocation()
	}
	res, err := ResolveStart(prefs.PlanDay, prefs.StartClock, now, loc)
	if err != nil {
		return nil, err
	}
	sig := NewSignalExtractor(locale.AreaHints).Extract(prefs.Notes, prefs.Vibes)
	return NewSlotBuilder(prefs, sig, res, locale.SearchCity, loc).Build(), nil
}

// gather runs the slot's queries in order. Each query hits every bias
// concurrently, results are merged in bias order so the outcome does not
// depend on which call returns first.
func (p *Planner) gather(ctx context.Context, slot SlotTemplate, biases []Bias, minRating float64) []PlaceCandidate {
	var pool []PlaceCandidate
	targets := make([]*Bias, 0, len(biases))
	for i := range biases {
		targets = append(targets, &biases[i])
	}
	if len(targets) == 0 {
		targets = append(targets, nil)
	}

	for _, q := range slot.Queries {
		results := make([][]PlaceCandidate, len(targets))
		var g errgroup.Group
		for i, b := range targets {
			i, b := i, b
			g.Go(func() error {
				found, err := p.source.SearchText(ctx, SearchRequest{
					TextQuery:  q,
					Bias:       b,
					MinRating:  minRating,
					MaxResults: MaxResultsPerSearch,
				})
				if err != nil {
					p.log.Warn("Candidate search failed",
						zap.String("slot", slot.ID),
						zap.String("query", q),
						zap.Error(err),
					)
					return nil
				}
				results[i] = found
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results {
			pool = dedupeByPlaceID(append(pool, r...))
		}
		if len(pool) >= EnoughCandidates {
			break
		}
	}
	return pool
}

func timeLabel(at time.Time, loc *time.Location, d Duration) string {
	label := utils.FormatTimeLabel(at, loc)
	if d == DurationTwoDays {
		return utils.FormatDayLabel(at, loc) + " • " + label
	}
	return label
}
