package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayflo/internal/planner"
	"stayflo/internal/repositories"
	"stayflo/pkg/metrics"
	"stayflo/pkg/utils"
)

type poolSource struct {
	mu    sync.Mutex
	calls int
	n     int
}

func (s *poolSource) SearchText(_ context.Context, req planner.SearchRequest) ([]planner.PlaceCandidate, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	out := make([]planner.PlaceCandidate, s.n)
	for i := range out {
		lat, lng := 29.42+float64(i)*0.001, -98.49
		out[i] = planner.PlaceCandidate{
			PlaceID:          fmt.Sprintf("p-%d", i),
			Name:             fmt.Sprintf("Place %d", i),
			Rating:           f64(4.8 - float64(i)*0.01),
			UserRatingsTotal: intp(100),
			Types:            []string{fmt.Sprintf("t-%d", i)},
			Lat:              &lat,
			Lng:              &lng,
			OpenNow:          boolp(true),
		}
		out[i].Score = planner.ScorePlace(out[i].Rating, out[i].UserRatingsTotal)
	}
	return out, nil
}

func boolp(v bool) *bool { return &v }

type fakeTravel struct {
	fail map[string]bool
}

func (f fakeTravel) Estimate(_ context.Context, from, to string, _ planner.Transport) (*TravelEstimate, error) {
	if f.fail[to] {
		return nil, errors.New("no route")
	}
	return &TravelEstimate{DurationMinutes: 9, DistanceText: "2 mi"}, nil
}

type fakeNarrative struct {
	n   Narrative
	got NarrativeInput
}

func (f *fakeNarrative) Narrate(_ context.Context, in NarrativeInput) Narrative {
	f.got = in
	return f.n
}

func (f *fakeNarrative) NarrateBlock(context.Context, BlockNarrativeInput) (BlockNarrative, error) {
	return BlockNarrative{WhyThis: "ok", Tips: []string{}}, nil
}

func newTestItineraryService(t *testing.T, src planner.CandidateSource, narr NarrativeServiceInterface, travel TravelEstimator) *ItineraryService {
	t.Helper()
	props := NewPropertyService(repositories.NewMemoryPropertyRepository(repositories.DefaultProperties()...), nil, nil)
	clock := time.Date(2026, 6, 3, 8, 30, 0, 0, utils.DefaultLocation())
	return NewItineraryService(src, props, travel, narr, metrics.New(), nil).WithClock(func() time.Time { return clock })
}

func dayPrefs() planner.PreferenceInput {
	return planner.PreferenceInput{
		Duration:  planner.DurationHalfDay,
		Pace:      planner.PaceBalanced,
		Transport: planner.TransportDrive,
		Budget:    planner.Budget2,
		Vibes:     []string{"foodie", "foodie", "history"},
		PlanDay:   planner.PlanTomorrow,
	}
}

func TestGenerate_AssemblesItinerary(t *testing.T) {
	narr := &fakeNarrative{n: Narrative{
		Headline:    "H",
		Overview:    "O",
		Blocks:      map[string]BlockNarrative{"morning": {WhyThis: "Because.", Tips: []string{"t1", "t2", "t3"}}},
		GeneralTips: []string{"g1", "g2"},
		Disclaimers: []string{"d1"},
	}}
	svc := newTestItineraryService(t, &poolSource{n: 20}, narr, fakeTravel{})

	it, err := svc.Generate(context.Background(), GenerateInput{PropertySlug: "Lamar", Prefs: dayPrefs()})
	require.NoError(t, err)

	assert.Equal(t, ItineraryVersion, it.Version)
	_, err = uuid.Parse(it.ID)
	assert.NoError(t, err)
	assert.Equal(t, "San Antonio, TX", it.City)
	assert.Equal(t, "San Antonio, TX", it.Prefs.City)
	assert.Equal(t, []string{"foodie", "history"}, it.Prefs.Vibes)
	assert.Equal(t, "H", it.Headline)
	assert.Equal(t, []string{"g1", "g2"}, it.GeneralTips)
	require.Len(t, it.Blocks, 3)

	first := it.Blocks[0]
	assert.Equal(t, "9:00 AM", first.TimeLabel)
	assert.Equal(t, "Because.", first.WhyThis)
	assert.Equal(t, []string{"t1", "t2", "t3"}, first.Tips, "no travel tip before the first stop")

	second := it.Blocks[1]
	assert.Equal(t, DefaultWhyThis, second.WhyThis)
	assert.Equal(t, []string{"About 9 min drive from your last stop (2 mi)."}, second.Tips)

	assert.Len(t, narr.got.Blocks, 3)
	assert.Equal(t, "San Antonio, TX", narr.got.City)
}

func TestGenerate_TravelTipCapsNarrativeTips(t *testing.T) {
	narr := &fakeNarrative{n: Narrative{Blocks: map[string]BlockNarrative{
		"thing": {WhyThis: "w", Tips: []string{"a", "b", "c"}},
	}}}
	svc := newTestItineraryService(t, &poolSource{n: 20}, narr, fakeTravel{})
	it, err := svc.Generate(context.Background(), GenerateInput{PropertySlug: "gabriel", Prefs: dayPrefs()})
	require.NoError(t, err)
	tips := it.Blocks[1].Tips
	require.Len(t, tips, 3)
	assert.Contains(t, tips[0], "About 9 min")
	assert.Equal(t, []string{"a", "b"}, tips[1:])
}

func TestGenerate_TravelFailureOnlyDropsTip(t *testing.T) {
	svc := newTestItineraryService(t, &poolSource{n: 20}, &fakeNarrative{}, fakeTravel{fail: map[string]bool{"p-1": true, "p-2": true}})
	it, err := svc.Generate(context.Background(), GenerateInput{PropertySlug: "lamar", Prefs: dayPrefs()})
	require.NoError(t, err)
	for _, b := range it.Blocks {
		assert.LessOrEqual(t, len(b.Tips), 3)
		assert.NotNil(t, b.Tips)
	}
}

func TestGenerate_Errors(t *testing.T) {
	svc := newTestItineraryService(t, &poolSource{n: 0}, &fakeNarrative{}, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{PropertySlug: "lamar", Prefs: dayPrefs()})
	assert.ErrorIs(t, err, utils.ErrEmptyItinerary)

	_, err = svc.Generate(context.Background(), GenerateInput{PropertySlug: "nope", Prefs: dayPrefs()})
	assert.ErrorIs(t, err, utils.ErrPropertyNotFound)

	_, err = svc.Generate(context.Background(), GenerateInput{Prefs: dayPrefs()})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)

	bad := dayPrefs()
	bad.Budget = "$$$$$"
	_, err = svc.Generate(context.Background(), GenerateInput{PropertySlug: "lamar", Prefs: bad})
	assert.ErrorIs(t, err, utils.ErrInvalidInput)
}

func TestGenerate_OriginMode(t *testing.T) {
	src := &poolSource{n: 20}
	svc := newTestItineraryService(t, src, &fakeNarrative{}, nil)
	p := dayPrefs()
	p.Origin = &planner.LatLng{Lat: 40.7128, Lng: -74.006}

	it, err := svc.Generate(context.Background(), GenerateInput{Prefs: p})
	require.NoError(t, err)
	assert.Equal(t, originCityLabel, it.City)
	assert.Positive(t, src.calls)

	p.City = "Austin, TX"
	it, err = svc.Generate(context.Background(), GenerateInput{Prefs: p})
	require.NoError(t, err)
	assert.Equal(t, "Austin, TX", it.City)
}

func TestSwap_Service(t *testing.T) {
	svc := newTestItineraryService(t, &poolSource{n: 20}, &fakeNarrative{}, nil)
	it, err := svc.Generate(context.Background(), GenerateInput{PropertySlug: "lamar", Prefs: dayPrefs()})
	require.NoError(t, err)

	before := it.Blocks[0].Primary.PlaceID
	swapped, err := svc.Swap(*it, it.Blocks[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, before, swapped.Blocks[0].Primary.PlaceID)
	assert.Equal(t, before, it.Blocks[0].Primary.PlaceID, "input untouched")

	_, err = svc.Swap(*it, "missing")
	assert.ErrorIs(t, err, utils.ErrBlockNotFound)
}

func TestMergeTips(t *testing.T) {
	assert.Equal(t, []string{}, mergeTips("", nil))
	assert.Equal(t, []string{"x", "a", "b"}, mergeTips("x", []string{"a", "b", "c"}))
	assert.Equal(t, []string{"a", "b", "c"}, mergeTips("", []string{"a", "b", "c", "d"}))
}
