package planner

import (
	"math"
	"sort"
	"strings"
	"time"
)

const (
	scoreReviewWeight = 5.0
	scoreRatingWeight = 10.0

	rotationWindow     = 6
	minPoolAfterFilter = 3
	penaltyFreeKm      = 0.5

	soonBefore = -30 * time.Minute
	soonAfter  = 180 * time.Minute
)

// ScorePlace rewards rating and review volume, rounded to 3 decimals.
// Missing values count as zero.
func ScorePlace(rating *float64, reviews *int) float64 {
	r, n := 0.0, 0
	if rating != nil {
		r = *rating
	}
	if reviews != nil && *reviews > 0 {
		n = *reviews
	}
	raw := r*scoreRatingWeight + math.Log10(float64(n)+1)*scoreReviewWeight
	return math.Round(raw*1000) / 1000
}

// MinRatingFor is the provider-side rating floor for a budget tier.
func MinRatingFor(b Budget) float64 {
	if b == Budget4 {
		return 4.4
	}
	return 4.2
}

// PreferredRadiusKm is how far a stop may be from the previous one before
// it falls into the "outside" bucket.
func PreferredRadiusKm(t Transport) float64 {
	switch t {
	case TransportWalk:
		return 3
	case TransportBike:
		return 8
	default:
		return 25
	}
}

// DistancePenaltyFactor is the score cost per kilometer past 0.5km.
func DistancePenaltyFactor(t Transport) float64 {
	switch t {
	case TransportWalk:
		return 2.8
	case TransportBike:
		return 1.8
	default:
		return 0.9
	}
}

func isSoon(now, at time.Time) bool {
	d := at.Sub(now)
	return d >= soonBefore && d <= soonAfter
}

func typeKey(p PlaceCandidate) string {
	if len(p.Types) == 0 {
		return ""
	}
	return strings.ToLower(p.Types[0])
}

// varietyRotate shifts the list by seed mod min(len, 6).
func varietyRotate(c []PlaceCandidate, seed uint32) []PlaceCandidate {
	if len(c) == 0 {
		return c
	}
	window := len(c)
	if window > rotationWindow {
		window = rotationWindow
	}
	return rotate(c, int(seed%uint32(window)))
}

// filterOpen keeps open candidates when at least three are open. Otherwise
// the whole pool is kept with open candidates moved to the front.
func filterOpen(c []PlaceCandidate) []PlaceCandidate {
	open := make([]PlaceCandidate, 0, len(c))
	closed := make([]PlaceCandidate, 0, len(c))
	for _, p := range c {
		if p.IsOpenNow() {
			open = append(open, p)
		} else {
			closed = append(closed, p)
		}
	}
	if len(open) >= minPoolAfterFilter {
		return open
	}
	return append(open, closed...)
}

// filterDiverse drops candidates whose primary type an earlier block already
// used, unless that leaves fewer than three. keepOpen forbids a result that
// loses every open candidate the pool had.
func filterDiverse(c []PlaceCandidate, usedTypes map[string]struct{}, keepOpen bool) []PlaceCandidate {
	out := make([]PlaceCandidate, 0, len(c))
	hadOpen, keptOpen := false, false
	for _, p := range c {
		if p.IsOpenNow() {
			hadOpen = true
		}
		k := typeKey(p)
		if _, used := usedTypes[k]; k != "" && used {
			continue
		}
		if p.IsOpenNow() {
			keptOpen = true
		}
		out = append(out, p)
	}
	if len(out) < minPoolAfterFilter {
		return c
	}
	if keepOpen && hadOpen && !keptOpen {
		return c
	}
	return out
}

type rankedCandidate struct {
	c        PlaceCandidate
	openRank int
	bucket   int
	adjusted float64
	km       float64
}

// rerankByDistance orders candidates by in-radius first, then outside, then
// unknown coordinates; within a bucket by distance-penalized score. When
// openFirst is set open candidates lead regardless of distance.
func rerankByDistance(c []PlaceCandidate, prev LatLng, t Transport, openFirst bool) []PlaceCandidate {
	radius := PreferredRadiusKm(t)
	factor := DistancePenaltyFactor(t)
	ranked := make([]rankedCandidate, len(c))
	for i, p := range c {
		r := rankedCandidate{c: p, bucket: 2, adjusted: p.Score, km: math.Inf(1)}
		if openFirst && !p.IsOpenNow() {
			r.openRank = 1
		}
		if coord, ok := p.Coord(); ok {
			r.km = DistanceKm(prev, coord)
			r.adjusted = p.Score - factor*math.Max(0, r.km-penaltyFreeKm)
			if r.km <= radius {
				r.bucket = 0
			} else {
				r.bucket = 1
			}
		}
		ranked[i] = r
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.openRank != b.openRank {
			return a.openRank < b.openRank
		}
		if a.bucket != b.bucket {
			return a.bucket < b.bucket
		}
		if a.adjusted != b.adjusted {
			return a.adjusted > b.adjusted
		}
		return a.km < b.km
	})
	out := make([]PlaceCandidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.c
	}
	return out
}

func dedupeByPlaceID(c []PlaceCandidate) []PlaceCandidate {
	seen := make(map[string]struct{}, len(c))
	out := make([]PlaceCandidate, 0, len(c))
	for _, p := range c {
		if p.PlaceID == "" {
			continue
		}
		if _, ok := seen[p.PlaceID]; ok {
			continue
		}
		seen[p.PlaceID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// selectionState is the itinerary-wide memory carried from slot to slot.
type selectionState struct {
	usedIDs   map[string]struct{}
	usedTypes map[string]struct{}
	prev      *LatLng
}

func newSelectionState() *selectionState {
	return &selectionState{
		usedIDs:   make(map[string]struct{}),
		usedTypes: make(map[string]struct{}),
	}
}

// choose reduces a slot's candidate pool to a primary and alternates and
// records the primary in the state.
func (s *selectionState) choose(pool []PlaceCandidate, slot SlotTemplate, prefs PreferenceInput, seed uint32, now time.Time) (*PlaceCandidate, []PlaceCandidate) {
	pool = varietyRotate(pool, seed)

	requireOpen := slot.RequireOpenNow && isSoon(now, slot.StartAt)
	if requireOpen {
		pool = filterOpen(pool)
	}
	pool = filterDiverse(pool, s.usedTypes, requireOpen)
	if s.prev != nil {
		pool = rerankByDistance(pool, *s.prev, prefs.Transport, requireOpen)
	}

	var primary *PlaceCandidate
	for i := range pool {
		if _, used := s.usedIDs[pool[i].PlaceID]; !used {
			p := pool[i]
			primary = &p
			break
		}
	}

	limit := 4
	if prefs.Pace == PacePacked {
		limit = 6
	}
	alternates := make([]PlaceCandidate, 0, limit)
	for _, p := range pool {
		if len(alternates) == limit {
			break
		}
		if primary != nil && p.PlaceID == primary.PlaceID {
			continue
		}
		if _, used := s.usedIDs[p.PlaceID]; used {
			continue
		}
		alternates = append(alternates, p)
	}

	if primary != nil {
		s.usedIDs[primary.PlaceID] = struct{}{}
		if k := typeKey(*primary); k != "" {
			s.usedTypes[k] = struct{}{}
		}
		if coord, ok := primary.Coord(); ok {
			s.prev = &coord
		}
	}
	return primary, alternates
}
