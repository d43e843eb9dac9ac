package planner

import (
	"hash/fnv"
	"strings"
	"time"

	"stayflo/pkg/utils"
)

// hash32 mixes the parts with FNV-1a. A unit separator goes between parts so
// ("ab","c") and ("a","bc") do not collide.
func hash32(parts ...string) uint32 {
	h := fnv.New32a()
	for i, p := range parts {
		if i > 0 {
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte(p))
	}
	return h.Sum32()
}

// slotSeed keys variety on the slot, the whole preference signature and the
// current UTC hour. Same request in the same hour gives the same seed.
func slotSeed(slotID string, p PreferenceInput, now time.Time) uint32 {
	origin := ""
	if p.Origin != nil {
		origin = formatCoord(*p.Origin)
	}
	return hash32(
		slotID,
		p.City,
		origin,
		string(p.Duration),
		string(p.Pace),
		string(p.Budget),
		string(p.Transport),
		strings.Join(p.Vibes, ","),
		p.Notes,
		string(p.PlanDay),
		p.StartClock,
		utils.HourKeyUTC(now),
	)
}

func rotate[T any](items []T, offset int) []T {
	n := len(items)
	if n == 0 {
		return items
	}
	o := ((offset % n) + n) % n
	out := make([]T, 0, n)
	out = append(out, items[o:]...)
	return append(out, items[:o]...)
}
