package planner

import "math"

const (
	// MaxBiasRadiusMeters is the provider's hard limit on a circular bias.
	MaxBiasRadiusMeters = 50_000
	minOriginRadius     = 5_000
)

// Bias is a circular search area handed to the candidate source.
type Bias struct {
	Key          string
	Center       LatLng
	RadiusMeters float64
}

// SanAntonioAreas is the built-in area list used when a property does not
// configure its own. The first entry is the primary center.
var SanAntonioAreas = []Area{
	{Key: "downtown", Lat: 29.4241, Lng: -98.4936, RadiusMeters: 50_000},
	{Key: "rim", Lat: 29.6027, Lng: -98.6153, RadiusMeters: 35_000},
	{Key: "stone_oak", Lat: 29.6499, Lng: -98.4730, RadiusMeters: 35_000},
	{Key: "boerne", Lat: 29.7947, Lng: -98.7319, RadiusMeters: 35_000},
	{Key: "new_braunfels", Lat: 29.7030, Lng: -98.1245, RadiusMeters: 35_000},
	{Key: "schertz", Lat: 29.5522, Lng: -98.2697, RadiusMeters: 35_000},
}

func clampRadius(r float64) float64 {
	if r <= 0 || r > MaxBiasRadiusMeters {
		return MaxBiasRadiusMeters
	}
	return r
}

// pickBiases returns one or two centers for a slot. With an origin the
// secondary point sits one preferred radius away on a seeded bearing.
// Without one, the primary area is paired with a seeded outskirt.
func pickBiases(origin *LatLng, areas []Area, t Transport, seed uint32) []Bias {
	if origin != nil {
		radiusKm := PreferredRadiusKm(t)
		r := clampRadius(math.Max(radiusKm*2*1000, minOriginRadius))
		second := offsetPoint(*origin, radiusKm, float64(seed%360))
		return []Bias{
			{Key: "origin", Center: *origin, RadiusMeters: r},
			{Key: "origin_offset", Center: second, RadiusMeters: r},
		}
	}
	if len(areas) == 0 {
		return nil
	}
	toBias := func(a Area) Bias {
		return Bias{Key: a.Key, Center: LatLng{Lat: a.Lat, Lng: a.Lng}, RadiusMeters: clampRadius(a.RadiusMeters)}
	}
	out := []Bias{toBias(areas[0])}
	if outskirts := areas[1:]; len(outskirts) > 0 {
		out = append(out, toBias(outskirts[int(seed%uint32(len(outskirts)))]))
	}
	return out
}
