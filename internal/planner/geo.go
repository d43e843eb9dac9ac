package planner

import (
	"math"
	"strconv"
)

const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance.
func DistanceKm(a, b LatLng) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// offsetPoint moves p by distKm along bearingDeg using a flat-earth step,
// which is accurate enough for offsets of a few kilometers.
func offsetPoint(p LatLng, distKm, bearingDeg float64) LatLng {
	rad := bearingDeg * math.Pi / 180
	dLat := (distKm * math.Cos(rad)) / 111.32
	cosLat := math.Cos(p.Lat * math.Pi / 180)
	if math.Abs(cosLat) < 1e-6 {
		cosLat = 1e-6
	}
	dLng := (distKm * math.Sin(rad)) / (111.32 * cosLat)
	lat := math.Max(-90, math.Min(90, p.Lat+dLat))
	lng := p.Lng + dLng
	if lng > 180 {
		lng -= 360
	} else if lng < -180 {
		lng += 360
	}
	return LatLng{Lat: lat, Lng: lng}
}

func formatCoord(p LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 4, 64)
}
