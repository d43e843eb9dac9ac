package planner

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stayflo/pkg/utils"
)

type Duration string

const (
	DurationHalfDay Duration = "half_day"
	DurationFullDay Duration = "full_day"
	DurationTwoDays Duration = "two_days"
)

type Pace string

const (
	PaceChill    Pace = "chill"
	PaceBalanced Pace = "balanced"
	PacePacked   Pace = "packed"
)

type Transport string

const (
	TransportWalk  Transport = "walk"
	TransportDrive Transport = "drive"
	TransportBike  Transport = "bike"
)

type Budget string

const (
	Budget1 Budget = "$"
	Budget2 Budget = "$$"
	Budget3 Budget = "$$$"
	Budget4 Budget = "$$$$"
)

type PlanDay string

const (
	PlanToday    PlanDay = "today"
	PlanTomorrow PlanDay = "tomorrow"
	PlanNow      PlanDay = "now"
)

type Category string

const (
	CategoryCoffee     Category = "coffee"
	CategoryBreakfast  Category = "breakfast"
	CategoryLunch      Category = "lunch"
	CategoryDinner     Category = "dinner"
	CategoryAttraction Category = "attraction"
	CategoryShopping   Category = "shopping"
	CategoryOutdoors   Category = "outdoors"
	CategoryNightlife  Category = "nightlife"
	CategoryRelax      Category = "relax"
)

const (
	MaxNotesRunes = 280
	MaxVibes      = 6
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PreferenceInput is the fully validated request handed to the engine.
type PreferenceInput struct {
	City       string    `json:"city"`
	Origin     *LatLng   `json:"origin,omitempty"`
	Duration   Duration  `json:"duration"`
	Pace       Pace      `json:"pace"`
	Transport  Transport `json:"transport"`
	Budget     Budget    `json:"budget"`
	Vibes      []string  `json:"vibes"`
	Notes      string    `json:"notes,omitempty"`
	PlanDay    PlanDay   `json:"planDay"`
	StartClock string    `json:"startTime,omitempty"`
}

// Validate rejects enum values outside their sets. An empty PlanDay is
// treated as today.
func (p PreferenceInput) Validate() error {
	switch p.Duration {
	case DurationHalfDay, DurationFullDay, DurationTwoDays:
	default:
		return fmt.Errorf("%w: duration %q", utils.ErrInvalidInput, p.Duration)
	}
	switch p.Pace {
	case PaceChill, PaceBalanced, PacePacked:
	default:
		return fmt.Errorf("%w: pace %q", utils.ErrInvalidInput, p.Pace)
	}
	switch p.Transport {
	case TransportWalk, TransportDrive, TransportBike:
	default:
		return fmt.Errorf("%w: transport %q", utils.ErrInvalidInput, p.Transport)
	}
	switch p.Budget {
	case Budget1, Budget2, Budget3, Budget4:
	default:
		return fmt.Errorf("%w: budget %q", utils.ErrInvalidInput, p.Budget)
	}
	switch p.PlanDay {
	case PlanToday, PlanTomorrow, PlanNow, "":
	default:
		return fmt.Errorf("%w: planDay %q", utils.ErrInvalidInput, p.PlanDay)
	}
	if p.StartClock != "" {
		if _, _, err := ParseClock(p.StartClock); err != nil {
			return err
		}
	}
	if p.Origin != nil {
		if p.Origin.Lat < -90 || p.Origin.Lat > 90 || p.Origin.Lng < -180 || p.Origin.Lng > 180 {
			return fmt.Errorf("%w: origin out of range", utils.ErrInvalidInput)
		}
	}
	return nil
}

// Normalized returns a copy with vibes trimmed and deduplicated, notes
// truncated and plan day defaulted.
func (p PreferenceInput) Normalized() PreferenceInput {
	out := p
	if out.PlanDay == "" {
		out.PlanDay = PlanToday
	}
	seen := make(map[string]struct{}, len(p.Vibes))
	vibes := make([]string, 0, len(p.Vibes))
	for _, v := range p.Vibes {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		vibes = append(vibes, v)
		if len(vibes) == MaxVibes {
			break
		}
	}
	out.Vibes = vibes
	out.Notes = truncateRunes(strings.TrimSpace(p.Notes), MaxNotesRunes)
	out.StartClock = strings.TrimSpace(p.StartClock)
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// PlaceCandidate is one point-of-interest result. PlaceID is the only
// deduplication key across an itinerary.
type PlaceCandidate struct {
	PlaceID             string   `json:"placeId"`
	Name                string   `json:"name"`
	Address             string   `json:"address,omitempty"`
	MapsURI             string   `json:"googleMapsUri,omitempty"`
	Lat                 *float64 `json:"lat,omitempty"`
	Lng                 *float64 `json:"lng,omitempty"`
	Rating              *float64 `json:"rating,omitempty"`
	UserRatingsTotal    *int     `json:"userRatingsTotal,omitempty"`
	PriceLevel          *int     `json:"priceLevel,omitempty"`
	Types               []string `json:"types,omitempty"`
	PhotoRef            string   `json:"photoRef,omitempty"`
	Score               float64  `json:"score"`
	OpenNow             *bool    `json:"openNow,omitempty"`
	WeekdayDescriptions []string `json:"weekdayDescriptions,omitempty"`
}

// Coord returns the candidate's coordinate when both parts are known.
func (p PlaceCandidate) Coord() (LatLng, bool) {
	if p.Lat == nil || p.Lng == nil {
		return LatLng{}, false
	}
	return LatLng{Lat: *p.Lat, Lng: *p.Lng}, true
}

func (p PlaceCandidate) IsOpenNow() bool {
	return p.OpenNow != nil && *p.OpenNow
}

// SlotTemplate is one time block before candidates are attached.
type SlotTemplate struct {
	ID             string
	Title          string
	Category       Category
	Queries        []string
	StartAt        time.Time
	RequireOpenNow bool
}

type ItineraryBlock struct {
	ID         string           `json:"id"`
	TimeLabel  string           `json:"timeLabel"`
	Title      string           `json:"title"`
	Category   Category         `json:"category"`
	Primary    *PlaceCandidate  `json:"primary"`
	Alternates []PlaceCandidate `json:"alternates"`
	WhyThis    string           `json:"whyThis"`
	Tips       []string         `json:"tips"`
}

type GeneratedItinerary struct {
	Version     int              `json:"version"`
	ID          string           `json:"id"`
	City        string           `json:"city"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Prefs       PreferenceInput  `json:"prefs"`
	Headline    string           `json:"headline"`
	Overview    string           `json:"overview"`
	Blocks      []ItineraryBlock `json:"blocks"`
	GeneralTips []string         `json:"generalTips"`
	Disclaimers []string         `json:"disclaimers"`
}

// Area is a named search center. The first area of a locale is the
// primary center, the rest rotate as outskirts.
type Area struct {
	Key          string
	Lat          float64
	Lng          float64
	RadiusMeters float64
}

// Locale carries everything location specific a single plan needs.
type Locale struct {
	SearchCity string
	Location   *time.Location
	Areas      []Area
	AreaHints  []string
}
