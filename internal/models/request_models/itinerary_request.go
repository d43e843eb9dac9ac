package request_models

import (
	"strings"

	"stayflo/internal/planner"
)

type OriginRequest struct {
	Lat float64 `json:"lat" binding:"min=-90,max=90"`
	Lng float64 `json:"lng" binding:"min=-180,max=180"`
}

// GenerateItineraryRequest needs either a property slug or an origin.
type GenerateItineraryRequest struct {
	Property  string         `json:"property" binding:"omitempty,max=64"`
	City      string         `json:"city" binding:"omitempty,max=120"`
	Origin    *OriginRequest `json:"origin"`
	Duration  string         `json:"duration" binding:"required,oneof=half_day full_day two_days"`
	Pace      string         `json:"pace" binding:"required,oneof=chill balanced packed"`
	Transport string         `json:"transport" binding:"required,oneof=walk drive bike"`
	Budget    string         `json:"budget" binding:"required,oneof=$ $$ $$$ $$$$"`
	Vibes     []string       `json:"vibes" binding:"required,min=1"`
	Notes     string         `json:"notes"`
	PlanDay   string         `json:"planDay" binding:"omitempty,oneof=today tomorrow now"`
	StartTime string         `json:"startTime" binding:"omitempty,hhmm"`
}

func (r GenerateItineraryRequest) ToPreferences() planner.PreferenceInput {
	p := planner.PreferenceInput{
		City:       strings.TrimSpace(r.City),
		Duration:   planner.Duration(r.Duration),
		Pace:       planner.Pace(r.Pace),
		Transport:  planner.Transport(r.Transport),
		Budget:     planner.Budget(r.Budget),
		Vibes:      r.Vibes,
		Notes:      r.Notes,
		PlanDay:    planner.PlanDay(r.PlanDay),
		StartClock: r.StartTime,
	}
	if r.Origin != nil {
		p.Origin = &planner.LatLng{Lat: r.Origin.Lat, Lng: r.Origin.Lng}
	}
	return p
}

type SwapBlockRequest struct {
	Itinerary planner.GeneratedItinerary `json:"itinerary"`
	BlockID   string                     `json:"blockId" binding:"required"`
}

type NarrateBlockInfo struct {
	ID        string           `json:"id" binding:"required"`
	Title     string           `json:"title" binding:"required"`
	Category  planner.Category `json:"category" binding:"required,oneof=coffee breakfast lunch dinner attraction shopping outdoors nightlife relax"`
	TimeLabel string           `json:"timeLabel"`
}

type NarrateBlockRequest struct {
	City  string                  `json:"city" binding:"required"`
	Prefs planner.PreferenceInput `json:"prefs"`
	Block NarrateBlockInfo        `json:"block"`
	Place planner.PlaceCandidate  `json:"place"`
}
