package planner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"stayflo/pkg/utils"
)

const (
	// LateHour is the civil hour at which a "today" plan switches to night mode.
	LateHour = 20

	tomorrowStartHour = 9
)

// ParseClock reads a 24h "HH:MM" civil clock time.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: start time %q must be HH:MM", utils.ErrInvalidInput, s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: start time %q has an invalid hour", utils.ErrInvalidInput, s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: start time %q has an invalid minute", utils.ErrInvalidInput, s)
	}
	return hour, minute, nil
}

// Resolution is the concrete start of a plan.
type Resolution struct {
	Start     time.Time
	NightMode bool
	NowMode   bool
}

// ResolveStart turns a plan day and optional clock time into an instant in
// loc. All calendar math goes through time.Date in loc so daylight saving
// transitions never shift the civil hour.
func ResolveStart(day PlanDay, clock string, now time.Time, loc *time.Location) (Resolution, error) {
	if loc == nil {
		loc = utils.DefaultLocation()
	}
	local := now.In(loc)

	hasClock := strings.TrimSpace(clock) != ""
	var hh, mm int
	if hasClock {
		var err error
		if hh, mm, err = ParseClock(clock); err != nil {
			return Resolution{}, err
		}
	}

	switch day {
	case PlanNow:
		return Resolution{Start: now, NowMode: true}, nil

	case PlanTomorrow:
		if !hasClock {
			hh, mm = tomorrowStartHour, 0
		}
		y, m, d := local.Date()
		return Resolution{Start: time.Date(y, m, d+1, hh, mm, 0, 0, loc)}, nil

	case PlanToday, "":
		if !hasClock {
			return Resolution{Start: now, NightMode: local.Hour() >= LateHour}, nil
		}
		y, m, d := local.Date()
		start := time.Date(y, m, d, hh, mm, 0, 0, loc)
		if start.Before(now) {
			start = now
		}
		return Resolution{Start: start}, nil

	default:
		return Resolution{}, fmt.Errorf("%w: planDay %q", utils.ErrInvalidInput, day)
	}
}
