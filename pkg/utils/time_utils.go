// utils/timeutil.go
package utils

import (
	"fmt"
	"time"

	// Civil-time math must not depend on the host having zoneinfo installed.
	_ "time/tzdata"
)

const DefaultTimezone = "America/Chicago"

var defaultLoc = func() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		panic(fmt.Sprintf("embedded tzdata missing %s: %v", DefaultTimezone, err))
	}
	return loc
}()

// LoadCivilLocation resolves an IANA zone name. Fixed offsets are never used
// as a fallback because they would drift across daylight saving changes.
func LoadCivilLocation(name string) (*time.Location, error) {
	if name == "" {
		return defaultLoc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q", ErrInvalidInput, name)
	}
	return loc, nil
}

func DefaultLocation() *time.Location { return defaultLoc }

// FormatTimeLabel renders "9:00 AM" in the given zone.
func FormatTimeLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("3:04 PM")
}

// FormatDayLabel renders the short weekday, e.g. "Mon".
func FormatDayLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Mon")
}

// HourKeyUTC truncates an instant to its UTC hour, "2006-01-02T15".
func HourKeyUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15")
}
