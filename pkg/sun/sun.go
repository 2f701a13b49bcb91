// Package sun computes local sunset times for a coordinate.
package sun

import (
	"time"

	sunrise "github.com/nathan-osman/go-sunrise"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

// Source computes sunsets with the NOAA algorithm and reports them in a fixed location
type Source struct {
	loc *time.Location
}

// NewSource creates a Source reporting times in loc; nil means time.Local
func NewSource(loc *time.Location) *Source {
	if loc == nil {
		loc = time.Local
	}
	return &Source{loc: loc}
}

// SunsetFor returns the sunset for the calendar day of date at the given coordinate.
// The calendar day of the result may differ from date's; only its clock is meaningful.
func (s *Source) SunsetFor(latitude, longitude float64, date time.Time) (time.Time, error) {
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return time.Time{}, errors.SunsetUnavailablef("coordinate %.4f,%.4f out of range", latitude, longitude)
	}
	_, set := sunrise.SunriseSunset(latitude, longitude, date.Year(), date.Month(), date.Day())
	if set.IsZero() {
		return time.Time{}, errors.SunsetUnavailablef("no sunset at %.4f,%.4f on %s", latitude, longitude, date.Format(time.DateOnly))
	}
	return set.In(s.loc), nil
}
