// Package timemath holds the clock arithmetic the scheduler is built on.
//
// All instants are wall-clock times in a single configured location. Adding a
// day uses AddDate, which keeps the wall clock across daylight saving changes;
// durations spanning a change are therefore off by the shift for that one night.
package timemath

import (
	"time"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

// SunsetSource returns the sunset for the calendar day of date.
// Only the hour and minute of the result are trusted.
type SunsetSource interface {
	SunsetFor(latitude, longitude float64, date time.Time) (time.Time, error)
}

// At returns hour:minute:00 on the calendar day of day, in day's location
func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// Passed reports whether now is strictly after moment
func Passed(now, moment time.Time) bool {
	return now.After(moment)
}

// DurationUntil returns the time from now until the next hour:minute.
// If today's hour:minute is strictly before now, tomorrow's is used, so the
// result is zero when now is exactly hour:minute and never negative.
func DurationUntil(hour, minute int, now time.Time) time.Duration {
	target := At(now, hour, minute)
	if Passed(now, target) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now)
}

// Normalize keeps the hour and minute of sunset and rebinds them to the
// calendar day of day, dropping seconds.
func Normalize(sunset, day time.Time) time.Time {
	clock := sunset.In(day.Location())
	return At(day, clock.Hour(), clock.Minute())
}

// Sunset computes offset-adjusted sunsets for one coordinate
type Sunset struct {
	source    SunsetSource
	latitude  float64
	longitude float64
	offset    time.Duration
	loc       *time.Location
	now       func() time.Time
}

// NewSunset creates a Sunset; a nil loc means time.Local
func NewSunset(source SunsetSource, latitude, longitude float64, offset time.Duration, loc *time.Location) *Sunset {
	if loc == nil {
		loc = time.Local
	}
	return &Sunset{
		source:    source,
		latitude:  latitude,
		longitude: longitude,
		offset:    offset,
		loc:       loc,
		now:       time.Now,
	}
}

// SetClock replaces the clock used when AdjustedFor is given a zero date
func (s *Sunset) SetClock(now func() time.Time) {
	s.now = now
}

// Offset returns the configured offset
func (s *Sunset) Offset() time.Duration {
	return s.offset
}

// AdjustedFor returns the sunset on date's calendar day plus the offset.
// A zero date means today.
func (s *Sunset) AdjustedFor(date time.Time) (time.Time, error) {
	if date.IsZero() {
		date = s.now()
	}
	day := date.In(s.loc)

	raw, err := s.source.SunsetFor(s.latitude, s.longitude, day)
	if err != nil {
		if errors.IsSunsetUnavailable(err) {
			return time.Time{}, err
		}
		return time.Time{}, errors.WrapErrorf(errors.ErrSunsetUnavailable, "%s: %v", day.Format(time.DateOnly), err)
	}
	if raw.IsZero() {
		return time.Time{}, errors.SunsetUnavailablef("no sunset on %s", day.Format(time.DateOnly))
	}
	return Normalize(raw, day).Add(s.offset), nil
}
