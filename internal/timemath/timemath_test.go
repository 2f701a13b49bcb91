package timemath

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

var pst = time.FixedZone("PST", -8*3600)

func at(day, hour, minute, second int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, second, 0, pst)
}

func TestDurationUntil(t *testing.T) {
	tests := []struct {
		name   string
		hour   int
		minute int
		now    time.Time
		want   time.Duration
	}{
		{"later today", 17, 57, at(15, 12, 0, 0), 5*time.Hour + 57*time.Minute},
		{"exactly now", 17, 57, at(15, 17, 57, 0), 0},
		{"one second past rolls to tomorrow", 17, 57, at(15, 17, 57, 1), 24*time.Hour - time.Second},
		{"midnight crossing", 0, 5, at(15, 20, 0, 0), 4*time.Hour + 5*time.Minute},
		{"just before target", 0, 5, at(16, 0, 4, 30), 30 * time.Second},
		{"end of month", 0, 5, time.Date(2024, time.January, 31, 23, 0, 0, 0, pst), time.Hour + 5*time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DurationUntil(tt.hour, tt.minute, tt.now)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, time.Duration(0))
			assert.Less(t, got, 24*time.Hour)
		})
	}
}

func TestDurationUntilAlwaysInRange(t *testing.T) {
	now := at(15, 0, 0, 0)
	for minute := 0; minute < 24*60; minute += 7 {
		for _, offset := range []time.Duration{0, 13 * time.Second, 3*time.Hour + 59*time.Second} {
			n := now.Add(offset)
			d := DurationUntil(minute/60, minute%60, n)
			assert.GreaterOrEqual(t, d, time.Duration(0))
			assert.Less(t, d, 24*time.Hour)
			target := n.Add(d)
			assert.Equal(t, minute/60, target.Hour())
			assert.Equal(t, minute%60, target.Minute())
			assert.Zero(t, target.Second())
		}
	}
}

func TestPassed(t *testing.T) {
	moment := at(15, 17, 57, 0)
	assert.False(t, Passed(moment, moment))
	assert.False(t, Passed(moment.Add(-time.Second), moment))
	assert.True(t, Passed(moment.Add(time.Nanosecond), moment))
}

func TestNormalize(t *testing.T) {
	// a source answering with the wrong calendar day and stray seconds
	raw := time.Date(2023, time.March, 2, 18, 2, 41, 0, pst)
	got := Normalize(raw, at(15, 9, 30, 0))
	assert.Equal(t, at(15, 18, 2, 0), got)

	// a source answering in UTC is read in the day's location
	utc := time.Date(2024, time.January, 16, 2, 2, 0, 0, time.UTC)
	got = Normalize(utc, at(15, 9, 30, 0))
	assert.Equal(t, at(15, 18, 2, 0), got)
}

// stubSource returns a fixed clock on a deliberately wrong date
type stubSource struct {
	hour, minute int
	err          error
	requested    []time.Time
}

func (s *stubSource) SunsetFor(_, _ float64, date time.Time) (time.Time, error) {
	s.requested = append(s.requested, date)
	if s.err != nil {
		return time.Time{}, s.err
	}
	return time.Date(1999, time.July, 4, s.hour, s.minute, 59, 0, date.Location()), nil
}

func TestSunsetAdjustedFor(t *testing.T) {
	src := &stubSource{hour: 18, minute: 2}
	s := NewSunset(src, 33.0, -117.3, -5*time.Minute, pst)

	got, err := s.AdjustedFor(at(15, 20, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, at(15, 17, 57, 0), got)

	got, err = s.AdjustedFor(at(31, 1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, at(31, 17, 57, 0), got)

	require.Len(t, src.requested, 2)
	assert.Equal(t, 31, src.requested[1].Day())
}

func TestSunsetAdjustedForOffsets(t *testing.T) {
	tests := []struct {
		offset time.Duration
		want   time.Time
	}{
		{0, at(15, 18, 2, 0)},
		{30 * time.Minute, at(15, 18, 32, 0)},
		{-180 * time.Minute, at(15, 15, 2, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.offset.String(), func(t *testing.T) {
			s := NewSunset(&stubSource{hour: 18, minute: 2}, 0, 0, tt.offset, pst)
			got, err := s.AdjustedFor(at(15, 0, 0, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, s.Offset())
		})
	}
}

func TestSunsetAdjustedForDefaultsToToday(t *testing.T) {
	s := NewSunset(&stubSource{hour: 18, minute: 2}, 0, 0, -5*time.Minute, pst)
	s.SetClock(func() time.Time { return at(20, 8, 0, 0) })

	got, err := s.AdjustedFor(time.Time{})
	require.NoError(t, err)
	assert.Equal(t, at(20, 17, 57, 0), got)
}

func TestSunsetAdjustedForErrors(t *testing.T) {
	t.Run("plain error is wrapped", func(t *testing.T) {
		s := NewSunset(&stubSource{err: fmt.Errorf("boom")}, 0, 0, 0, pst)
		_, err := s.AdjustedFor(at(15, 0, 0, 0))
		require.Error(t, err)
		assert.True(t, errors.IsSunsetUnavailable(err))
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("typed error passes through", func(t *testing.T) {
		src := &stubSource{err: errors.SunsetUnavailablef("polar night")}
		s := NewSunset(src, 89, 0, 0, pst)
		_, err := s.AdjustedFor(at(15, 0, 0, 0))
		assert.True(t, errors.IsSunsetUnavailable(err))
	})
}
