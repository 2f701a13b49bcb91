// Package schedule drives a single plug ON at sunset and OFF at a fixed clock time.
package schedule

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jmylchreest/plugsunset/internal/events"
	"github.com/jmylchreest/plugsunset/internal/timemath"
)

// PlugState is the relay state the schedule wants the plug in
type PlugState int

const (
	Off PlugState = iota
	On
)

func (s PlugState) String() string {
	if s == On {
		return "ON"
	}
	return "OFF"
}

// Toggle returns the opposite state
func (s PlugState) Toggle() PlugState {
	if s == On {
		return Off
	}
	return On
}

// Device is the plug being driven
type Device interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	Refresh(ctx context.Context) (bool, error)
}

// SunsetCalculator returns the offset-adjusted sunset on the calendar day of date
type SunsetCalculator interface {
	AdjustedFor(date time.Time) (time.Time, error)
}

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures a Loop. Zero values fall back to the defaults noted.
type Options struct {
	Alias     string
	Host      string
	OffHour   int
	OffMinute int

	// ApplyRetries is how many times a failed relay command is retried
	ApplyRetries int
	// RetryInterval is the first backoff delay, 2s by default
	RetryInterval time.Duration

	Now    func() time.Time // time.Now
	Sleep  Sleeper          // Sleep
	Events events.Publisher // discarded
	Logger *slog.Logger     // slog.Default()
}

// Transition is the next planned state change
type Transition struct {
	State PlugState
	At    time.Time
	Wait  time.Duration

	// Fallback is set when At reuses the last known sunset
	Fallback bool
}

// Loop alternates the plug between ON and OFF forever
type Loop struct {
	device Device
	sunset SunsetCalculator
	opts   Options
	logger *slog.Logger

	state      PlugState
	lastSunset time.Time
}

// New creates a Loop
func New(device Device, sunset SunsetCalculator, opts Options) *Loop {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 2 * time.Second
	}
	if opts.ApplyRetries < 0 {
		opts.ApplyRetries = 0
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		device: device,
		sunset: sunset,
		opts:   opts,
		logger: logger.With("alias", opts.Alias, "host", opts.Host),
	}
}

// State returns the state most recently applied, or decided at startup
func (l *Loop) State() PlugState {
	return l.state
}

// InitialState decides what the plug should be right now. The plug is ON
// strictly between today's adjusted sunset and the following off time.
func (l *Loop) InitialState() (PlugState, error) {
	t := l.opts.Now()
	ss, err := l.sunset.AdjustedFor(t)
	if err != nil {
		return Off, err
	}
	l.lastSunset = ss

	ot := timemath.At(t, l.opts.OffHour, l.opts.OffMinute)
	if ss.After(ot) {
		ot = ot.AddDate(0, 0, 1)
	}
	if ss.Before(t) && t.Before(ot) {
		return On, nil
	}
	return Off, nil
}

// Next plans the transition that follows state.
func (l *Loop) Next(state PlugState) Transition {
	t := l.opts.Now()
	if state == On {
		wait := timemath.DurationUntil(l.opts.OffHour, l.opts.OffMinute, t)
		return Transition{State: Off, At: t.Add(wait), Wait: wait}
	}

	ss, fallback := l.sunsetFor(t)
	if timemath.Passed(t, ss) {
		ss, fallback = l.sunsetFor(t.AddDate(0, 0, 1))
	}
	// ss carries its calendar day, so the wait lands on tomorrow's sunset
	// even when tomorrow's clock is later than now.
	wait := ss.Sub(t)
	return Transition{State: On, At: ss, Wait: wait, Fallback: fallback}
}

// Run decides the initial state then alternates until ctx is done. A sunset
// failure at startup is returned; later ones reuse the last known sunset.
func (l *Loop) Run(ctx context.Context) error {
	state, err := l.InitialState()
	if err != nil {
		return err
	}
	l.state = state
	l.logger.Info("Schedule starting", "state", state, "sunset", l.lastSunset.Format("15:04"))

	for {
		if err := l.apply(ctx, l.state); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		next := l.Next(l.state)
		l.logger.Info("Next transition scheduled", "state", next.State, "at", next.At.Format(time.DateTime), "wait", next.Wait.Round(time.Second))
		l.publish(events.TransitionScheduled, events.Scheduled{
			State:       next.State.String(),
			At:          next.At,
			WaitSeconds: next.Wait.Seconds(),
			Fallback:    next.Fallback,
		})

		if err := l.opts.Sleep(ctx, next.Wait); err != nil {
			return err
		}
		l.state = next.State
	}
}

// sunsetFor falls back to the last good sunset's clock when the calculator fails
func (l *Loop) sunsetFor(day time.Time) (time.Time, bool) {
	ss, err := l.sunset.AdjustedFor(day)
	if err == nil {
		l.lastSunset = ss
		return ss, false
	}

	fallback := timemath.Normalize(l.lastSunset, day)
	l.logger.Warn("Sunset unavailable, reusing last known time", "date", day.Format(time.DateOnly), "sunset", fallback.Format("15:04"), "error", err)
	l.publish(events.SunsetFallback, events.Fallback{
		Date:   day.Format(time.DateOnly),
		Sunset: fallback,
		Error:  err.Error(),
	})
	return fallback, true
}

// apply commands the plug with retries, then reads back its relay state
func (l *Loop) apply(ctx context.Context, state PlugState) error {
	attempts := 0
	op := func() error {
		attempts++
		if state == On {
			return l.device.TurnOn(ctx)
		}
		return l.device.TurnOff(ctx)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.opts.RetryInterval
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(l.opts.ApplyRetries)), ctx)

	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		l.logger.Warn("Plug command failed, retrying", "state", state, "attempt", attempts, "retry_in", wait, "error", err)
	})
	if err != nil {
		l.logger.Error("Plug command failed, keeping schedule", "state", state, "attempts", attempts, "error", err)
		l.publish(events.PlugApplyFailed, events.ApplyFailed{
			Alias:    l.opts.Alias,
			Host:     l.opts.Host,
			State:    state.String(),
			Attempts: attempts,
			Error:    err.Error(),
			At:       l.opts.Now(),
		})
		return err
	}

	applied := events.StateApplied{
		Alias: l.opts.Alias,
		Host:  l.opts.Host,
		State: state.String(),
		At:    l.opts.Now(),
	}
	on, err := l.device.Refresh(ctx)
	if err != nil {
		l.logger.Warn("Could not read back plug state", "error", err)
	} else {
		applied.RelayOn = &on
		l.logger.Info("Plug state applied", "state", state, "relay_on", on)
	}
	l.publish(events.PlugStateApplied, applied)
	return nil
}

func (l *Loop) publish(t events.EventType, data any) {
	if l.opts.Events == nil {
		return
	}
	l.opts.Events.Publish(events.NewEventAt(t, data, l.opts.Now()))
}
