// Package status keeps a read-only snapshot of scheduler activity for the API.
package status

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/plugsunset/internal/events"
)

// Snapshot is the current view of the plug and its schedule
type Snapshot struct {
	Alias          string     `json:"alias,omitempty" doc:"Configured plug alias"`
	Host           string     `json:"host,omitempty" doc:"Resolved plug address"`
	State          string     `json:"state,omitempty" enum:"ON,OFF" doc:"Last state the scheduler applied"`
	RelayOn        *bool      `json:"relay_on,omitempty" doc:"Relay state read back from the plug"`
	AppliedAt      *time.Time `json:"applied_at,omitempty"`
	NextState      string     `json:"next_state,omitempty" enum:"ON,OFF"`
	NextAt         *time.Time `json:"next_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	LastErrorAt    *time.Time `json:"last_error_at,omitempty"`
	Failures       int        `json:"failures" doc:"Relay commands that exhausted their retries since start"`
	SunsetFallback bool       `json:"sunset_fallback" doc:"Whether the next ON time reuses the last known sunset"`
	StartedAt      time.Time  `json:"started_at"`
}

// Tracker folds bus events into a Snapshot
type Tracker struct {
	mu     sync.RWMutex
	snap   Snapshot
	logger *slog.Logger
}

// NewTracker creates a Tracker
func NewTracker(alias string, startedAt time.Time, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		snap:   Snapshot{Alias: alias, StartedAt: startedAt},
		logger: logger,
	}
}

// Attach subscribes the tracker to bus and returns the unsubscribe function
func (t *Tracker) Attach(bus *events.Bus) func() {
	return bus.Subscribe(t.Handle)
}

// Handle applies a single event
func (t *Tracker) Handle(e events.Event) {
	switch e.Type {
	case events.PlugResolved:
		var p events.Resolved
		if !t.decode(e, &p) {
			return
		}
		t.update(func(s *Snapshot) {
			s.Host = p.Host
			if p.Alias != "" {
				s.Alias = p.Alias
			}
		})

	case events.PlugStateApplied:
		var p events.StateApplied
		if !t.decode(e, &p) {
			return
		}
		t.update(func(s *Snapshot) {
			s.Host = p.Host
			s.State = p.State
			s.RelayOn = p.RelayOn
			s.AppliedAt = &p.At
			s.LastError = ""
			s.LastErrorAt = nil
		})

	case events.PlugApplyFailed:
		var p events.ApplyFailed
		if !t.decode(e, &p) {
			return
		}
		t.update(func(s *Snapshot) {
			s.LastError = p.Error
			s.LastErrorAt = &p.At
			s.Failures++
		})

	case events.TransitionScheduled:
		var p events.Scheduled
		if !t.decode(e, &p) {
			return
		}
		t.update(func(s *Snapshot) {
			s.NextState = p.State
			s.NextAt = &p.At
			s.SunsetFallback = p.Fallback
		})
	}
}

// Snapshot returns a copy of the current state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

func (t *Tracker) update(fn func(*Snapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.snap)
}

func (t *Tracker) decode(e events.Event, v any) bool {
	if err := e.Decode(v); err != nil {
		t.logger.Warn("Dropping malformed event", "type", e.Type, "error", err)
		return false
	}
	return true
}
