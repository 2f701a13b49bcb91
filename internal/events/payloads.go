package events

import "time"

// Resolved is the payload of PlugResolved
type Resolved struct {
	Alias string `json:"alias,omitempty"`
	Host  string `json:"host"`
}

// StateApplied is the payload of PlugStateApplied
type StateApplied struct {
	Alias   string    `json:"alias,omitempty"`
	Host    string    `json:"host"`
	State   string    `json:"state"`
	RelayOn *bool     `json:"relay_on,omitempty"`
	At      time.Time `json:"at"`
}

// ApplyFailed is the payload of PlugApplyFailed
type ApplyFailed struct {
	Alias    string    `json:"alias,omitempty"`
	Host     string    `json:"host"`
	State    string    `json:"state"`
	Attempts int       `json:"attempts"`
	Error    string    `json:"error"`
	At       time.Time `json:"at"`
}

// Scheduled is the payload of TransitionScheduled
type Scheduled struct {
	State       string    `json:"state"`
	At          time.Time `json:"at"`
	WaitSeconds float64   `json:"wait_seconds"`
	Fallback    bool      `json:"fallback,omitempty"`
}

// Fallback is the payload of SunsetFallback
type Fallback struct {
	Date   string    `json:"date"`
	Sunset time.Time `json:"sunset"`
	Error  string    `json:"error"`
}
