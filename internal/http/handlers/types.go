// Package handlers provides typed Huma request/response structs and handler
// implementations for the plugsunset HTTP API.
package handlers

import (
	"context"

	"github.com/jmylchreest/plugsunset/internal/status"
)

// StatusProvider is anything that can report the scheduler's current view.
type StatusProvider interface {
	Snapshot() status.Snapshot
}

// StatusHandlers defines the status endpoint.
type StatusHandlers interface {
	GetStatus(ctx context.Context, input *StatusInput) (*StatusOutput, error)
}

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Version   string `json:"version" doc:"Release version"`
	Commit    string `json:"commit" doc:"Git commit the binary was built from"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
}
