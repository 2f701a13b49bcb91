package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/plugsunset/internal/status"
)

// StatusInput is the input for the status endpoint.
type StatusInput struct{}

// StatusOutput is the output for the status endpoint.
type StatusOutput struct {
	Body status.Snapshot
}

// StatusHandler serves the scheduler snapshot.
type StatusHandler struct {
	Status StatusProvider
}

// GetStatus returns the current plug state and next transition.
func (h *StatusHandler) GetStatus(_ context.Context, _ *StatusInput) (*StatusOutput, error) {
	if h.Status == nil {
		return nil, huma.Error503ServiceUnavailable("scheduler not running")
	}
	return &StatusOutput{Body: h.Status.Snapshot()}, nil
}
