package routes

import (
	"context"

	"github.com/jmylchreest/plugsunset/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// They return nil responses and are only used for OpenAPI generation,
// where Huma extracts type information from function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck: func(_ context.Context, _ *handlers.HealthInput) (*handlers.HealthOutput, error) {
			return nil, nil
		},
		VersionCheck: func(_ context.Context, _ *handlers.VersionInput) (*handlers.VersionOutput, error) {
			return nil, nil
		},
		Status: stubStatusHandlers{},
	}
}

type stubStatusHandlers struct{}

func (stubStatusHandlers) GetStatus(_ context.Context, _ *handlers.StatusInput) (*handlers.StatusOutput, error) {
	return nil, nil
}
