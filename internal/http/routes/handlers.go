package routes

import (
	"context"

	"github.com/jmylchreest/plugsunset/internal/http/handlers"
)

// Handlers aggregates the handlers routes are registered with.
// For the main server, pass real handler implementations.
// For OpenAPI generation, pass stub implementations.
type Handlers struct {
	HealthCheck  func(context.Context, *handlers.HealthInput) (*handlers.HealthOutput, error)
	VersionCheck func(context.Context, *handlers.VersionInput) (*handlers.VersionOutput, error)
	Status       handlers.StatusHandlers
}
