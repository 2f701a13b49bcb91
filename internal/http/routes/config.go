// Package routes provides shared route registration for the plugsunset HTTP API.
// Both the daemon and the openapi command use the same route definitions,
// so the published document always matches what is served.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("plugsunset API", version)
	cfg.Info.Description = "Read-only status API for the plugsunset smart plug scheduler."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Health", Description: "Liveness probes"},
		{Name: "Status", Description: "Scheduler state"},
		{Name: "Version", Description: "Build information"},
	}

	return cfg
}
