package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/plugsunset/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
func Register(api huma.API, h *Handlers) {
	// --- Health ---
	mw.Get(api, "/api/v1/health", h.HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithDescription("Returns service health status."),
		mw.WithOperationID("healthCheck"))

	mw.HiddenGet(api, "/healthz", h.HealthCheck)

	// --- Version ---
	mw.Get(api, "/api/v1/version", h.VersionCheck,
		mw.WithTags("Version"),
		mw.WithSummary("Daemon version"),
		mw.WithDescription("Returns the running daemon's version, commit, and build date."),
		mw.WithOperationID("getVersion"))

	// --- Status ---
	mw.Get(api, "/api/v1/status", h.Status.GetStatus,
		mw.WithTags("Status"),
		mw.WithSummary("Scheduler status"),
		mw.WithDescription("Returns the last applied plug state, the read-back relay state, and the next scheduled transition."),
		mw.WithOperationID("getStatus"))
}
