package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/harborworks/marinedesk/internal/api/auth"
)

// Engines groups the three per-family engines the API serves.
type Engines struct {
	ServiceRequests  Service
	SurveyorBookings Service
	CargoBookings    Service
}

// NewRouter builds the HTTP handler: health probe unauthenticated, every
// collection behind bearer auth, the whole surface traced.
func NewRouter(authCfg auth.Config, engines Engines) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireAuth(authCfg))
		r.Route("/service-requests", (&resource{svc: engines.ServiceRequests}).routes)
		r.Route("/surveyor-bookings", (&resource{svc: engines.SurveyorBookings}).routes)
		r.Route("/cargo-bookings", (&resource{svc: engines.CargoBookings}).routes)
	})

	return otelhttp.NewHandler(r, "marinedesk.http")
}
