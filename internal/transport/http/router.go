// Package httptransport assembles the public HTTP surface. It is a thin
// layer: all business logic lives in the feature modules, which mount their
// own endpoints through the Registerable interface.
package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"unify/pkg/platform/httputil"
	"unify/pkg/platform/middleware/requestid"
	"unify/pkg/platform/middleware/requesttime"
)

// Registerable mounts a feature module's endpoints on the router.
type Registerable interface {
	Register(r chi.Router)
}

// NewRouter builds the router with the shared middleware chain, operational
// endpoints, and every feature module's routes.
func NewRouter(health http.HandlerFunc, handlers ...Registerable) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", health)
	r.Handle("/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

// NewHealthHandler reports liveness plus the status of each named dependency
// check. Any failing check degrades the response to 503.
func NewHealthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		out := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				out[name] = err.Error()
				out["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		httputil.WriteJSON(w, status, out)
	}
}
