// Package httptransport assembles the chi router: shared middleware, the
// public session endpoint, and per-role route groups.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"govdash/pkg/domain"
	"govdash/pkg/platform/httputil"
	authmw "govdash/pkg/platform/middleware/auth"
	"govdash/pkg/platform/middleware/device"
	"govdash/pkg/platform/middleware/metadata"
	"govdash/pkg/platform/middleware/request"
	"govdash/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports the readiness of one dependency.
type HealthCheck func(ctx context.Context) error

// Deps is everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Latency     request.LatencyObserver
	Gatherer    prometheus.Gatherer
	Validator   authmw.JWTValidator
	Revocations authmw.TokenRevocationChecker
	Health      map[string]HealthCheck

	Session   Registrar
	Dashboard Registrar
	Map       Registrar
	Actions   Registrar
	Tasks     Registrar
	Datasets  Registrar
	MapStream http.HandlerFunc
}

// RequireAuth is the authentication middleware configured from d.
func (d Deps) RequireAuth() func(http.Handler) http.Handler {
	return authmw.RequireAuth(d.Validator, d.Revocations, d.Logger)
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(request.RequestID)
	r.Use(request.Logger(d.Logger, d.Latency))
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(d.Health))
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	mount(r, d.Session)

	r.Group(func(r chi.Router) {
		r.Use(d.RequireAuth())
		mount(r, d.Dashboard)

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(d.Logger, domain.RolePolicymaker))
			mount(r, d.Map)
			mount(r, d.Actions)
			if d.MapStream != nil {
				r.Get("/api/map/stream", d.MapStream)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(d.Logger, domain.RoleFieldWorker))
			mount(r, d.Tasks)
		})

		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireRole(d.Logger, domain.RoleDataSupervisor))
			mount(r, d.Datasets)
		})
	})
	return r
}

func mount(r chi.Router, reg Registrar) {
	if reg != nil {
		reg.Register(r)
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
