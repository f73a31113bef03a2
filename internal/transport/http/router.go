// Package httptransport assembles the HTTP surface: public health and
// metrics endpoints plus the authenticated /api/v1 API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vhandler "veriface/internal/verification/handler"
	whandler "veriface/internal/workflow/handler"
	"veriface/pkg/platform/httputil"
	"veriface/pkg/platform/middleware"
)

// HealthChecker reports backend availability for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Verification *vhandler.Handler
	Workflow     *whandler.Handler
	Validator    middleware.BankerValidator
	Logger       *slog.Logger

	// Optional backends surfaced by /healthz. Nil entries are skipped.
	Checks map[string]HealthChecker

	RequestTimeout time.Duration
}

// NewRouter wires all endpoints. Everything under /api/v1 requires a valid
// banker token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/healthz", handleHealth(cfg.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		cfg.Verification.Register(api)
		cfg.Workflow.Register(api)
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		httputil.WriteJSON(w, status, resp)
	}
}
