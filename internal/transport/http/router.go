package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vouch/internal/platform/metrics"
	"vouch/internal/platform/middleware"
)

// HealthChecker reports infrastructure health; nil checkers are skipped.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers groups the feature handlers mounted under /v1.
type Handlers struct {
	Registry     *RegistryHandler
	Endorsement  *EndorsementHandler
	Activity     *ActivityHandler
	Verification *VerificationHandler
	Delegation   *DelegationHandler
	Privacy      *PrivacyHandler
	Score        *ScoreHandler
	Audit        *AuditHandler
}

// NewRouter wires the full HTTP surface: health and metrics on the bare
// router, every /v1 route behind the caller-identity middleware.
func NewRouter(h Handlers, signingKey string, logger *slog.Logger, m *metrics.Metrics, health HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing)
	r.Use(middleware.Latency(m))

	r.Get("/healthz", handleHealth(health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.Height)
		v1.Use(middleware.RequireCaller(signingKey, logger))
		h.Registry.Register(v1)
		h.Endorsement.Register(v1)
		h.Activity.Register(v1)
		h.Verification.Register(v1)
		h.Delegation.Register(v1)
		h.Privacy.Register(v1)
		h.Score.Register(v1)
		h.Audit.Register(v1)
	})

	return r
}

func handleHealth(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if health != nil {
			if err := health.Health(r.Context()); err != nil {
				status["status"] = "degraded"
				status["cache"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["cache"] = "ok"
		}
		writeJSON(w, http.StatusOK, status)
	}
}
