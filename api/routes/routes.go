package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitpocket/splitpocket-sync/api/handlers"
	"github.com/splitpocket/splitpocket-sync/api/responses"
	"github.com/splitpocket/splitpocket-sync/internal/syncer"
	"github.com/splitpocket/splitpocket-sync/pkg/config"
	apperrors "github.com/splitpocket/splitpocket-sync/pkg/errors"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
)

// NewRouter assembles the local status surface of the sync daemon.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	coordinator *syncer.Coordinator,
	registry *prometheus.Registry,
) http.Handler {
	router := chi.NewRouter()

	router.Get("/healthz", handlers.Healthz(cfg, logg))
	router.Get("/status", handlers.SyncStatus(coordinator))
	// The request context dies with the response; the pass runs on its own.
	router.Post("/sync", handlers.TriggerSync(coordinator, func(*http.Request) {
		go coordinator.TriggerSync(context.Background())
	}))
	if registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w,
			apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("no route for %s", r.URL.Path)))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), logg, w,
			apperrors.New(apperrors.CodeUnsupportedOperation, fmt.Sprintf("%s not allowed on %s", r.Method, r.URL.Path)))
	})

	return router
}
