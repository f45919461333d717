package handlers

import (
	"net/http"

	"github.com/splitpocket/splitpocket-sync/api/responses"
	"github.com/splitpocket/splitpocket-sync/internal/syncer"
	"github.com/splitpocket/splitpocket-sync/pkg/config"
	"github.com/splitpocket/splitpocket-sync/pkg/logger"
)

func Healthz(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logg.WithFields(r.Context(), map[string]any{
			"env":  cfg.App.Env,
			"path": r.URL.Path,
		})
		logg.Info(ctx, "health.check")

		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// statusSource is the read surface the coordinator exposes.
type statusSource interface {
	Status() syncer.SyncStatus
}

// SyncStatus reports the pending badge, in-progress flag, reachability, and
// last successful pass time to UI-facing pollers.
func SyncStatus(source statusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, source.Status())
	}
}

// TriggerSync requests one drain pass; the coordinator's re-entrancy guard
// and offline precondition still apply.
func TriggerSync(source statusSource, trigger func(r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trigger(r)
		responses.WriteSuccessStatus(w, http.StatusAccepted, source.Status())
	}
}
