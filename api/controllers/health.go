package controllers

import (
	"context"
	"net/http"

	"github.com/matiascortez/vestia-backend/api/responses"
	"github.com/matiascortez/vestia-backend/pkg/config"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
)

const envHeader = "X-Vestia-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady verifies the session store connection. A deployment without
// Redis still serves the catalog, so readiness reports the degradation
// instead of failing outright only when the store is wired.
func HealthReady(cfg *config.Config, logg *logger.Logger, store pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "session store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
