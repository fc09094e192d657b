package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/saborlabs/cardapio-backend/api/responses"
	"github.com/saborlabs/cardapio-backend/pkg/config"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
)

// Pinger is a dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cardapio-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the hard dependencies. A failing check returns 503 so
// the platform stops routing traffic here.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cardapio-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["database"] = checkDependency(ctx, db, &healthy)
		checks["redis"] = checkDependency(ctx, cache, &healthy)

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
			if logg != nil {
				logg.Warn(ctx, "readiness check failed")
			}
		}
		responses.WriteSuccessStatus(w, status, map[string]any{"checks": checks})
	}
}

func checkDependency(ctx context.Context, dep Pinger, healthy *bool) string {
	if dep == nil {
		*healthy = false
		return "missing"
	}
	if err := dep.Ping(ctx); err != nil {
		*healthy = false
		return "down"
	}
	return "ok"
}
