package controllers

import (
	"context"
	"net/http"

	"github.com/teomanager/teomanager-backend/api/responses"
	"github.com/teomanager/teomanager-backend/pkg/config"
	pkgerrors "github.com/teomanager/teomanager-backend/pkg/errors"
	"github.com/teomanager/teomanager-backend/pkg/logger"
)

// Pinger is the readiness surface a hard dependency must expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live", "env": cfg.App.Env})
	}
}

// HealthReady reports readiness only when every hard dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, cacheP Pinger) http.HandlerFunc {
	deps := []struct {
		name string
		ping Pinger
	}{
		{"database", dbP},
		{"redis", cacheP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		for _, dep := range deps {
			if dep.ping == nil {
				continue
			}
			if err := dep.ping.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.name+" unavailable").
						WithDetails(map[string]any{"dependency": dep.name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready", "env": cfg.App.Env})
	}
}
