package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/pkg/config"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inkshelf-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database answers. Redis is optional
// infrastructure for readiness: without it the API still settles sales.
func HealthReady(cfg *config.Config, db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Inkshelf-Env", cfg.App.Env)

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), nil, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "database not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
