package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/havenwood-client/api/responses"
	"github.com/angelmondragon/havenwood-client/pkg/config"
	"github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
)

// Pinger is anything with a health probe, the blob backends included.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Havenwood-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the blob backend. A nil pinger (memory driver)
// is always ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Havenwood-Env", cfg.App.Env)

		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					errors.Wrap(errors.CodePersistence, err, "blob store not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
