package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/havenwood-client/api/responses"
	"github.com/angelmondragon/havenwood-client/api/validators"
	"github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
)

// SessionManager is the slice of pkg/auth the HTTP layer needs.
type SessionManager interface {
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
}

type setSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionStatus reports whether a customer session is active.
func SessionStatus(manager SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"authenticated": manager.IsAuthenticated(r.Context()),
		})
	}
}

// SessionSet stores the customer's API token so carts sync remotely.
func SessionSet(manager SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setSessionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := manager.SetToken(r.Context(), body.Token); err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodePersistence, err, "store session token"))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"authenticated": manager.IsAuthenticated(r.Context()),
		})
	}
}

// SessionClear drops the stored token. Local cart state is kept.
func SessionClear(manager SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := manager.ClearToken(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodePersistence, err, "clear session token"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"authenticated": false})
	}
}
