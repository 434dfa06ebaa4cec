package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/havenwood-client/api/responses"
	"github.com/angelmondragon/havenwood-client/api/validators"
	"github.com/angelmondragon/havenwood-client/internal/wishlist"
	"github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
)

// WishlistEngine is the slice of the wishlist engine the HTTP layer needs.
type WishlistEngine interface {
	Load(ctx context.Context, force bool)
	Add(ctx context.Context, product map[string]any) (*wishlist.Entry, error)
	Remove(ctx context.Context, productID string)
	Toggle(ctx context.Context, product map[string]any) (bool, error)
	Clear(ctx context.Context)
	Contains(productID string) bool
	Snapshot() []*wishlist.Entry
}

type wishlistProductRequest struct {
	Product map[string]any `json:"product" validate:"required"`
}

type wishlistResponse struct {
	Items []*wishlist.Entry `json:"items"`
	Count int               `json:"count"`
}

func wishlistView(engine WishlistEngine) wishlistResponse {
	items := engine.Snapshot()
	if items == nil {
		items = []*wishlist.Entry{}
	}
	return wishlistResponse{Items: items, Count: len(items)}
}

// WishlistFetch returns the saved-for-later list.
func WishlistFetch(engine WishlistEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Load(r.Context(), r.URL.Query().Get("refresh") == "true")
		responses.WriteSuccess(w, wishlistView(engine))
	}
}

// WishlistAdd saves a product for later.
func WishlistAdd(engine WishlistEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body wishlistProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := engine.Add(r.Context(), body.Product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"entry":    entry,
			"wishlist": wishlistView(engine),
		})
	}
}

// WishlistToggle flips a product on or off the list.
func WishlistToggle(engine WishlistEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body wishlistProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := engine.Toggle(r.Context(), body.Product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"saved":    saved,
			"wishlist": wishlistView(engine),
		})
	}
}

// WishlistRemove takes a product off the list.
func WishlistRemove(engine WishlistEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "product id is required"))
			return
		}

		engine.Remove(r.Context(), productID)
		responses.WriteSuccess(w, wishlistView(engine))
	}
}

// WishlistClear empties the list.
func WishlistClear(engine WishlistEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Clear(r.Context())
		responses.WriteSuccess(w, wishlistView(engine))
	}
}
