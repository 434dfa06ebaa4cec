package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/havenwood-client/api/responses"
	"github.com/angelmondragon/havenwood-client/api/validators"
	"github.com/angelmondragon/havenwood-client/internal/cart"
	"github.com/angelmondragon/havenwood-client/pkg/errors"
	"github.com/angelmondragon/havenwood-client/pkg/logger"
	"github.com/angelmondragon/havenwood-client/pkg/types"
)

// CartEngine is the slice of the cart engine the HTTP layer needs.
type CartEngine interface {
	Load(ctx context.Context, force bool)
	Add(ctx context.Context, params cart.AddParams) (*cart.Line, error)
	Remove(ctx context.Context, id string)
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	Clear(ctx context.Context)
	Snapshot() []*cart.Line
	Totals() cart.Totals
}

type addCartRequest struct {
	Product  map[string]any `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"min=0"`
	Variant  map[string]any `json:"variant"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

type cartResponse struct {
	Items  []*cart.Line `json:"items"`
	Totals cart.Totals  `json:"totals"`
}

func cartView(engine CartEngine) cartResponse {
	items := engine.Snapshot()
	if items == nil {
		items = []*cart.Line{}
	}
	return cartResponse{Items: items, Totals: engine.Totals()}
}

// CartFetch returns the current cart with derived totals.
func CartFetch(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Load(r.Context(), r.URL.Query().Get("refresh") == "true")
		responses.WriteSuccess(w, cartView(engine))
	}
}

// CartAdd puts a product in the cart.
func CartAdd(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := engine.Add(r.Context(), cart.AddParams{
			Product:  body.Product,
			Quantity: body.Quantity,
			Variant:  types.VariantSelectors(body.Variant),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"line": line,
			"cart": cartView(engine),
		})
	}
}

// CartUpdateQuantity sets a line's quantity; zero removes the line.
func CartUpdateQuantity(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineId")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "line id is required"))
			return
		}

		var body updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := engine.UpdateQuantity(r.Context(), lineID, *body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartView(engine))
	}
}

// CartRemove deletes a line by line id or product id.
func CartRemove(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineId")
		if lineID == "" {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "line id is required"))
			return
		}

		engine.Remove(r.Context(), lineID)
		responses.WriteSuccess(w, cartView(engine))
	}
}

// CartClear empties the cart.
func CartClear(engine CartEngine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine.Clear(r.Context())
		responses.WriteSuccess(w, cartView(engine))
	}
}
