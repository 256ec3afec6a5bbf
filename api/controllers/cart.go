package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/matiascortez/vestia-backend/api/responses"
	"github.com/matiascortez/vestia-backend/api/validators"
	cartsvc "github.com/matiascortez/vestia-backend/internal/cart"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
)

const cartSessionHeader = "X-Cart-Session"

func cartSession(r *http.Request) (string, error) {
	session := strings.TrimSpace(r.Header.Get(cartSessionHeader))
	if session == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session header missing")
	}
	return session, nil
}

type cartResponse struct {
	Items    []cartsvc.Item  `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func newCartResponse(items []cartsvc.Item) cartResponse {
	if items == nil {
		items = []cartsvc.Item{}
	}
	return cartResponse{Items: items, Subtotal: cartsvc.Subtotal(items)}
}

// CartGet lists the session's bag.
func CartGet(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store.Items(r.Context(), session)))
	}
}

type addCartItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
	Size      string          `json:"size" validate:"required"`
	Color     string          `json:"color"`
	Image     string          `json:"image"`
	Qty       int             `json:"qty" validate:"min=0"`
}

func (req addCartItemRequest) toItem() cartsvc.Item {
	return cartsvc.Item{
		ProductID: req.ProductID,
		Slug:      req.Slug,
		Title:     req.Title,
		Price:     req.Price,
		Size:      req.Size,
		Color:     req.Color,
		Image:     req.Image,
		Qty:       req.Qty,
	}
}

// CartAddItem merges one line into the bag. An existing product/size/color
// combination gains quantity instead of duplicating.
func CartAddItem(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Price.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative"))
			return
		}

		store.Add(r.Context(), session, payload.toItem())
		responses.WriteSuccess(w, newCartResponse(store.Items(r.Context(), session)))
	}
}

// CartRemoveItem drops one line by composite key.
func CartRemoveItem(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Remove(r.Context(), session, chi.URLParam(r, "key"))
		responses.WriteSuccess(w, newCartResponse(store.Items(r.Context(), session)))
	}
}

// CartClear empties the bag.
func CartClear(store cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context(), session)
		responses.WriteSuccess(w, newCartResponse(nil))
	}
}
