package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiascortez/vestia-backend/api/responses"
	"github.com/matiascortez/vestia-backend/api/validators"
	productsvc "github.com/matiascortez/vestia-backend/internal/products"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
)

type productCatalog interface {
	List(filter productsvc.Filter) []productsvc.Product
	Get(slug string) (*productsvc.Product, error)
	Categories() []string
}

// ProductsList serves the filtered, sorted catalog listing.
func ProductsList(svc productCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		minPrice, err := validators.ParseQueryDecimal(r, "min_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "max_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := productsvc.Filter{
			Categories: validators.ParseQueryList(r, "category"),
			Sizes:      validators.ParseQueryList(r, "size"),
			Colors:     validators.ParseQueryList(r, "color"),
			MinPrice:   minPrice,
			MaxPrice:   maxPrice,
			Sort:       r.URL.Query().Get("sort"),
		}

		responses.WriteSuccess(w, map[string]any{
			"items":      svc.List(filter),
			"categories": svc.Categories(),
		})
	}
}

// ProductGet serves one product by slug.
func ProductGet(svc productCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.Get(chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
