package controllers

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/matiascortez/vestia-backend/api/responses"
	"github.com/matiascortez/vestia-backend/api/validators"
	shippingsvc "github.com/matiascortez/vestia-backend/internal/shipping"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
)

type shippingQuoter interface {
	Quote(ctx context.Context, postalCode, province string, declaredValue decimal.Decimal) shippingsvc.Quote
}

type shippingQuoteRequest struct {
	Destination struct {
		PostalCode string `json:"postalCode" validate:"required"`
		Province   string `json:"province"`
	} `json:"destination" validate:"required"`
	DeclaredValue decimal.Decimal `json:"declared_value"`
}

// ShippingQuote prices a shipment. Quote failures are part of the response
// shape, not HTTP errors: the client branches on success.
func ShippingQuote(svc shippingQuoter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		var payload shippingQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote := svc.Quote(r.Context(), payload.Destination.PostalCode, payload.Destination.Province, payload.DeclaredValue)
		responses.WriteSuccess(w, quote)
	}
}
