package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matiascortez/vestia-backend/api/responses"
	"github.com/matiascortez/vestia-backend/api/validators"
	checkoutsvc "github.com/matiascortez/vestia-backend/internal/checkout"
	"github.com/matiascortez/vestia-backend/internal/payments"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/types"
)

type checkoutManager interface {
	Start(ctx context.Context, cartSessionID string) (checkoutsvc.View, error)
	Get(ctx context.Context, sessionID string) (checkoutsvc.View, error)
	SetBuyer(ctx context.Context, sessionID string, buyer types.BuyerInfo) (checkoutsvc.View, error)
	SetAddress(ctx context.Context, sessionID string, address types.ShippingAddress) (checkoutsvc.View, error)
	Confirm(ctx context.Context, sessionID string, step checkoutsvc.Step) (checkoutsvc.View, error)
	Edit(ctx context.Context, sessionID string, step checkoutsvc.Step) (checkoutsvc.View, error)
	Pay(ctx context.Context, sessionID string, form payments.FormData) (*checkoutsvc.PayResult, error)
}

// CheckoutStart opens a session bound to the caller's cart.
func CheckoutStart(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		session, err := cartSession(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Start(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// CheckoutGet returns the session snapshot.
func CheckoutGet(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		view, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type buyerRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=7"`
}

// CheckoutBuyer updates the buyer step's fields.
func CheckoutBuyer(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload buyerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetBuyer(r.Context(), chi.URLParam(r, "id"), types.BuyerInfo{
			Name:  payload.Name,
			Email: payload.Email,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type addressRequest struct {
	Address    string `json:"address" validate:"required,min=3"`
	City       string `json:"city" validate:"required,min=2"`
	Province   string `json:"province" validate:"required,min=2"`
	PostalCode string `json:"postal_code" validate:"required,min=3"`
	Notes      string `json:"notes"`
}

// CheckoutAddress updates the delivery step and re-quotes shipping.
func CheckoutAddress(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload addressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.SetAddress(r.Context(), chi.URLParam(r, "id"), types.ShippingAddress{
			Address:    payload.Address,
			City:       payload.City,
			Province:   payload.Province,
			PostalCode: payload.PostalCode,
			Notes:      payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type stepRequest struct {
	Step string `json:"step" validate:"required,oneof=buyer delivery review payment"`
}

// CheckoutConfirm locks in the named step.
func CheckoutConfirm(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload stepRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Confirm(r.Context(), chi.URLParam(r, "id"), checkoutsvc.Step(payload.Step))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CheckoutEdit reopens a confirmed step.
func CheckoutEdit(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload stepRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Edit(r.Context(), chi.URLParam(r, "id"), checkoutsvc.Step(payload.Step))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

type payRequest struct {
	FormData *payments.FormData `json:"formData"`
}

// CheckoutPay runs the terminal pay action. Redirect deployments need no
// body; embedded ones post the tokenized form data.
func CheckoutPay(svc checkoutManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload payRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		form := payments.FormData{}
		if payload.FormData != nil {
			form = *payload.FormData
		}

		result, err := svc.Pay(r.Context(), chi.URLParam(r, "id"), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
