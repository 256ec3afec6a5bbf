package mpwebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/matiascortez/vestia-backend/internal/payments"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
)

const typePayment = "payment"

// Notification is the provider's webhook body. The payment id arrives as a
// number or a string depending on the notification channel.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID flexibleID `json:"id"`
	} `json:"data"`
}

// flexibleID accepts both `"id": 123` and `"id": "123"`.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(raw []byte) error {
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		*f = flexibleID(number.String())
		return nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return err
	}
	*f = flexibleID(str)
	return nil
}

// PaymentID returns the referenced payment id, or 0 when absent or invalid.
func (n Notification) PaymentID() int64 {
	id, err := strconv.ParseInt(string(n.Data.ID), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

type paymentFetcher interface {
	FetchPayment(ctx context.Context, id int64) (*mercadopago.Payment, error)
}

type approvedDispatcher interface {
	DispatchApproved(ctx context.Context, payment *mercadopago.Payment) error
}

type ServiceParams struct {
	Gateway    paymentFetcher
	Dispatcher approvedDispatcher
	Logger     *logger.Logger
}

// Service resolves provider notifications into outcome handling. This is the
// authoritative confirmation path; the browser's success redirect is UX only.
type Service struct {
	gateway    paymentFetcher
	dispatcher approvedDispatcher
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification dispatcher required")
	}
	return &Service{
		gateway:    params.Gateway,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
	}, nil
}

// HandleNotification fetches the referenced payment and dispatches by status.
// Non-payment notifications and notifications without an id are no-ops.
func (s *Service) HandleNotification(ctx context.Context, notification Notification) error {
	if notification.Type != typePayment {
		return nil
	}
	paymentID := notification.PaymentID()
	if paymentID == 0 {
		s.warn(ctx, "payment notification without id, skipping")
		return nil
	}

	if s.logg != nil {
		ctx = s.logg.WithPaymentID(ctx, string(notification.Data.ID))
	}

	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch payment for webhook")
	}

	switch payment.Status {
	case payments.StatusApproved:
		return s.handleApproved(ctx, payment)
	case payments.StatusRejected:
		s.info(ctx, fmt.Sprintf("payment rejected: %s", payment.StatusDetail))
		return nil
	case payments.StatusPending, payments.StatusInProcess:
		s.info(ctx, fmt.Sprintf("payment pending: %s", payment.StatusDetail))
		return nil
	default:
		s.warn(ctx, fmt.Sprintf("unhandled payment status %q", payment.Status))
		return nil
	}
}

func (s *Service) handleApproved(ctx context.Context, payment *mercadopago.Payment) error {
	s.info(ctx, "payment approved, dispatching order notifications")
	if err := s.dispatcher.DispatchApproved(ctx, payment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dispatch order notifications")
	}
	return nil
}

func (s *Service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *Service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}
