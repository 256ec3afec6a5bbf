package notifications

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/matiascortez/vestia-backend/pkg/andreani"
	"github.com/matiascortez/vestia-backend/pkg/config"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
)

type emailSender interface {
	Configured() bool
	Send(ctx context.Context, to, subject, html string) (string, error)
}

type shipmentCreator interface {
	CreateShipment(ctx context.Context, req andreani.ShipmentRequest) (string, error)
}

type DispatcherParams struct {
	Emails   emailSender
	Shipping shipmentCreator
	Resend   config.ResendConfig
	Logger   *logger.Logger
}

// Dispatcher runs the post-payment side effects: owner notification,
// customer confirmation, carrier shipment. Everything is best effort; the
// payment is already final, so a failed email is logged and the remaining
// tasks still run. Nothing is retried or rolled back.
type Dispatcher struct {
	emails     emailSender
	shipping   shipmentCreator
	ownerEmail string
	logg       *logger.Logger
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Emails == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "email sender required")
	}
	return &Dispatcher{
		emails:     params.Emails,
		shipping:   params.Shipping,
		ownerEmail: params.Resend.OwnerEmail,
		logg:       params.Logger,
	}, nil
}

// DispatchApproved fans the confirmed payment out to all sub-tasks. The
// returned error aggregates individual failures for the caller's log; by the
// time it returns every sub-task has been attempted.
func (d *Dispatcher) DispatchApproved(ctx context.Context, payment *mercadopago.Payment) error {
	order := OrderFromPayment(payment)

	if !d.emails.Configured() {
		d.warn(ctx, "email service not configured, skipping order notifications")
	}

	var errs error
	if err := d.sendOwnerEmail(ctx, order); err != nil {
		d.logError(ctx, "owner notification failed", err)
		errs = multierr.Append(errs, err)
	}
	if err := d.sendCustomerEmail(ctx, order); err != nil {
		d.logError(ctx, "customer confirmation failed", err)
		errs = multierr.Append(errs, err)
	}
	if err := d.createShipment(ctx, order); err != nil {
		d.logError(ctx, "shipment creation failed", err)
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (d *Dispatcher) sendOwnerEmail(ctx context.Context, order Order) error {
	if !d.emails.Configured() {
		return nil
	}
	if d.ownerEmail == "" {
		d.warn(ctx, "owner email not configured, skipping owner notification")
		return nil
	}
	html, err := renderOwnerEmail(order)
	if err != nil {
		return fmt.Errorf("render owner email: %w", err)
	}
	subject := fmt.Sprintf("Nueva venta confirmada · pago #%d", order.PaymentID)
	_, err = d.emails.Send(ctx, d.ownerEmail, subject, html)
	return err
}

func (d *Dispatcher) sendCustomerEmail(ctx context.Context, order Order) error {
	if !d.emails.Configured() {
		return nil
	}
	if order.Buyer.Email == "" {
		d.warn(ctx, "payment has no buyer email, skipping customer confirmation")
		return nil
	}
	html, err := renderCustomerEmail(order)
	if err != nil {
		return fmt.Errorf("render customer email: %w", err)
	}
	_, err = d.emails.Send(ctx, order.Buyer.Email, "¡Gracias por tu compra!", html)
	return err
}

// createShipment registers the carrier order when the purchase paid for
// shipping. Free or pickup orders skip the carrier entirely.
func (d *Dispatcher) createShipment(ctx context.Context, order Order) error {
	if d.shipping == nil || order.ShippingCost <= 0 {
		return nil
	}
	tracking, err := d.shipping.CreateShipment(ctx, andreani.ShipmentRequest{
		DestinationPostal: order.Address.PostalCode,
		DestinationStreet: order.Address.Address,
		DestinationCity:   order.Address.City,
		DestinationState:  order.Address.Province,
		Recipient: andreani.ShipmentParty{
			FullName: order.Buyer.Name,
			Email:    order.Buyer.Email,
		},
		DeclaredValue: order.Total,
	})
	if err != nil {
		return err
	}
	if tracking != "" {
		d.info(ctx, fmt.Sprintf("shipment created, tracking %s", tracking))
	}
	return nil
}

func (d *Dispatcher) info(ctx context.Context, msg string) {
	if d.logg != nil {
		d.logg.Info(ctx, msg)
	}
}

func (d *Dispatcher) warn(ctx context.Context, msg string) {
	if d.logg != nil {
		d.logg.Warn(ctx, msg)
	}
}

func (d *Dispatcher) logError(ctx context.Context, msg string, err error) {
	if d.logg != nil {
		d.logg.Error(ctx, msg, err)
	}
}
