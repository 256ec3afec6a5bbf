package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/matiascortez/vestia-backend/pkg/andreani"
	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
)

type sentEmail struct {
	to      string
	subject string
	html    string
}

type stubEmails struct {
	configured bool
	sent       []sentEmail
	err        error
}

func (s *stubEmails) Configured() bool { return s.configured }

func (s *stubEmails) Send(_ context.Context, to, subject, html string) (string, error) {
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, html: html})
	return "email-1", s.err
}

type stubShipping struct {
	requests []andreani.ShipmentRequest
	err      error
}

func (s *stubShipping) CreateShipment(_ context.Context, req andreani.ShipmentRequest) (string, error) {
	s.requests = append(s.requests, req)
	return "AND-123", s.err
}

func approvedPayment() *mercadopago.Payment {
	return &mercadopago.Payment{
		ID:                123,
		Status:            "approved",
		TransactionAmount: 22500,
		Metadata: map[string]any{
			"buyer_name":       "Ana López",
			"buyer_email":      "ana@example.com",
			"buyer_phone":      "1155551234",
			"address":          "Av. Rivadavia 6100",
			"city":             "CABA",
			"province":         "Buenos Aires",
			"postal_code":      "1406",
			"shipping_cost":    2500.0,
			"shipping_service": "Estándar a Domicilio",
			"shipping_days":    "2-3",
			"items": []any{
				map[string]any{"title": "Remera de Lino", "quantity": 2.0, "unit_price": 10000.0},
			},
		},
	}
}

func testDispatcher(t *testing.T, emails *stubEmails, shipping *stubShipping) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherParams{
		Emails:   emails,
		Shipping: shipping,
		Resend:   config.ResendConfig{OwnerEmail: "dueña@vestia.ar"},
	})
	require.NoError(t, err)
	return d
}

func TestDispatchApprovedSendsBothEmailsOnce(t *testing.T) {
	emails := &stubEmails{configured: true}
	shipping := &stubShipping{}
	d := testDispatcher(t, emails, shipping)

	require.NoError(t, d.DispatchApproved(context.Background(), approvedPayment()))

	require.Len(t, emails.sent, 2)
	assert.Equal(t, "dueña@vestia.ar", emails.sent[0].to)
	assert.Contains(t, emails.sent[0].subject, "123")
	assert.Contains(t, emails.sent[0].html, "Remera de Lino")
	assert.Contains(t, emails.sent[0].html, "1406")

	assert.Equal(t, "ana@example.com", emails.sent[1].to)
	assert.Contains(t, emails.sent[1].html, "Ana López")
	assert.Contains(t, emails.sent[1].html, "$22500.00")
}

func TestDispatchApprovedCreatesShipment(t *testing.T) {
	emails := &stubEmails{configured: true}
	shipping := &stubShipping{}
	d := testDispatcher(t, emails, shipping)

	require.NoError(t, d.DispatchApproved(context.Background(), approvedPayment()))

	require.Len(t, shipping.requests, 1)
	req := shipping.requests[0]
	assert.Equal(t, "1406", req.DestinationPostal)
	assert.Equal(t, "Ana López", req.Recipient.FullName)
	assert.Equal(t, 22500.0, req.DeclaredValue)
}

func TestDispatchApprovedSkipsShipmentWhenFree(t *testing.T) {
	emails := &stubEmails{configured: true}
	shipping := &stubShipping{}
	d := testDispatcher(t, emails, shipping)

	payment := approvedPayment()
	payment.Metadata["shipping_cost"] = 0.0
	require.NoError(t, d.DispatchApproved(context.Background(), payment))

	assert.Empty(t, shipping.requests)
}

func TestDispatchApprovedEmailFailureDoesNotBlockShipment(t *testing.T) {
	emails := &stubEmails{configured: true, err: errors.New("rate limited")}
	shipping := &stubShipping{}
	d := testDispatcher(t, emails, shipping)

	err := d.DispatchApproved(context.Background(), approvedPayment())

	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2, "both email failures aggregated")
	assert.Len(t, shipping.requests, 1, "shipment still attempted")
}

func TestDispatchApprovedUnconfiguredEmailsSkip(t *testing.T) {
	emails := &stubEmails{configured: false}
	shipping := &stubShipping{}
	d := testDispatcher(t, emails, shipping)

	require.NoError(t, d.DispatchApproved(context.Background(), approvedPayment()))

	assert.Empty(t, emails.sent)
	assert.Len(t, shipping.requests, 1, "shipment does not depend on email config")
}

func TestOrderFromPaymentFallsBackToAdditionalInfo(t *testing.T) {
	payment := &mercadopago.Payment{
		ID:                9,
		TransactionAmount: 5000,
		Payer:             &mercadopago.PaymentPayer{Email: "cliente@example.com"},
		AdditionalInfo: &mercadopago.PaymentAdditionalInfo{
			Items: []mercadopago.PaymentItem{
				{Title: "Camisa Oversize", Quantity: 1, UnitPrice: 5000},
			},
		},
	}

	order := OrderFromPayment(payment)

	assert.Equal(t, "cliente@example.com", order.Buyer.Email)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Camisa Oversize", order.Items[0].Title)
	assert.Equal(t, 5000.0, order.Items[0].Subtotal())
}

func TestOwnerTemplateEscapesHTML(t *testing.T) {
	order := Order{
		PaymentID: 1,
		Items:     []OrderLine{{Title: "<script>alert(1)</script>", Quantity: 1, UnitPrice: 10}},
	}

	html, err := renderOwnerEmail(order)

	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"))
}
