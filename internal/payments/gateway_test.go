package payments

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/types"
)

type stubProvider struct {
	lastPreference mercadopago.PreferenceRequest
	lastPayment    mercadopago.PaymentRequest

	preference *mercadopago.Preference
	payment    *mercadopago.Payment
	err        error
}

func (s *stubProvider) CreatePreference(_ context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	s.lastPreference = req
	return s.preference, s.err
}

func (s *stubProvider) CreatePayment(_ context.Context, req mercadopago.PaymentRequest) (*mercadopago.Payment, error) {
	s.lastPayment = req
	return s.payment, s.err
}

func (s *stubProvider) GetPayment(context.Context, int64) (*mercadopago.Payment, error) {
	return s.payment, s.err
}

func testInput() PreferenceInput {
	return PreferenceInput{
		Items: []LineItem{
			{ID: "remera-lino", Title: "Remera de Lino", Quantity: 2, UnitPrice: decimal.NewFromInt(10000)},
		},
		Buyer: types.BuyerInfo{Name: "Ana López", Email: "ana@example.com", Phone: "1155551234"},
		Address: types.ShippingAddress{
			Address:    "Av. Rivadavia 6100",
			City:       "CABA",
			Province:   "Buenos Aires",
			PostalCode: "1406",
		},
		ShippingCost:    decimal.NewFromInt(2500),
		ShippingService: "Estándar a Domicilio",
		ShippingDays:    "2-3",
		Total:           decimal.NewFromInt(22500),
	}
}

func TestCreatePreferenceUnconfigured(t *testing.T) {
	gw := NewGateway(nil, config.AppConfig{}, nil)

	_, err := gw.CreatePreference(context.Background(), testInput())

	require.Error(t, err)
	assert.Equal(t, errors.CodeConfig, errors.As(err).Code())
}

func TestCreatePreferenceEmptyItems(t *testing.T) {
	gw := NewGateway(&stubProvider{}, config.AppConfig{}, nil)

	input := testInput()
	input.Items = nil
	_, err := gw.CreatePreference(context.Background(), input)

	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestCreatePreferenceAddsShippingLine(t *testing.T) {
	provider := &stubProvider{preference: &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example/init"}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	result, err := gw.CreatePreference(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "pref-1", result.PreferenceID)
	assert.Equal(t, "https://mp.example/init", result.RedirectURL)
	assert.NotEmpty(t, result.ExternalReference)

	require.Len(t, provider.lastPreference.Items, 2)
	shippingLine := provider.lastPreference.Items[1]
	assert.Equal(t, "Envío", shippingLine.Title)
	assert.Equal(t, 1, shippingLine.Quantity)
	assert.Equal(t, 2500.0, shippingLine.UnitPrice)
	assert.Equal(t, "ARS", shippingLine.CurrencyID)
}

func TestCreatePreferenceNoShippingLineWhenFree(t *testing.T) {
	provider := &stubProvider{preference: &mercadopago.Preference{ID: "pref-1"}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	input := testInput()
	input.ShippingCost = decimal.Zero
	_, err := gw.CreatePreference(context.Background(), input)

	require.NoError(t, err)
	require.Len(t, provider.lastPreference.Items, 1)
}

func TestCreatePreferenceLocalOriginOmitsBackURLs(t *testing.T) {
	provider := &stubProvider{preference: &mercadopago.Preference{ID: "pref-1"}}
	gw := NewGateway(provider, config.AppConfig{SiteURL: "http://localhost:3000"}, nil)

	_, err := gw.CreatePreference(context.Background(), testInput())

	require.NoError(t, err)
	assert.Nil(t, provider.lastPreference.BackURLs)
	assert.Empty(t, provider.lastPreference.AutoReturn)
	assert.Empty(t, provider.lastPreference.NotificationURL)
}

func TestCreatePreferencePublicOriginSetsBackURLs(t *testing.T) {
	provider := &stubProvider{preference: &mercadopago.Preference{ID: "pref-1"}}
	gw := NewGateway(provider, config.AppConfig{SiteURL: "https://vestia.ar"}, nil)

	_, err := gw.CreatePreference(context.Background(), testInput())

	require.NoError(t, err)
	require.NotNil(t, provider.lastPreference.BackURLs)
	assert.Equal(t, "https://vestia.ar/checkout/success", provider.lastPreference.BackURLs.Success)
	assert.Equal(t, "approved", provider.lastPreference.AutoReturn)
	assert.Equal(t, "https://vestia.ar/api/v1/webhooks/mercadopago", provider.lastPreference.NotificationURL)
}

func TestCreatePreferenceMetadataCarriesOrder(t *testing.T) {
	provider := &stubProvider{preference: &mercadopago.Preference{ID: "pref-1"}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	_, err := gw.CreatePreference(context.Background(), testInput())

	require.NoError(t, err)
	meta := provider.lastPreference.Metadata
	assert.Equal(t, "ana@example.com", meta["buyer_email"])
	assert.Equal(t, "1406", meta["postal_code"])
	assert.Equal(t, 2500.0, meta["shipping_cost"])
}

func TestCreatePreferenceProviderErrorSanitized(t *testing.T) {
	provider := &stubProvider{err: &errors.ProviderError{Provider: "mercadopago", Status: 400, Cause: "invalid collector"}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	_, err := gw.CreatePreference(context.Background(), testInput())

	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeDependency, typed.Code())
	assert.Equal(t, "invalid collector", typed.Message())
	assert.NoError(t, typed.Unwrap(), "raw provider error must not travel outside debug mode")
}

func TestCreatePreferenceProviderErrorKeptInDebug(t *testing.T) {
	provider := &stubProvider{err: &errors.ProviderError{Provider: "mercadopago", Status: 500}}
	gw := NewGateway(provider, config.AppConfig{DebugCheckout: true}, nil)

	_, err := gw.CreatePreference(context.Background(), testInput())

	require.Error(t, err)
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "No se pudo iniciar el pago", typed.Message())
	assert.Error(t, typed.Unwrap())
}

func TestProcessPaymentRequiresToken(t *testing.T) {
	gw := NewGateway(&stubProvider{}, config.AppConfig{}, nil)

	_, err := gw.ProcessPayment(context.Background(), testInput(), FormData{})

	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestProcessPaymentRejectedMapsMessage(t *testing.T) {
	provider := &stubProvider{payment: &mercadopago.Payment{
		ID:           42,
		Status:       "rejected",
		StatusDetail: "cc_rejected_insufficient_amount",
	}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	result, err := gw.ProcessPayment(context.Background(), testInput(), FormData{Token: "tok-1", Installments: 1})

	require.NoError(t, err)
	assert.False(t, result.Approved())
	assert.Equal(t, "Pago rechazado: Fondos insuficientes", result.Message)
}

func TestProcessPaymentUnknownDetailFallsBack(t *testing.T) {
	provider := &stubProvider{payment: &mercadopago.Payment{
		ID:           43,
		Status:       "rejected",
		StatusDetail: "cc_rejected_from_the_future",
	}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	result, err := gw.ProcessPayment(context.Background(), testInput(), FormData{Token: "tok-1"})

	require.NoError(t, err)
	assert.Equal(t, "Pago rechazado: Verifica los datos o prueba otro medio de pago", result.Message)
}

func TestProcessPaymentApproved(t *testing.T) {
	provider := &stubProvider{payment: &mercadopago.Payment{
		ID:           44,
		Status:       "approved",
		StatusDetail: "accredited",
	}}
	gw := NewGateway(provider, config.AppConfig{}, nil)

	result, err := gw.ProcessPayment(context.Background(), testInput(), FormData{Token: "tok-1", PayerEmail: "otra@example.com"})

	require.NoError(t, err)
	assert.True(t, result.Approved())
	assert.Equal(t, "Pago aprobado", result.Message)
	assert.Equal(t, "otra@example.com", provider.lastPayment.Payer.Email)
	assert.Equal(t, 22500.0, provider.lastPayment.TransactionAmount)
}
