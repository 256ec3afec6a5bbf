package payments

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/types"
)

const (
	currencyID      = "ARS"
	shippingLineID  = "shipping"
	shippingTitle   = "Envío"
	webhookPath     = "/api/v1/webhooks/mercadopago"
	autoReturnValue = "approved"
)

// LineItem is one payable order line handed to the gateway.
type LineItem struct {
	ID        string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// PreferenceInput is everything needed to register an order with the hosted
// checkout. ExternalReference may be empty; one is generated.
type PreferenceInput struct {
	Items             []LineItem
	Buyer             types.BuyerInfo
	Address           types.ShippingAddress
	ShippingCost      decimal.Decimal
	ShippingService   string
	ShippingDays      string
	Total             decimal.Decimal
	ExternalReference string
}

// PreferenceResult points the browser at the provider's hosted checkout.
type PreferenceResult struct {
	PreferenceID      string `json:"preferenceId"`
	RedirectURL       string `json:"redirectUrl"`
	ExternalReference string `json:"externalReference"`
}

// FormData is the tokenized card submission from the embedded brick. The
// token stands in for card data, which never reaches this server.
type FormData struct {
	Token           string  `json:"token"`
	Installments    int     `json:"installments"`
	PaymentMethodID string  `json:"payment_method_id"`
	IssuerID        string  `json:"issuer_id"`
	PayerEmail      string  `json:"payer_email"`
	Amount          float64 `json:"transaction_amount"`
}

// PaymentResult is the outcome of a direct payment, with the shopper-facing
// message already resolved.
type PaymentResult struct {
	ID             int64                              `json:"id"`
	Status         string                             `json:"status"`
	StatusDetail   string                             `json:"statusDetail"`
	Message        string                             `json:"message"`
	AdditionalInfo *mercadopago.PaymentAdditionalInfo `json:"additionalInfo,omitempty"`
}

// Approved reports whether the payment landed in the approved state.
func (r PaymentResult) Approved() bool {
	return r.Status == StatusApproved
}

type providerAPI interface {
	CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error)
	CreatePayment(ctx context.Context, req mercadopago.PaymentRequest) (*mercadopago.Payment, error)
	GetPayment(ctx context.Context, id int64) (*mercadopago.Payment, error)
}

// Gateway adapts the provider client to the two checkout modes: hosted
// redirect via preferences and embedded tokenized payments.
type Gateway struct {
	api     providerAPI
	siteURL string
	debug   bool
	logg    *logger.Logger
}

// NewGateway builds the adapter. A nil api is accepted so the server can
// boot without credentials; payment operations then fail fast.
func NewGateway(api providerAPI, appCfg config.AppConfig, logg *logger.Logger) *Gateway {
	return &Gateway{
		api:     api,
		siteURL: appCfg.PublicSiteURL(),
		debug:   appCfg.DebugCheckout,
		logg:    logg,
	}
}

// CreatePreference registers the order with the provider and returns the
// hosted checkout redirect. Return URLs are attached only when the site
// origin is public; the provider rejects local back_urls.
func (g *Gateway) CreatePreference(ctx context.Context, input PreferenceInput) (*PreferenceResult, error) {
	if g.api == nil {
		return nil, errors.New(errors.CodeConfig, "payment provider is not configured")
	}
	if len(input.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "order has no items")
	}

	items := make([]mercadopago.PreferenceItem, 0, len(input.Items)+1)
	for _, line := range input.Items {
		items = append(items, mercadopago.PreferenceItem{
			ID:         line.ID,
			Title:      line.Title,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice.InexactFloat64(),
			CurrencyID: currencyID,
		})
	}
	if input.ShippingCost.IsPositive() {
		items = append(items, mercadopago.PreferenceItem{
			ID:         shippingLineID,
			Title:      shippingTitle,
			Quantity:   1,
			UnitPrice:  input.ShippingCost.InexactFloat64(),
			CurrencyID: currencyID,
		})
	}

	reference := strings.TrimSpace(input.ExternalReference)
	if reference == "" {
		reference = uuid.NewString()
	}

	req := mercadopago.PreferenceRequest{
		Items: items,
		Payer: &mercadopago.PreferencePayer{
			Name:  input.Buyer.Name,
			Email: input.Buyer.Email,
			Phone: input.Buyer.Phone,
		},
		ExternalReference: reference,
		Metadata:          orderMetadata(input),
	}
	if g.siteURL != "" {
		req.BackURLs = &mercadopago.BackURLs{
			Success: g.siteURL + "/checkout/success",
			Failure: g.siteURL + "/checkout/failure",
			Pending: g.siteURL + "/checkout/pending",
		}
		req.AutoReturn = autoReturnValue
		req.NotificationURL = g.siteURL + webhookPath
	}

	pref, err := g.api.CreatePreference(ctx, req)
	if err != nil {
		return nil, g.dependencyError(ctx, err, "create preference", "No se pudo iniciar el pago")
	}

	return &PreferenceResult{
		PreferenceID:      pref.ID,
		RedirectURL:       pref.InitPoint,
		ExternalReference: reference,
	}, nil
}

// ProcessPayment submits a tokenized payment and resolves the shopper-facing
// message from the status detail table. A rejected payment is a successful
// call: the rejection travels in the result, not the error.
func (g *Gateway) ProcessPayment(ctx context.Context, input PreferenceInput, form FormData) (*PaymentResult, error) {
	if g.api == nil {
		return nil, errors.New(errors.CodeConfig, "payment provider is not configured")
	}
	if strings.TrimSpace(form.Token) == "" {
		return nil, errors.New(errors.CodeValidation, "payment token is required")
	}

	req := mercadopago.PaymentRequest{
		TransactionAmount: input.Total.InexactFloat64(),
		Token:             form.Token,
		Installments:      form.Installments,
		PaymentMethodID:   form.PaymentMethodID,
		IssuerID:          form.IssuerID,
		Payer: &mercadopago.PaymentPayer{
			Email:     payerEmail(form, input.Buyer),
			FirstName: input.Buyer.Name,
		},
		Description: paymentDescription(input.Items),
		Metadata:    orderMetadata(input),
	}

	payment, err := g.api.CreatePayment(ctx, req)
	if err != nil {
		return nil, g.dependencyError(ctx, err, "create payment", "No se pudo procesar el pago")
	}

	return &PaymentResult{
		ID:             payment.ID,
		Status:         payment.Status,
		StatusDetail:   payment.StatusDetail,
		Message:        userMessage(payment.Status, payment.StatusDetail),
		AdditionalInfo: payment.AdditionalInfo,
	}, nil
}

// FetchPayment retrieves the full payment record, used by the webhook path.
func (g *Gateway) FetchPayment(ctx context.Context, id int64) (*mercadopago.Payment, error) {
	if g.api == nil {
		return nil, errors.New(errors.CodeConfig, "payment provider is not configured")
	}
	payment, err := g.api.GetPayment(ctx, id)
	if err != nil {
		return nil, g.dependencyError(ctx, err, "fetch payment", "No se pudo consultar el pago")
	}
	return payment, nil
}

// dependencyError sanitizes a provider failure. The provider's human cause
// becomes the message when present; the raw error only survives as a wrapped
// cause in debug mode, where it is also dumped to the log.
func (g *Gateway) dependencyError(ctx context.Context, err error, op, fallback string) error {
	message := fallback
	var provErr *errors.ProviderError
	if stdErrors.As(err, &provErr) && provErr.Cause != "" {
		message = provErr.Cause
	}

	if g.logg != nil {
		g.logg.Error(ctx, fmt.Sprintf("mercadopago %s failed", op), err)
		if g.debug {
			dumpCtx := g.logg.WithField(ctx, "provider_dump", errors.Dump(err))
			g.logg.Debug(dumpCtx, "provider failure detail")
		}
	}

	if g.debug {
		return errors.Wrap(errors.CodeDependency, err, message)
	}
	return errors.New(errors.CodeDependency, message)
}

func payerEmail(form FormData, buyer types.BuyerInfo) string {
	if strings.TrimSpace(form.PayerEmail) != "" {
		return form.PayerEmail
	}
	return buyer.Email
}

func paymentDescription(items []LineItem) string {
	if len(items) == 0 {
		return "Compra Vestía"
	}
	if len(items) == 1 {
		return items[0].Title
	}
	return fmt.Sprintf("%s y %d más", items[0].Title, len(items)-1)
}

// orderMetadata attaches everything the webhook needs to rebuild the order:
// the provider echoes metadata back on the payment record.
func orderMetadata(input PreferenceInput) map[string]any {
	itemLines := make([]map[string]any, 0, len(input.Items))
	for _, line := range input.Items {
		itemLines = append(itemLines, map[string]any{
			"id":         line.ID,
			"title":      line.Title,
			"quantity":   line.Quantity,
			"unit_price": line.UnitPrice.InexactFloat64(),
		})
	}
	return map[string]any{
		"buyer_name":       input.Buyer.Name,
		"buyer_email":      input.Buyer.Email,
		"buyer_phone":      input.Buyer.Phone,
		"address":          input.Address.Address,
		"city":             input.Address.City,
		"province":         input.Address.Province,
		"postal_code":      input.Address.PostalCode,
		"notes":            input.Address.Notes,
		"shipping_cost":    input.ShippingCost.InexactFloat64(),
		"shipping_service": input.ShippingService,
		"shipping_days":    input.ShippingDays,
		"items":            itemLines,
	}
}
