package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/matiascortez/vestia-backend/pkg/config"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
)

const providerName = "mercadopago"

var errAccessTokenRequired = errors.New("mercadopago access token is required")

// Client is a thin HTTP wrapper over the provider's preference and payment
// endpoints. The access token never leaves the server.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient validates the credential and binds the HTTP transport.
func NewClient(cfg config.MercadoPagoConfig) (*Client, error) {
	if !cfg.Configured() {
		return nil, errAccessTokenRequired
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: strings.TrimSpace(cfg.AccessToken),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// PreferenceItem is one payable line in a preference.
type PreferenceItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

// BackURLs holds the browser return URLs per payment outcome.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferencePayer identifies the buyer on a preference.
type PreferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PreferenceRequest mirrors the provider's preference-creation payload.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             *PreferencePayer `json:"payer,omitempty"`
	BackURLs          *BackURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	ExternalReference string           `json:"external_reference,omitempty"`
	Metadata          map[string]any   `json:"metadata,omitempty"`
}

// Preference is the provider-side record consumed by the hosted checkout.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// PaymentIdentification is the buyer's document (optional).
type PaymentIdentification struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

// PaymentPayer identifies the buyer on a direct payment.
type PaymentPayer struct {
	Email          string                 `json:"email,omitempty"`
	FirstName      string                 `json:"first_name,omitempty"`
	Identification *PaymentIdentification `json:"identification,omitempty"`
}

// PaymentRequest forwards the tokenized form data to the provider. The token
// stands in for card data, which this system never sees.
type PaymentRequest struct {
	TransactionAmount float64        `json:"transaction_amount"`
	Token             string         `json:"token,omitempty"`
	Installments      int            `json:"installments,omitempty"`
	PaymentMethodID   string         `json:"payment_method_id,omitempty"`
	IssuerID          string         `json:"issuer_id,omitempty"`
	Payer             *PaymentPayer  `json:"payer,omitempty"`
	Description       string         `json:"description,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// PaymentItem is a purchased line reported back by the provider.
type PaymentItem struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PaymentAdditionalInfo wraps the order lines attached to a payment.
type PaymentAdditionalInfo struct {
	Items []PaymentItem `json:"items,omitempty"`
}

// Payment is the provider's payment record.
type Payment struct {
	ID                 int64                  `json:"id"`
	Status             string                 `json:"status"`
	StatusDetail       string                 `json:"status_detail"`
	TransactionAmount  float64                `json:"transaction_amount"`
	Payer              *PaymentPayer          `json:"payer,omitempty"`
	Metadata           map[string]any         `json:"metadata,omitempty"`
	AdditionalInfo     *PaymentAdditionalInfo `json:"additional_info,omitempty"`
	PointOfInteraction json.RawMessage        `json:"point_of_interaction,omitempty"`
	TransactionDetails json.RawMessage        `json:"transaction_details,omitempty"`
}

type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Cause   []struct {
		Code        any    `json:"code"`
		Description string `json:"description"`
	} `json:"cause"`
}

// CreatePreference registers a payable order with the provider and returns
// the hosted checkout initiation record.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	var pref Preference
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, &pref, ""); err != nil {
		return nil, err
	}
	return &pref, nil
}

// CreatePayment submits a tokenized payment. An idempotency key is attached
// per provider requirement.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/v1/payments", req, &payment, uuid.NewString()); err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPayment fetches the full payment record by id.
func (c *Client) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/payments/%d", id), nil, &payment, ""); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any, idempotencyKey string) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &pkgerrors.ProviderError{Provider: providerName, Cause: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, payload)
	}

	if dest != nil {
		if err := json.Unmarshal(payload, dest); err != nil {
			return &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}

func decodeAPIError(status int, payload []byte) error {
	var body apiErrorBody
	cause := ""
	if err := json.Unmarshal(payload, &body); err == nil {
		if len(body.Cause) > 0 && body.Cause[0].Description != "" {
			cause = body.Cause[0].Description
		} else if body.Message != "" {
			cause = body.Message
		}
	}
	return &pkgerrors.ProviderError{Provider: providerName, Status: status, Cause: cause}
}
