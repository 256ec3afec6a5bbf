package andreani

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matiascortez/vestia-backend/pkg/config"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
)

const (
	providerName  = "andreani"
	sandboxURL    = "https://apis-sandbox.andreani.com"
	productionURL = "https://apis.andreani.com"
)

// Client calls the carrier's rate and shipment APIs.
type Client struct {
	baseURL    string
	apiKey     string
	contract   string
	origin     string
	httpClient *http.Client
}

// NewClient binds the carrier credentials and environment.
func NewClient(cfg config.AndreaniConfig) *Client {
	base := sandboxURL
	if cfg.IsProduction() {
		base = productionURL
	}
	return &Client{
		baseURL:    base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		contract:   cfg.ContractNumber,
		origin:     cfg.OriginPostal,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithBaseURL overrides the API host. Test hook.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// Configured reports whether a carrier credential is present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type tariffRequest struct {
	CPDestino string   `json:"cpDestino"`
	CPOrigen  string   `json:"cpOrigen"`
	Contrato  string   `json:"contrato"`
	Bultos    []parcel `json:"bultos"`
}

type parcel struct {
	ValorDeclarado float64 `json:"valorDeclarado"`
	Kilos          float64 `json:"kilos"`
	Volumen        float64 `json:"volumen"`
}

type tariffTotals struct {
	Total float64 `json:"total"`
}

type tariffWithVAT struct {
	Total    float64       `json:"total"`
	Standard *tariffTotals `json:"tarifaConIvaSinAdicionales"`
}

type tariffResponse struct {
	TarifaConIva *tariffWithVAT `json:"tarifaConIva"`
}

// Tariff is the mapped cost of shipping one standard parcel.
type Tariff struct {
	Total float64
}

// QuoteTariff fetches the standard home-delivery rate for the destination.
func (c *Client) QuoteTariff(ctx context.Context, destinationPostal string, declaredValue float64) (*Tariff, error) {
	req := tariffRequest{
		CPDestino: destinationPostal,
		CPOrigen:  c.origin,
		Contrato:  c.contract,
		Bultos: []parcel{{
			ValorDeclarado: declaredValue,
			Kilos:          1,
			Volumen:        0.01,
		}},
	}

	var resp tariffResponse
	if err := c.do(ctx, http.MethodPost, "/v2/tarifas", req, &resp); err != nil {
		return nil, err
	}
	if resp.TarifaConIva == nil {
		return nil, &pkgerrors.ProviderError{Provider: providerName, Cause: "tariff missing from response"}
	}
	total := resp.TarifaConIva.Total
	if resp.TarifaConIva.Standard != nil {
		total = resp.TarifaConIva.Standard.Total
	}
	return &Tariff{Total: total}, nil
}

// ShipmentParty identifies sender or recipient on a shipment order.
type ShipmentParty struct {
	FullName string `json:"nombreCompleto"`
	Email    string `json:"email"`
}

// ShipmentRequest creates a shipping order for a paid purchase.
type ShipmentRequest struct {
	DestinationPostal string
	DestinationStreet string
	DestinationCity   string
	DestinationState  string
	Recipient         ShipmentParty
	Sender            ShipmentParty
	DeclaredValue     float64
}

// Shipment is the carrier's created shipping order.
type Shipment struct {
	TrackingNumber string `json:"numeroDeEnvio"`
}

// CreateShipment registers a shipment with the carrier.
func (c *Client) CreateShipment(ctx context.Context, req ShipmentRequest) (*Shipment, error) {
	payload := map[string]any{
		"contrato": c.contract,
		"origen": map[string]any{
			"postal": map[string]any{"codigoPostal": c.origin},
		},
		"destino": map[string]any{
			"postal": map[string]any{
				"codigoPostal": req.DestinationPostal,
				"calle":        req.DestinationStreet,
				"localidad":    req.DestinationCity,
				"provincia":    req.DestinationState,
				"pais":         "Argentina",
			},
		},
		"remitente":    req.Sender,
		"destinatario": []ShipmentParty{req.Recipient},
		"paquetes": []map[string]any{{
			"valorDeclaradoConImpuestos": req.DeclaredValue,
			"peso":                       1,
			"volumen":                    1,
		}},
	}

	var shipment Shipment
	if err := c.do(ctx, http.MethodPost, "/v2/envios", payload, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-authorization-token", c.apiKey)

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
		return &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: strings.TrimSpace(string(payload))}
	}
	if dest != nil {
		if err := json.Unmarshal(payload, dest); err != nil {
			return &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: fmt.Sprintf("decode response: %v", err)}
		}
	}
	return nil
}
