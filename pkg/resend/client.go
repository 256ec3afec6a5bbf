package resend

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
	providerName = "resend"
	apiURL       = "https://api.resend.com"
)

// Client sends transactional email through the Resend HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
}

// NewClient binds the email credentials.
func NewClient(cfg config.ResendConfig) *Client {
	return &Client{
		baseURL:    apiURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		from:       cfg.From,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithBaseURL overrides the API host. Test hook.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// Configured reports whether an API key is present. Unconfigured senders
// skip delivery instead of failing the caller.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers one HTML email. Returns the provider's message id.
func (c *Client) Send(ctx context.Context, to, subject, html string) (string, error) {
	if !c.Configured() {
		return "", pkgerrors.New(pkgerrors.CodeConfig, "resend api key not configured")
	}

	encoded, err := json.Marshal(sendRequest{From: c.from, To: to, Subject: subject, HTML: html})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &pkgerrors.ProviderError{Provider: providerName, Cause: err.Error()}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: strings.TrimSpace(string(payload))}
	}

	var decoded sendResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", &pkgerrors.ProviderError{Provider: providerName, Status: resp.StatusCode, Cause: fmt.Sprintf("decode response: %v", err)}
	}
	return decoded.ID, nil
}
