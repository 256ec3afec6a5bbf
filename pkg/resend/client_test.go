package resend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matiascortez/vestia-backend/pkg/config"
	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.ResendConfig{
		APIKey:  "re_test",
		From:    "ventas@vestia.ar",
		Timeout: 2 * time.Second,
	}).WithBaseURL(server.URL)
}

func TestSendDeliversEmail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer re_test" {
			t.Fatalf("missing bearer auth, got %q", got)
		}
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.From != "ventas@vestia.ar" || req.To != "cliente@correo.com" {
			t.Fatalf("unexpected addressing %+v", req)
		}
		json.NewEncoder(w).Encode(sendResponse{ID: "email-1"})
	})

	id, err := client.Send(context.Background(), "cliente@correo.com", "Confirmación", "<p>hola</p>")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "email-1" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestSendUnconfiguredIsConfigError(t *testing.T) {
	client := NewClient(config.ResendConfig{})
	_, err := client.Send(context.Background(), "a@b.com", "s", "h")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfig {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSendProviderFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"domain not verified"}`))
	})

	_, err := client.Send(context.Background(), "a@b.com", "s", "h")
	var provErr *pkgerrors.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if provErr.Status != http.StatusForbidden {
		t.Fatalf("unexpected status %d", provErr.Status)
	}
}
