package pispi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.APIKey = "secret"
	cfg.RetryBase = time.Millisecond
	cfg.MaxRetries = 2

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClient(cfg, WithLogger(logger))
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{"bad scheme", "ftp://example.org"},
		{"no host", "https://"},
		{"unparsable", "http://[::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(Config{BaseURL: tt.baseURL})
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.Config().BaseURL)
	assert.Equal(t, DefaultVersion, client.Config().Version)
	assert.Equal(t, DefaultTimeout, client.Config().Timeout)
}

func TestClient_Do(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "pispi-go/1.0.0", r.Header.Get("User-Agent"))

		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"missing"}`))
		}
	})

	res := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ok"})
	ok, isOK := res.(ResultOK)
	require.True(t, isOK, "got %T", res)
	assert.Equal(t, 200, ok.Status)
	assert.JSONEq(t, `{"ok":true}`, string(ok.Body))

	res = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/missing"})
	httpErr, isHTTPErr := res.(ResultHTTPError)
	require.True(t, isHTTPErr, "got %T", res)
	assert.Equal(t, 404, httpErr.Status)
	assert.Equal(t, "Not Found", httpErr.StatusText)

	var apiErr *APIError
	require.ErrorAs(t, res.Err(), &apiErr)
	assert.Equal(t, KindNotFound, apiErr.Kind)
	assert.Equal(t, "missing", apiErr.Message)
}

func TestClient_DoTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: url})
	require.NoError(t, err)

	res := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	require.IsType(t, ResultTransportError{}, res)
	assert.ErrorIs(t, res.Err(), ErrTransport)
}

func TestClient_CallRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"wh-1","callbackUrl":"https://example.org/cb"}`))
	})

	var out Webhook
	err := client.Call(context.Background(), Request{Method: http.MethodGet, Path: "/webhooks/wh-1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "wh-1", out.ID)
}

func TestComptesService_ListOperations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/comptes/CI0001/operations", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "10000", q.Get("montant[gte]"))
		assert.Equal(t, "IRREVOCABLE", q.Get("statut"))
		assert.Equal(t, "-dateCreation", q.Get("sort"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "50", q.Get("size"))

		_, _ = w.Write([]byte(`{"items":[{"txId":"TX-1","montant":15000,"statut":"IRREVOCABLE","remise":{"taux":2.5}}],"page":1,"size":50,"total":1}`))
	})

	q := NewQueryBuilder().
		Filter("montant", OpGte, 10000).
		Filter("statut", OpEq, "IRREVOCABLE").
		Sort("dateCreation", Desc).
		Page(1).
		Size(50)

	page, err := client.Comptes.ListOperations(context.Background(), "CI0001", q)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "TX-1", page.Items[0].TxID)
	assert.Equal(t, "15 000 XOF", FormatAmount(page.Items[0].Montant.Decimal))
	require.NotNil(t, page.Items[0].Remise)
	assert.Equal(t, "2.5", page.Items[0].Remise.Taux.String())
}

func TestComptesService_ListOperationsInvalidQuery(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) })

	_, err := client.Comptes.ListOperations(context.Background(), "CI0001", NewQueryBuilder().Size(500))
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.Comptes.ListOperations(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, calls.Load())
}

func TestComptesService_TransfertIntra(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/comptes/CI0001/transferts", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"txId": "TX-2024-1", "montant": float64(25000), "motif": "loyer"}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"txId":"TX-2024-1","statut":"INITIE","montant":"25000"}`))
	})

	out, err := client.Comptes.TransfertIntra(context.Background(), "CI0001", CompteTransfertIntraRequest{
		TxID:    "TX-2024-1",
		Montant: NewAmount(25000),
		Motif:   "loyer",
	})
	require.NoError(t, err)
	assert.Equal(t, "INITIE", out.Statut)
	assert.True(t, out.Montant.Equal(NewAmount(25000).Decimal))
}

func TestComptesService_TransfertIntraValidation(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	tests := []struct {
		name string
		req  CompteTransfertIntraRequest
	}{
		{"bad txId", CompteTransfertIntraRequest{TxID: "tx id", Montant: NewAmount(1)}},
		{"zero amount", CompteTransfertIntraRequest{TxID: "TX-1"}},
		{"negative amount", CompteTransfertIntraRequest{TxID: "TX-1", Montant: NewAmount(-5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Comptes.TransfertIntra(context.Background(), "CI0001", tt.req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestWebhooksService_Modifier(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/webhooks/wh-1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"alias": "principal"}, body)

		_, _ = w.Write([]byte(`{"id":"wh-1","callbackUrl":"https://example.org/cb","alias":"principal"}`))
	})

	out, err := client.Webhooks.Modifier(context.Background(), "wh-1", WebhookModificationRequest{Alias: "principal"})
	require.NoError(t, err)
	assert.Equal(t, "principal", out.Alias)

	_, err = client.Webhooks.Modifier(context.Background(), "wh-1", WebhookModificationRequest{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.Webhooks.Modifier(context.Background(), "wh-1", WebhookModificationRequest{CallbackURL: "http://insecure"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWebhooksService_ModifierAuthError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title":"Unauthorized","detail":"jeton expire"}`))
	})

	_, err := client.Webhooks.Modifier(context.Background(), "wh-1", WebhookModificationRequest{Alias: "a"})
	assert.ErrorIs(t, err, ErrAuth)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "jeton expire", apiErr.Message)
}
