package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lapmart/lapmart/config"
)

func TestCreateIntent(t *testing.T) {
	var gotAuth, gotIdem string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotIdem = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_123",
			"client_secret": "pi_123_secret",
			"amount":        500,
			"currency":      "usd",
		})
	}))
	defer server.Close()

	client := NewClient(config.PaymentConfig{
		ProviderUrl: server.URL,
		Secret:      "sk_test_abc",
		Currency:    "usd",
	})

	intent, err := client.CreateIntent(context.Background(), 500)
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret", intent.ClientSecret)
	assert.Equal(t, "Bearer sk_test_abc", gotAuth)
	assert.NotEmpty(t, gotIdem)
	assert.EqualValues(t, 500, gotBody["amount"])
	assert.Equal(t, "usd", gotBody["currency"])
}

func TestCreateIntentProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(config.PaymentConfig{ProviderUrl: server.URL, Currency: "usd"})

	_, err := client.CreateIntent(context.Background(), 500)
	assert.Error(t, err)
}

func TestCreateIntentMissingSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"pi_123"}`))
	}))
	defer server.Close()

	client := NewClient(config.PaymentConfig{ProviderUrl: server.URL, Currency: "usd"})

	_, err := client.CreateIntent(context.Background(), 500)
	assert.Error(t, err)
}
