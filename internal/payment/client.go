package payment

import (
	"context"

	"github.com/guonaihong/gout"
	"github.com/labstack/gommon/random"
	"github.com/pkg/errors"

	"github.com/lapmart/lapmart/config"
)

// Intent is the provider's payment-intent resource. Only the fields the
// client needs are decoded; the provider is a black box otherwise.
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// Client talks to the external payment provider. One call, one intent.
type Client struct {
	providerUrl string
	secret      string
	currency    string
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		providerUrl: cfg.ProviderUrl,
		secret:      cfg.Secret,
		currency:    cfg.Currency,
	}
}

// CreateIntent asks the provider for a payment intent over the given amount.
// An idempotency key is attached so provider-side retries stay safe.
func (c *Client) CreateIntent(ctx context.Context, amount float64) (*Intent, error) {
	var intent Intent
	code := 0
	err := gout.POST(c.providerUrl).
		WithContext(ctx).
		SetHeader(gout.H{
			"Authorization":   "Bearer " + c.secret,
			"Idempotency-Key": random.String(24),
		}).
		SetJSON(gout.H{
			"amount":   amount,
			"currency": c.currency,
		}).
		Code(&code).
		BindJSON(&intent).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "payment provider request")
	}
	if code < 200 || code >= 300 {
		return nil, errors.Errorf("payment provider status %d", code)
	}
	if intent.ClientSecret == "" {
		return nil, errors.New("payment provider returned no client secret")
	}
	return &intent, nil
}
