package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

// Config holds the gateway credentials and defaults.
type Config struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Currency      string
}

type razorpayGateway struct {
	client *razorpay.Client
	cfg    Config
}

// NewRazorpayGateway creates a Gateway backed by Razorpay payment links.
func NewRazorpayGateway(cfg Config) Gateway {
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &razorpayGateway{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		cfg:    cfg,
	}
}

func (g *razorpayGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	currency := req.Currency
	if currency == "" {
		currency = g.cfg.Currency
	}

	data := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        currency,
		"description":     req.Description,
		"reference_id":    req.Reference,
		"callback_url":    req.CallbackURL,
		"callback_method": "get",
	}

	body, err := g.client.PaymentLink.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	url, _ := body["short_url"].(string)
	if url == "" {
		return nil, ErrNoRedirectURL
	}
	id, _ := body["id"].(string)

	return &CheckoutSession{
		SessionID:   id,
		CheckoutURL: url,
	}, nil
}

func (g *razorpayGateway) VerifyWebhookSignature(payload []byte, signature string) bool {
	return utils.VerifyWebhookSignature(string(payload), signature, g.cfg.WebhookSecret)
}
