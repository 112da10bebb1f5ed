package payment

import (
	"context"
	"errors"
)

var ErrNoRedirectURL = errors.New("gateway returned no checkout URL")

// CheckoutRequest describes a hosted checkout session to be created.
type CheckoutRequest struct {
	Amount      int64  // smallest currency unit
	Currency    string
	Description string
	Reference   string
	CallbackURL string
}

// CheckoutSession is the gateway's handle for an initiated, not yet
// settled, payment.
type CheckoutSession struct {
	SessionID   string
	CheckoutURL string
}

// Gateway creates hosted checkout sessions with an external payment
// provider and verifies its settlement callbacks.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}
