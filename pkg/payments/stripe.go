package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/caronaexpress/pkg/models"
	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

const currencyBRL = "brl"

// PaymentIntentAPI is the subset of the Stripe PaymentIntent client we use.
type PaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway funds deposits with PIX PaymentIntents.
type StripeGateway struct {
	intents PaymentIntentAPI
}

// NewStripeGateway creates a gateway authenticated with apiKey.
func NewStripeGateway(apiKey string) *StripeGateway {
	return NewStripeGatewayWithClient(&paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: apiKey})
}

// NewStripeGatewayWithClient creates a gateway around an existing client.
func NewStripeGatewayWithClient(intents PaymentIntentAPI) *StripeGateway {
	return &StripeGateway{intents: intents}
}

var _ Gateway = (*StripeGateway)(nil)

// CreateCharge creates a confirmed-on-payment PIX intent for amount. The
// deposit id travels in the intent metadata.
func (g *StripeGateway) CreateCharge(ctx context.Context, depositID string, amount models.Money) (*Charge, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount.Shift(2).Round(0).IntPart()),
		Currency:           stripe.String(currencyBRL),
		PaymentMethodTypes: stripe.StringSlice([]string{"pix"}),
	}
	params.Context = ctx
	params.AddMetadata("deposit_id", depositID)
	params.SetIdempotencyKey("deposit-" + depositID)

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &Charge{Ref: pi.ID, Instructions: pi.ClientSecret}, nil
}

// ChargeStatus maps the intent's state onto Status.
func (g *StripeGateway) ChargeStatus(ctx context.Context, ref string) (Status, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.intents.Get(ref, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.HTTPStatusCode == 404 {
			return "", ErrUnknownCharge
		}
		return "", fmt.Errorf("failed to fetch payment intent %s: %w", ref, err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded, nil
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}
