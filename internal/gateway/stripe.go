package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/fastprodman/dragonhoard/internal/services/ledger"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Metadata keys attached at checkout-initiation time and round-tripped by
// Stripe back to the webhook.
const (
	metaPlayerID     = "player_id"
	metaGoldQuantity = "gold_quantity"
)

// Stripe is the gateway event adapter for Stripe Checkout.
type Stripe struct {
	cfg    Config
	appURL string
}

func NewStripe(cfg Config, appURL string) *Stripe {
	stripe.Key = cfg.APIKey

	return &Stripe{cfg: cfg, appURL: appURL}
}

func (g *Stripe) Configured() bool { return g.cfg.Configured() }

// CreateCheckoutSession opens a Stripe Checkout session charging $1 per
// gold and attaches (player id, quantity) as metadata, which is the sole
// channel through which the credit eventually finds its player.
func (g *Stripe) CreateCheckoutSession(ctx context.Context, p *players.Player, quantity int64) (string, error) {
	quantity = ClampGold(quantity)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Dragon Gold"),
						Description: stripe.String(fmt.Sprintf("%d gold for %s's hoard", quantity, p.DisplayName)),
					},
					UnitAmount: stripe.Int64(GoldUnitCents),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(g.appURL + "?success=true"),
		CancelURL:  stripe.String(g.appURL + "?canceled=true"),
	}
	params.Context = ctx
	params.AddMetadata(metaPlayerID, p.ID)
	params.AddMetadata(metaGoldQuantity, strconv.FormatInt(quantity, 10))

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return s.URL, nil
}

// ParseEvent verifies the webhook signature and extracts a credit request
// from a completed checkout. ok is false for event kinds this service
// ignores; those must still be acknowledged so Stripe stops retrying.
func (g *Stripe) ParseEvent(payload []byte, sigHeader string) (req ledger.CreditRequest, ok bool, err error) {
	// An empty secret must never verify: HMAC with the empty key is
	// computable by anyone, which would let an unauthenticated caller
	// mint credits.
	if g.cfg.WebhookSecret == "" {
		return ledger.CreditRequest{}, false, fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, g.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return ledger.CreditRequest{}, false, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return ledger.CreditRequest{}, false, nil
	}

	var cs stripe.CheckoutSession

	err = json.Unmarshal(event.Data.Raw, &cs)
	if err != nil {
		return ledger.CreditRequest{}, false, fmt.Errorf("unmarshal checkout session: %w", err)
	}

	playerID := cs.Metadata[metaPlayerID]
	if playerID == "" {
		return ledger.CreditRequest{}, false, ErrMissingPlayer
	}

	// The quantity was clamped when the session was created; re-derive
	// nothing, just tolerate. Absent or garbled metadata credits 1.
	gold := int64(1)
	if raw, found := cs.Metadata[metaGoldQuantity]; found {
		parsed, perr := strconv.ParseInt(raw, 10, 64)
		if perr == nil {
			gold = parsed
		}
	}
	gold = ClampGold(gold)

	cents := cs.AmountTotal
	if cents <= 0 {
		cents = gold * GoldUnitCents
	}

	return ledger.CreditRequest{
		PlayerID:    playerID,
		Reference:   cs.ID,
		GoldAmount:  gold,
		AmountCents: cents,
	}, true, nil
}
