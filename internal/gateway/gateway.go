// Package gateway turns payment signals into ledger credit requests. Two
// producers feed the same reconciliation engine: the Stripe webhook
// adapter and, when no gateway is configured, a direct dev credit path.
package gateway

import (
	"errors"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/services/ledger"
	"github.com/google/uuid"
)

const (
	// MinGold and MaxGold bound one purchase. The checkout handler is the
	// authoritative enforcement point; the webhook adapter re-applies the
	// same clamp to the round-tripped metadata as tolerance.
	MinGold = 1
	MaxGold = 10_000

	// GoldUnitCents is the price of one gold: $1.00.
	GoldUnitCents = 100
)

var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMissingPlayer    = errors.New("event metadata carries no player id")
)

type Config struct {
	APIKey        string `env:"STRIPE_API_KEY" envDefault:""`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" envDefault:""`
}

// Configured reports whether a live payment gateway is set up. The dev
// credit path must stay unreachable while this is true.
func (c Config) Configured() bool {
	return c.APIKey != "" || c.WebhookSecret != ""
}

// ClampGold forces q into [MinGold, MaxGold].
func ClampGold(q int64) int64 {
	if q < MinGold {
		return MinGold
	}

	if q > MaxGold {
		return MaxGold
	}

	return q
}

// DevCreditRequest builds a credit request for the direct test-mode path,
// synthesizing a locally unique reference in place of a gateway-assigned
// one. It feeds the same engine as the webhook path.
func DevCreditRequest(playerID string, quantity int64) ledger.CreditRequest {
	gold := ClampGold(quantity)

	return ledger.CreditRequest{
		PlayerID:    playerID,
		Reference:   fmt.Sprintf("dev_%s", uuid.NewString()),
		GoldAmount:  gold,
		AmountCents: gold * GoldUnitCents,
	}
}
