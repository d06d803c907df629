// Package ledger implements the payment-to-ledger reconciliation engine:
// converting one external payment event into exactly one durable gold credit.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/infra/pgutils"
	"github.com/fastprodman/dragonhoard/internal/repos/players"
	pgplayers "github.com/fastprodman/dragonhoard/internal/repos/players/postgres"
	"github.com/fastprodman/dragonhoard/internal/repos/transactions"
	pgtransactions "github.com/fastprodman/dragonhoard/internal/repos/transactions/postgres"
)

// CreditRequest is one payment event normalized by a producer (the Stripe
// webhook adapter or the dev credit path).
type CreditRequest struct {
	PlayerID    string
	Reference   string // external payment reference, unique per real-world payment
	GoldAmount  int64  // gold to credit, positive
	AmountCents int64  // money charged, minor units, informational
}

type Service struct {
	db      *sql.DB
	players players.Players
	txns    transactions.Transactions
}

func New(db *sql.DB) *Service {
	return &Service{
		db:      db,
		players: pgplayers.New(db),
		txns:    pgtransactions.New(db),
	}
}

// Credit applies req exactly once. The whole flow runs in a single DB
// transaction:
//
// 1) Ensure the player exists.
// 2) Insert the transaction row keyed by the external reference.
// 3) Atomically add the gold amount to the player's balance.
//
// A duplicate reference rolls the transaction back and returns
// (false, nil): the earlier delivery already landed both writes, so a
// retry is a no-op by construction. Because insert and increment commit
// together, a transaction row can never exist without its balance
// contribution. Any other failure is returned wrapped and is safe to
// retry with the same reference.
func (s *Service) Credit(ctx context.Context, req CreditRequest) (bool, error) {
	if req.Reference == "" {
		return false, errors.New("credit: empty reference")
	}

	if req.GoldAmount <= 0 {
		return false, fmt.Errorf("credit: gold amount must be positive, got %d", req.GoldAmount)
	}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.players.Exists(tx, req.PlayerID)
		if err != nil {
			return fmt.Errorf("check player exists: %w", err)
		}

		// The insert goes first so the uniqueness constraint guards the
		// increment below.
		err = s.txns.Insert(tx, req.Reference, req.PlayerID, req.GoldAmount, req.AmountCents)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		err = s.players.IncreaseGold(tx, req.PlayerID, req.GoldAmount)
		if err != nil {
			return fmt.Errorf("increase gold: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, transactions.ErrDuplicateReference) {
			return false, nil
		}

		return false, fmt.Errorf("credit: %w", err)
	}

	return true, nil
}
