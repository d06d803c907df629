package transactions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/transactions"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

type transactionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *transactionsRepo {
	return &transactionsRepo{db: db}
}

// Insert records a credit keyed by its external payment reference. The
// primary key on reference is the idempotency guard: a duplicate delivery
// maps to ErrDuplicateReference instead of a second row.
func (r *transactionsRepo) Insert(tx *sql.Tx, reference, playerID string, goldAmount, amountCents int64) error {
	_, err := tx.Exec(`
		INSERT INTO transactions (reference, player_id, gold_amount, amount_cents)
		VALUES ($1, $2, $3, $4)
	`, reference, playerID, goldAmount, amountCents)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return transactions.ErrDuplicateReference
			}
		}

		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}
