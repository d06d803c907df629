package transactions

import (
	"database/sql"
	"errors"
)

// ErrDuplicateReference means a transaction with this external payment
// reference was already recorded; the credit it carried is already applied.
var ErrDuplicateReference = errors.New("duplicate payment reference")

type Transactions interface {
	Insert(tx *sql.Tx, reference, playerID string, goldAmount, amountCents int64) error
}
