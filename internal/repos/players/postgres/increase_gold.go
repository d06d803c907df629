package players

import (
	"database/sql"
	"fmt"
)

// IncreaseGold applies the delta as a single atomic add so that concurrent
// credits to the same player never lose updates.
func (r *playersRepo) IncreaseGold(tx *sql.Tx, playerID string, amount int64) error {
	_, err := tx.Exec(`
		UPDATE players
		SET gold_count = gold_count + $2,
		    updated_at = now()
		WHERE id = $1
	`, playerID, amount)
	if err != nil {
		return fmt.Errorf("increase gold: %w", err)
	}

	return nil
}
