package players

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/google/uuid"
)

func (r *playersRepo) Exists(tx *sql.Tx, playerID string) error {
	if uuid.Validate(playerID) != nil {
		return players.ErrPlayerNotFound
	}

	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)
	`, playerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return players.ErrPlayerNotFound
	}

	return nil
}
