package players

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
)

// TopByGold returns up to limit players ordered by gold_count descending,
// id ascending as a stable tiebreak. Players with zero gold never rank.
func (r *playersRepo) TopByGold(ctx context.Context, limit int) ([]players.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_name, gold_count, social_link, created_at, updated_at
		FROM players
		WHERE gold_count > 0
		ORDER BY gold_count DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top players: %w", err)
	}
	defer rows.Close()

	var result []players.Player

	for rows.Next() {
		var (
			p    players.Player
			link sql.NullString
		)

		err = rows.Scan(&p.ID, &p.DisplayName, &p.GoldCount, &link, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}

		p.SocialLink = link.String
		result = append(result, p)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	return result, nil
}

// TopIDs is the transaction-scoped variant used by the rank gate so the
// rank check and the write it authorizes share one snapshot.
func (r *playersRepo) TopIDs(tx *sql.Tx, limit int) ([]string, error) {
	rows, err := tx.Query(`
		SELECT id
		FROM players
		WHERE gold_count > 0
		ORDER BY gold_count DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top ids: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string

		err = rows.Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}

		ids = append(ids, id)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}

	return ids, nil
}
