package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/google/uuid"
)

func (r *playersRepo) Get(ctx context.Context, playerID string) (*players.Player, error) {
	// A malformed id can never match a row; without this check Postgres
	// reports a uuid cast error instead of no rows.
	if uuid.Validate(playerID) != nil {
		return nil, players.ErrPlayerNotFound
	}

	var (
		p    players.Player
		link sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, gold_count, social_link, created_at, updated_at
		FROM players
		WHERE id = $1
	`, playerID).Scan(&p.ID, &p.DisplayName, &p.GoldCount, &link, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, players.ErrPlayerNotFound
		}

		return nil, fmt.Errorf("get player: %w", err)
	}

	p.SocialLink = link.String

	return &p, nil
}
