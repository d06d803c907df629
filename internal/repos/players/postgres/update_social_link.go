package players

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
)

// UpdateSocialLink stores the link, or clears it when link is empty.
func (r *playersRepo) UpdateSocialLink(tx *sql.Tx, playerID, link string) (*players.Player, error) {
	stored := sql.NullString{String: link, Valid: link != ""}

	var (
		p       players.Player
		scanned sql.NullString
	)

	err := tx.QueryRow(`
		UPDATE players
		SET social_link = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, display_name, gold_count, social_link, created_at, updated_at
	`, playerID, stored).Scan(&p.ID, &p.DisplayName, &p.GoldCount, &scanned, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, players.ErrPlayerNotFound
		}

		return nil, fmt.Errorf("update social link: %w", err)
	}

	p.SocialLink = scanned.String

	return &p, nil
}
