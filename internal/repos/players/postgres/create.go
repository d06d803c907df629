package players

import (
	"context"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/google/uuid"
)

func (r *playersRepo) Create(ctx context.Context, displayName string) (*players.Player, error) {
	p := players.Player{
		ID:          uuid.NewString(),
		DisplayName: displayName,
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO players (id, display_name)
		VALUES ($1, $2)
		RETURNING gold_count, created_at, updated_at
	`, p.ID, p.DisplayName).Scan(&p.GoldCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}

	return &p, nil
}
