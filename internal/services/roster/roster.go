// Package roster covers player registration and the read paths the
// leaderboard UI polls.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/dragonhoard/internal/repos/players"
	pgplayers "github.com/fastprodman/dragonhoard/internal/repos/players/postgres"
)

// LeaderboardSize is how many players the public leaderboard shows.
const LeaderboardSize = 100

type Service struct {
	db      *sql.DB
	players players.Players
}

func New(db *sql.DB) *Service {
	return &Service{
		db:      db,
		players: pgplayers.New(db),
	}
}

// Register creates a player with the given display name. When playerID
// names an existing player, that player is returned instead: a returning
// visitor keeps their hoard.
func (s *Service) Register(ctx context.Context, displayName, playerID string) (*players.Player, error) {
	if playerID != "" {
		existing, err := s.players.Get(ctx, playerID)
		if err == nil {
			return existing, nil
		}

		if !errors.Is(err, players.ErrPlayerNotFound) {
			return nil, fmt.Errorf("look up returning player: %w", err)
		}
	}

	p, err := s.players.Create(ctx, displayName)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, playerID string) (*players.Player, error) {
	p, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}

	return p, nil
}

// Leaderboard returns the current top players, gold descending.
func (s *Service) Leaderboard(ctx context.Context) ([]players.Player, error) {
	top, err := s.players.TopByGold(ctx, LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	return top, nil
}
