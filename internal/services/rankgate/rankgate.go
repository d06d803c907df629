// Package rankgate authorizes rank-gated mutations: only players currently
// in the top ranks may publish a social link.
package rankgate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fastprodman/dragonhoard/internal/infra/pgutils"
	"github.com/fastprodman/dragonhoard/internal/repos/players"
	pgplayers "github.com/fastprodman/dragonhoard/internal/repos/players/postgres"
)

// TopRanked is how many leaderboard positions unlock the social link.
const TopRanked = 5

const maxLinkLen = 512

var (
	ErrNotRanked   = errors.New("player is not in the top ranks")
	ErrInvalidLink = errors.New("invalid social link")
)

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

// UpdateSocialLink validates link, re-checks the player's rank and writes
// the link, all inside one DB transaction. Rank is recomputed on every
// call; there is no cached authorization to go stale between the check
// and the write.
func (s *Service) UpdateSocialLink(ctx context.Context, playerID, link string) (*players.Player, error) {
	link = strings.TrimSpace(link)

	err := ValidateLink(link)
	if err != nil {
		return nil, err
	}

	var updated *players.Player

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.players.Exists(tx, playerID)
		if err != nil {
			return fmt.Errorf("check player exists: %w", err)
		}

		top, err := s.players.TopIDs(tx, TopRanked)
		if err != nil {
			return fmt.Errorf("compute top ranks: %w", err)
		}

		ranked := false
		for _, id := range top {
			if id == playerID {
				ranked = true
				break
			}
		}

		if !ranked {
			return ErrNotRanked
		}

		updated, err = s.players.UpdateSocialLink(tx, playerID, link)
		if err != nil {
			return fmt.Errorf("update social link: %w", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotRanked) {
			return nil, ErrNotRanked
		}

		return nil, fmt.Errorf("authorize social link update: %w", err)
	}

	return updated, nil
}

// ValidateLink accepts the empty string (clears the link) or an http(s)
// URL of at most 512 characters.
func ValidateLink(link string) error {
	if link == "" {
		return nil
	}

	if len(link) > maxLinkLen {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidLink, maxLinkLen)
	}

	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidLink, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidLink)
	}

	return nil
}
