package players

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrPlayerNotFound = errors.New("player not found")

type Player struct {
	ID          string
	DisplayName string
	GoldCount   int64
	SocialLink  string // empty when the player has not published one
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Players interface {
	Create(ctx context.Context, displayName string) (*Player, error)
	Get(ctx context.Context, playerID string) (*Player, error)
	Exists(tx *sql.Tx, playerID string) error
	IncreaseGold(tx *sql.Tx, playerID string, amount int64) error
	TopByGold(ctx context.Context, limit int) ([]Player, error)
	TopIDs(tx *sql.Tx, limit int) ([]string, error)
	UpdateSocialLink(tx *sql.Tx, playerID, link string) (*Player, error)
}
