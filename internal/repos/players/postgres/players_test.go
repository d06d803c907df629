package players

import (
	"context"
	"errors"
	"testing"

	"github.com/fastprodman/dragonhoard/internal/infra/pgtestutil"
	"github.com/fastprodman/dragonhoard/internal/repos/players"
	"github.com/google/uuid"
)

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	created, err := repo.Create(context.Background(), "Ancalagon")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.ID == "" {
		t.Fatal("created player has no id")
	}
	if created.GoldCount != 0 {
		t.Fatalf("new player gold: got %d, want 0", created.GoldCount)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.DisplayName != "Ancalagon" {
		t.Fatalf("display name: got %q", got.DisplayName)
	}
	if got.SocialLink != "" {
		t.Fatalf("fresh player must have no social link, got %q", got.SocialLink)
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	_, err := repo.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, players.ErrPlayerNotFound) {
		t.Fatalf("want ErrPlayerNotFound, got %v", err)
	}

	_, err = repo.Get(context.Background(), "garbage-id")
	if !errors.Is(err, players.ErrPlayerNotFound) {
		t.Fatalf("malformed id: want ErrPlayerNotFound, got %v", err)
	}
}

func TestUpdateSocialLink(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	id := uuid.NewString()
	pgtestutil.SeedPlayer(t, db, id, "famous", 100)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	updated, err := repo.UpdateSocialLink(tx, id, "https://example.com/me")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.SocialLink != "https://example.com/me" {
		t.Fatalf("link: got %q", updated.SocialLink)
	}

	cleared, err := repo.UpdateSocialLink(tx, id, "")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.SocialLink != "" {
		t.Fatalf("link not cleared: %q", cleared.SocialLink)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}
