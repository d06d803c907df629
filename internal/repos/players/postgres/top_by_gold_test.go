package players

import (
	"context"
	"testing"

	"github.com/fastprodman/dragonhoard/internal/infra/pgtestutil"
	"github.com/google/uuid"
)

func TestTopByGold_OrderAndFilter(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	rich := uuid.NewString()
	mid := uuid.NewString()
	poor := uuid.NewString()
	broke := uuid.NewString()

	pgtestutil.SeedPlayer(t, db, mid, "mid", 200)
	pgtestutil.SeedPlayer(t, db, rich, "rich", 500)
	pgtestutil.SeedPlayer(t, db, broke, "broke", 0)
	pgtestutil.SeedPlayer(t, db, poor, "poor", 100)

	top, err := repo.TopByGold(context.Background(), 10)
	if err != nil {
		t.Fatalf("top by gold: %v", err)
	}

	wantIDs := []string{rich, mid, poor}
	if len(top) != len(wantIDs) {
		t.Fatalf("got %d players, want %d (zero gold must not rank)", len(top), len(wantIDs))
	}

	for i, want := range wantIDs {
		if top[i].ID != want {
			t.Fatalf("position %d: got %s, want %s", i, top[i].ID, want)
		}
	}
}

func TestTopByGold_LimitAndStableTiebreak(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	// Two players tied on gold; id ascending breaks the tie the same way
	// every call.
	a := "aaaaaaaa-0000-0000-0000-000000000001"
	b := "bbbbbbbb-0000-0000-0000-000000000002"
	pgtestutil.SeedPlayer(t, db, b, "second", 300)
	pgtestutil.SeedPlayer(t, db, a, "first", 300)

	for range 3 {
		top, err := repo.TopByGold(context.Background(), 1)
		if err != nil {
			t.Fatalf("top by gold: %v", err)
		}

		if len(top) != 1 {
			t.Fatalf("limit ignored: got %d players", len(top))
		}
		if top[0].ID != a {
			t.Fatalf("tiebreak unstable: got %s, want %s", top[0].ID, a)
		}
	}
}

func TestTopIDs_MatchesTopByGold(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ids := make([]string, 0, 6)
	for _, gold := range []int64{500, 400, 300, 200, 100, 50} {
		id := uuid.NewString()
		ids = append(ids, id)
		pgtestutil.SeedPlayer(t, db, id, "ladder", gold)
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	top, err := repo.TopIDs(tx, 5)
	if err != nil {
		t.Fatalf("top ids: %v", err)
	}

	if len(top) != 5 {
		t.Fatalf("got %d ids, want 5", len(top))
	}

	for i, want := range ids[:5] {
		if top[i] != want {
			t.Fatalf("position %d: got %s, want %s", i, top[i], want)
		}
	}
}
