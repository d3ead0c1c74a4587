package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagecraft/pagecraft/adapters/sqlite"
)

func newStore(t *testing.T) *sqlite.UsageStore {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return sqlite.NewUsageStore(db)
}

func TestUsageStore_GetAbsent(t *testing.T) {
	s := newStore(t)

	_, ok, err := s.Get(context.Background(), "user-1:2025-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected absence for unseen key")
	}
}

func TestUsageStore_IncrementThenGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	if _, err := s.Increment(ctx, "user-1:2025-01", 2, now); err != nil {
		t.Fatalf("increment: %v", err)
	}
	record, err := s.Increment(ctx, "user-1:2025-01", 3, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("increment: %v", err)
	}

	if record.RequestCount != 2 || record.ImageCount != 5 {
		t.Errorf("record = %+v, want {2 5}", record)
	}

	got, ok, err := s.Get(ctx, "user-1:2025-01")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.RequestCount != 2 || got.ImageCount != 5 {
		t.Errorf("got = %+v, want {2 5}", got)
	}
}

func TestUsageStore_ResetAndPrune(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	s.Increment(ctx, "old:2024-10", 1, now.AddDate(0, -3, 0))
	s.Increment(ctx, "recent:2025-01", 1, now)

	removed, err := s.PruneBefore(ctx, now.AddDate(0, -2, 0))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "recent:2025-01"); ok {
		t.Error("record survived reset")
	}
}
