package storage

import (
	"context"
	"path/filepath"
	"testing"

	"marketpulse/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	rec := domain.PublicationRecord{
		Day:          "2026-08-24",
		NaturalKeys:  []string{"guid-1", "guid-2"},
		Fingerprints: []string{"aa11", "bb22"},
		Published:    2,
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, ok, err := repo.Load(ctx, "2026-08-24")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !ok {
		t.Fatal("record not found after save")
	}
	if loaded.Published != 2 {
		t.Fatalf("published = %d, want 2", loaded.Published)
	}
	if len(loaded.NaturalKeys) != 2 || loaded.NaturalKeys[0] != "guid-1" {
		t.Fatalf("natural keys = %v", loaded.NaturalKeys)
	}
	if len(loaded.Fingerprints) != 2 || loaded.Fingerprints[1] != "bb22" {
		t.Fatalf("fingerprints = %v", loaded.Fingerprints)
	}
}

func TestLoadMissingDay(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)

	_, ok, err := repo.Load(context.Background(), "2026-08-24")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if ok {
		t.Fatal("expected no record")
	}
}

func TestSaveUpdatesExistingDay(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, domain.PublicationRecord{Day: "2026-08-24", Published: 1}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, domain.PublicationRecord{Day: "2026-08-24", NaturalKeys: []string{"k"}, Published: 2}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, ok, err := repo.Load(ctx, "2026-08-24")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if loaded.Published != 2 || len(loaded.NaturalKeys) != 1 {
		t.Fatalf("record not updated: %+v", loaded)
	}
}

func TestSavePrunesPriorDays(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, domain.PublicationRecord{Day: "2026-08-24", Published: 5}); err != nil {
		t.Fatalf("save day one: %v", err)
	}
	if err := repo.Save(ctx, domain.PublicationRecord{Day: "2026-08-25", Published: 0}); err != nil {
		t.Fatalf("save day two: %v", err)
	}

	_, ok, err := repo.Load(ctx, "2026-08-24")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if ok {
		t.Fatal("prior day should have been pruned")
	}
}
