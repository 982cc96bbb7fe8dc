package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/shared"
)

// fakeBackend scripts the history endpoints and records calls.
type fakeBackend struct {
	listEntries []models.HistoryEntry
	listErr     error
	saveErr     error
	deleteErr   error

	listCalls   int
	saveCalls   int
	deleteCalls int
	deletedIDs  []string
}

func (f *fakeBackend) ListHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	f.listCalls++
	return f.listEntries, f.listErr
}

func (f *fakeBackend) SaveHistory(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error) {
	f.saveCalls++
	if f.saveErr != nil {
		return models.HistoryEntry{}, f.saveErr
	}
	entry.ID = "server-" + entry.ID
	return entry, nil
}

func (f *fakeBackend) DeleteHistory(ctx context.Context, id string) error {
	f.deleteCalls++
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

func TestReconciler(t *testing.T) {
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		t.Run("Backend Success Is Authoritative", func(t *testing.T) {
			backend := &fakeBackend{listEntries: []models.HistoryEntry{{ID: "h1", Title: "Abba Blend"}}}
			r := NewReconciler(backend, NewCache(t.TempDir(), nil), nil)

			outcome, err := r.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if outcome.Source != SourceAuthoritative {
				t.Errorf("expected authoritative source, got %v", outcome.Source)
			}
			if len(outcome.Entries) != 1 || outcome.Entries[0].ID != "h1" {
				t.Errorf("unexpected entries: %v", outcome.Entries)
			}
		})

		t.Run("Backend Rows Are Normalized", func(t *testing.T) {
			backend := &fakeBackend{listEntries: []models.HistoryEntry{{ID: "h1", Title: "Abba × Queen Blend"}}}
			r := NewReconciler(backend, NewCache(t.TempDir(), nil), nil)

			outcome, _ := r.Load(ctx)
			if got := outcome.Entries[0].Artists; len(got) != 2 || got[0] != "Abba" {
				t.Errorf("expected artists recovered from title, got %v", got)
			}
			if outcome.Entries[0].Tracks == nil {
				t.Error("expected tracks coerced to empty slice")
			}
		})

		t.Run("Unauthorized Requires Login", func(t *testing.T) {
			backend := &fakeBackend{listErr: fmt.Errorf("%w: 401", shared.ErrUnauthorized)}
			cache := NewCache(t.TempDir(), nil)
			cache.Save([]models.HistoryEntry{{ID: "cached"}})
			r := NewReconciler(backend, cache, nil)

			_, err := r.Load(ctx)
			if !errors.Is(err, shared.ErrLoginRequired) {
				t.Fatalf("expected ErrLoginRequired, got %v", err)
			}
		})

		t.Run("Other Failures Degrade To Cache", func(t *testing.T) {
			backend := &fakeBackend{listErr: errors.New("connection refused")}
			cache := NewCache(t.TempDir(), nil)
			cache.Save([]models.HistoryEntry{{ID: "cached", Title: "Abba Blend"}})
			r := NewReconciler(backend, cache, nil)

			outcome, err := r.Load(ctx)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if outcome.Source != SourceDegraded {
				t.Errorf("expected degraded source, got %v", outcome.Source)
			}
			if len(outcome.Entries) != 1 || outcome.Entries[0].ID != "cached" {
				t.Errorf("unexpected entries: %v", outcome.Entries)
			}
		})

		t.Run("Degraded Load Normalizes Legacy Records", func(t *testing.T) {
			backend := &fakeBackend{listErr: errors.New("down")}
			cache := NewCache(t.TempDir(), nil)
			cache.Save([]models.HistoryEntry{{Title: "Abba × Queen Blend"}})
			r := NewReconciler(backend, cache, nil)

			outcome, _ := r.Load(ctx)
			entry := outcome.Entries[0]
			if entry.ID == "" {
				t.Error("expected fallback id")
			}
			if len(entry.Artists) != 2 {
				t.Errorf("expected artists from title, got %v", entry.Artists)
			}
			if entry.CreatedAt.IsZero() {
				t.Error("expected createdAt default")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		entries := func() []models.HistoryEntry {
			return []models.HistoryEntry{{ID: "h1"}, {ID: "h2"}}
		}

		t.Run("Backend Success Leaves Cache Alone", func(t *testing.T) {
			backend := &fakeBackend{}
			cache := NewCache(t.TempDir(), nil)
			cache.Save(entries())
			r := NewReconciler(backend, cache, nil)

			remaining, err := r.Delete(ctx, "h1", entries())
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if len(remaining) != 1 || remaining[0].ID != "h2" {
				t.Errorf("unexpected remaining: %v", remaining)
			}
			if cached := cache.Load(); len(cached) != 2 {
				t.Errorf("expected cache untouched, got %v", cached)
			}
		})

		t.Run("Backend Failure Rewrites Cache", func(t *testing.T) {
			backend := &fakeBackend{deleteErr: errors.New("down")}
			cache := NewCache(t.TempDir(), nil)
			cache.Save(entries())
			r := NewReconciler(backend, cache, nil)

			remaining, err := r.Delete(ctx, "h1", entries())
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if len(remaining) != 1 || remaining[0].ID != "h2" {
				t.Errorf("unexpected remaining: %v", remaining)
			}
			if cached := cache.Load(); len(cached) != 1 || cached[0].ID != "h2" {
				t.Errorf("expected cache rewritten, got %v", cached)
			}
		})

		t.Run("Missing ID Is NoOp", func(t *testing.T) {
			backend := &fakeBackend{}
			r := NewReconciler(backend, NewCache(t.TempDir(), nil), nil)

			remaining, err := r.Delete(ctx, "nope", entries())
			if err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if len(remaining) != 2 {
				t.Errorf("expected entries unchanged, got %v", remaining)
			}
			if backend.deleteCalls != 0 {
				t.Errorf("expected no backend call, got %d", backend.deleteCalls)
			}
		})
	})

	t.Run("Clear", func(t *testing.T) {
		t.Run("Local Only", func(t *testing.T) {
			backend := &fakeBackend{}
			cache := NewCache(t.TempDir(), nil)
			cache.Save([]models.HistoryEntry{{ID: "h1"}})
			r := NewReconciler(backend, cache, nil)

			if err := r.Clear(); err != nil {
				t.Fatalf("Clear failed: %v", err)
			}
			if _, err := os.Stat(cache.Path()); !os.IsNotExist(err) {
				t.Error("expected cache slot removed")
			}
			if backend.deleteCalls != 0 || backend.listCalls != 0 {
				t.Error("expected no backend calls")
			}
		})
	})

	t.Run("Save", func(t *testing.T) {
		t.Run("Backend Success Returns Stored Entry", func(t *testing.T) {
			backend := &fakeBackend{}
			cache := NewCache(t.TempDir(), nil)
			r := NewReconciler(backend, cache, nil)

			entry, source, err := r.Save(ctx, "", []string{"Abba", "Queen"}, nil)
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if source != SourceAuthoritative {
				t.Errorf("expected authoritative source, got %v", source)
			}
			if entry.Title != "Abba × Queen Blend" {
				t.Errorf("unexpected title: %q", entry.Title)
			}
			if cached := cache.Load(); len(cached) != 0 {
				t.Errorf("expected cache untouched, got %v", cached)
			}
		})

		t.Run("Backend Failure Prepends To Cache", func(t *testing.T) {
			backend := &fakeBackend{saveErr: errors.New("down")}
			cache := NewCache(t.TempDir(), nil)
			cache.Save([]models.HistoryEntry{{ID: "old"}})
			r := NewReconciler(backend, cache, nil)

			entry, source, err := r.Save(ctx, "", []string{"Abba"}, []models.Track{{ID: "t1"}})
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if source != SourceDegraded {
				t.Errorf("expected degraded source, got %v", source)
			}
			if entry.ID == "" || entry.CreatedAt.IsZero() {
				t.Errorf("expected synthesized id and timestamp, got %+v", entry)
			}

			cached := cache.Load()
			if len(cached) != 2 || cached[0].ID != entry.ID {
				t.Errorf("expected entry prepended, got %v", cached)
			}
		})
	})

	t.Run("ArchiveAll", func(t *testing.T) {
		t.Run("Counts Newly Archived", func(t *testing.T) {
			r := NewReconciler(&fakeBackend{}, NewCache(t.TempDir(), nil), nil)
			archiver := &fakeArchiver{existing: map[string]bool{"h1": true}}

			n, err := r.ArchiveAll(archiver, []models.HistoryEntry{{ID: "h1"}, {ID: "h2"}})
			if err != nil {
				t.Fatalf("ArchiveAll failed: %v", err)
			}
			if n != 1 {
				t.Errorf("expected 1 newly archived, got %d", n)
			}
		})

		t.Run("Stops On Error", func(t *testing.T) {
			r := NewReconciler(&fakeBackend{}, NewCache(t.TempDir(), nil), nil)
			archiver := &fakeArchiver{err: errors.New("db locked")}

			if _, err := r.ArchiveAll(archiver, []models.HistoryEntry{{ID: "h1"}}); err == nil {
				t.Error("expected error")
			}
		})
	})
}

// fakeArchiver reports entries in existing as already archived.
type fakeArchiver struct {
	existing map[string]bool
	err      error
}

func (f *fakeArchiver) Archive(entry models.HistoryEntry) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return !f.existing[entry.ID], nil
}
