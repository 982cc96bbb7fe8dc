package models

import (
	"testing"
	"time"
)

func TestDeriveTitle(t *testing.T) {
	t.Run("joins artists with separator", func(t *testing.T) {
		got := DeriveTitle([]string{"Abba", "Queen"})
		if got != "Abba × Queen Blend" {
			t.Errorf("DeriveTitle() = %q, want %q", got, "Abba × Queen Blend")
		}
	})

	t.Run("single artist", func(t *testing.T) {
		got := DeriveTitle([]string{"Taylor Swift"})
		if got != "Taylor Swift Blend" {
			t.Errorf("DeriveTitle() = %q, want %q", got, "Taylor Swift Blend")
		}
	})

	t.Run("no artists falls back to default", func(t *testing.T) {
		if got := DeriveTitle(nil); got != DefaultPlaylistTitle {
			t.Errorf("DeriveTitle() = %q, want %q", got, DefaultPlaylistTitle)
		}
	})
}

func TestArtistsFromTitle(t *testing.T) {
	t.Run("recovers artists from derived title", func(t *testing.T) {
		got := ArtistsFromTitle("Abba × Queen × Elton John Blend")
		want := []string{"Abba", "Queen", "Elton John"}
		if len(got) != len(want) {
			t.Fatalf("ArtistsFromTitle() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("artist[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("title without suffix", func(t *testing.T) {
		got := ArtistsFromTitle("Abba × Queen")
		if len(got) != 2 || got[0] != "Abba" || got[1] != "Queen" {
			t.Errorf("ArtistsFromTitle() = %v, want [Abba Queen]", got)
		}
	})

	t.Run("empty title yields empty slice", func(t *testing.T) {
		got := ArtistsFromTitle("")
		if got == nil || len(got) != 0 {
			t.Errorf("ArtistsFromTitle() = %v, want empty slice", got)
		}
	})

	t.Run("bare suffix yields empty slice", func(t *testing.T) {
		if got := ArtistsFromTitle("Blend"); len(got) != 0 {
			t.Errorf("ArtistsFromTitle() = %v, want empty slice", got)
		}
	})
}

func TestNormalizeEntry(t *testing.T) {
	newID := func() string { return "generated-id" }

	t.Run("fills missing id", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{Title: "Abba Blend"}, newID)
		if entry.ID != "generated-id" {
			t.Errorf("ID = %q, want %q", entry.ID, "generated-id")
		}
	})

	t.Run("keeps existing id", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{ID: "abc"}, newID)
		if entry.ID != "abc" {
			t.Errorf("ID = %q, want %q", entry.ID, "abc")
		}
	})

	t.Run("nil slices become empty", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{ID: "abc"}, newID)
		if entry.Tracks == nil {
			t.Error("Tracks is nil, want empty slice")
		}
		if entry.Artists == nil {
			t.Error("Artists is nil, want empty slice")
		}
	})

	t.Run("zero createdAt becomes now", func(t *testing.T) {
		before := time.Now()
		entry := NormalizeEntry(HistoryEntry{ID: "abc"}, newID)
		if entry.CreatedAt.Before(before) {
			t.Errorf("CreatedAt = %v, want >= %v", entry.CreatedAt, before)
		}
	})

	t.Run("preserves existing createdAt", func(t *testing.T) {
		created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		entry := NormalizeEntry(HistoryEntry{ID: "abc", CreatedAt: created}, newID)
		if !entry.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt, created)
		}
	})

	t.Run("derives title from artists", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{ID: "abc", Artists: []string{"Abba", "Queen"}}, newID)
		if entry.Title != "Abba × Queen Blend" {
			t.Errorf("Title = %q, want %q", entry.Title, "Abba × Queen Blend")
		}
	})

	t.Run("default title when nothing to derive from", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{ID: "abc"}, newID)
		if entry.Title != DefaultPlaylistTitle {
			t.Errorf("Title = %q, want %q", entry.Title, DefaultPlaylistTitle)
		}
	})

	t.Run("custom title is not split into artists", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{ID: "abc", Title: "My Summer Mix"}, newID)
		if len(entry.Artists) != 0 {
			t.Errorf("Artists = %v, want empty slice", entry.Artists)
		}
		if entry.Title != "My Summer Mix" {
			t.Errorf("Title = %q, want %q", entry.Title, "My Summer Mix")
		}
	})

	t.Run("recovers artists from legacy title-only record", func(t *testing.T) {
		entry := NormalizeEntry(HistoryEntry{ID: "abc", Title: "Abba × Queen Blend"}, newID)
		if len(entry.Artists) != 2 || entry.Artists[0] != "Abba" || entry.Artists[1] != "Queen" {
			t.Errorf("Artists = %v, want [Abba Queen]", entry.Artists)
		}
	})
}

func TestArchivedEntry(t *testing.T) {
	entry := HistoryEntry{
		ID:        "entry-1",
		Title:     "Abba × Queen Blend",
		Artists:   []string{"Abba", "Queen"},
		Tracks:    []Track{{ID: "t1", Name: "Dancing Queen", Artist: "Abba"}},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("preserves entry createdAt", func(t *testing.T) {
		archived := NewArchivedEntry(1, entry)
		if !archived.CreatedAt().Equal(entry.CreatedAt) {
			t.Errorf("CreatedAt() = %v, want %v", archived.CreatedAt(), entry.CreatedAt)
		}
	})

	t.Run("validates complete entry", func(t *testing.T) {
		archived := NewArchivedEntry(1, entry)
		if err := archived.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("rejects missing source id", func(t *testing.T) {
		archived := NewArchivedEntry(1, HistoryEntry{Title: "x"})
		if err := archived.Validate(); err == nil {
			t.Error("Validate() = nil, want error")
		}
	})

	t.Run("rejects missing sequence", func(t *testing.T) {
		archived := NewArchivedEntry(0, entry)
		if err := archived.Validate(); err == nil {
			t.Error("Validate() = nil, want error")
		}
	})
}
