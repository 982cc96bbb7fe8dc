// Package history reconciles the server-side playlist history with the
// local cache slot.
//
// The backend is authoritative. The cache exists so saved blends survive
// backend outages; it is read and written only on degraded paths, and every
// read result carries its provenance in an [Outcome] so callers can tell
// the user which copy they are looking at.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/shared"
	"github.com/charmbracelet/log"
)

// Backend is the slice of the API client the reconciler needs.
type Backend interface {
	ListHistory(ctx context.Context) ([]models.HistoryEntry, error)
	SaveHistory(ctx context.Context, entry models.HistoryEntry) (models.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id string) error
}

// Archiver copies entries into the local archive database.
type Archiver interface {
	Archive(entry models.HistoryEntry) (bool, error)
}

// Source says which copy of the history an [Outcome] came from.
type Source int

const (
	SourceAuthoritative Source = iota // the backend answered
	SourceDegraded                    // local cache, backend unreachable
)

func (s Source) String() string {
	if s == SourceDegraded {
		return "degraded"
	}
	return "authoritative"
}

// Outcome is a history read result together with its provenance.
type Outcome struct {
	Entries []models.HistoryEntry
	Source  Source
}

// Reconciler implements the backend-first history flows.
type Reconciler struct {
	backend Backend
	cache   *Cache
	logger  *log.Logger
}

// NewReconciler wires the reconciler to a backend client and a cache slot.
func NewReconciler(backend Backend, cache *Cache, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{backend: backend, cache: cache, logger: logger}
}

// normalize runs every entry through [models.NormalizeEntry]. Cached records
// from older versions may miss ids, artists, or timestamps.
func normalize(entries []models.HistoryEntry) []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(entries))
	for i, entry := range entries {
		out[i] = models.NormalizeEntry(entry, shared.GenerateID)
	}
	return out
}

// Load fetches the history backend-first.
//
// A 401-class failure returns [shared.ErrLoginRequired]: the session is the
// problem, and silently showing the stale cache would hide that. Any other
// backend failure degrades to the cache slot.
func (r *Reconciler) Load(ctx context.Context) (Outcome, error) {
	entries, err := r.backend.ListHistory(ctx)
	if err == nil {
		return Outcome{Entries: normalize(entries), Source: SourceAuthoritative}, nil
	}

	if errors.Is(err, shared.ErrUnauthorized) {
		return Outcome{}, fmt.Errorf("%w: %v", shared.ErrLoginRequired, err)
	}

	r.logger.Warn("history fetch failed, using local cache", "error", err)
	return Outcome{Entries: normalize(r.cache.Load()), Source: SourceDegraded}, nil
}

// Delete removes the entry with the given id and returns the updated list.
//
// On backend success only the in-memory list shrinks; the cache is left
// alone because the backend copy is the one that matters. On backend
// failure the entry is removed optimistically and the cache slot rewritten
// so the removal survives the outage. An id not present in entries is a
// no-op and no backend call is made.
func (r *Reconciler) Delete(ctx context.Context, id string, entries []models.HistoryEntry) ([]models.HistoryEntry, error) {
	found := false
	remaining := make([]models.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, entry)
	}
	if !found {
		return entries, nil
	}

	if err := r.backend.DeleteHistory(ctx, id); err != nil {
		r.logger.Warn("backend delete failed, updating local cache", "id", id, "error", err)
		if err := r.cache.Save(remaining); err != nil {
			return remaining, fmt.Errorf("failed to update cache after delete: %w", err)
		}
	}

	return remaining, nil
}

// Clear empties the local cache slot. The backend copy is not touched;
// there is no bulk delete in the API.
func (r *Reconciler) Clear() error {
	return r.cache.Clear()
}

// Save stores a new blend backend-first.
//
// When the backend accepts it, its stored record wins. Any backend failure,
// including an expired session, falls back to synthesizing the entry
// locally and prepending it to the capped cache slot.
func (r *Reconciler) Save(ctx context.Context, title string, artists []string, tracks []models.Track) (models.HistoryEntry, Source, error) {
	entry := models.NormalizeEntry(models.HistoryEntry{
		Title:   title,
		Artists: artists,
		Tracks:  tracks,
	}, shared.GenerateID)

	stored, err := r.backend.SaveHistory(ctx, entry)
	if err == nil {
		return models.NormalizeEntry(stored, shared.GenerateID), SourceAuthoritative, nil
	}

	r.logger.Warn("backend save failed, caching locally", "error", err)
	if err := r.cache.Prepend(entry); err != nil {
		return models.HistoryEntry{}, SourceDegraded, fmt.Errorf("failed to cache entry: %w", err)
	}
	return entry, SourceDegraded, nil
}

// ArchiveAll copies entries into the local archive database and reports how
// many were newly archived. Entries already archived are skipped.
func (r *Reconciler) ArchiveAll(archiver Archiver, entries []models.HistoryEntry) (int, error) {
	archived := 0
	for _, entry := range entries {
		created, err := archiver.Archive(entry)
		if err != nil {
			return archived, fmt.Errorf("failed to archive entry %s: %w", entry.ID, err)
		}
		if created {
			archived++
		}
	}
	return archived, nil
}
