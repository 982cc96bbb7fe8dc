package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/shared"
)

// HistoryRepository implements models.Repository[*models.ArchivedEntry] for
// the local blend archive.
//
// Entries are keyed by the history entry's own id so the same blend is never
// archived twice. Artists are stored as a JSON array column; tracks live in
// their own table, one row per position.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts an archived entry with a generated sequence
func (r *HistoryRepository) Create(entry *models.ArchivedEntry) error {
	sequence, err := NextSequence(r.db, "history_entries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	entry.SetSequence(sequence)
	entry.SetID(entry.EntryID())

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	artists, err := json.Marshal(entry.Artists())
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO history_entries (id, sequence, title, artists, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		entry.ID(),
		entry.Sequence(),
		entry.Title(),
		string(artists),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	if err := insertTracks(tx, entry.ID(), entry.Tracks()); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves an archived entry by ID, excluding soft-deleted entries
func (r *HistoryRepository) Get(id string) (*models.ArchivedEntry, error) {
	query := `
		SELECT id, sequence, title, artists, created_at, updated_at, deleted_at
		FROM history_entries
		WHERE id = ? AND deleted_at IS NULL
	`

	entry, err := r.scanOne(r.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	tracks, err := r.loadTracks(entry.ID())
	if err != nil {
		return nil, err
	}

	withTracks := entry.Entry()
	withTracks.Tracks = tracks
	entry.SetEntry(withTracks)

	return entry, nil
}

// Update modifies an existing archived entry and replaces its tracks
func (r *HistoryRepository) Update(entry *models.ArchivedEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	artists, err := json.Marshal(entry.Artists())
	if err != nil {
		return fmt.Errorf("failed to encode artists: %w", err)
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE history_entries
		SET title = ?, artists = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := tx.Exec(query, entry.Title(), string(artists), now, entry.ID())
	if err != nil {
		return fmt.Errorf("failed to update history entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEntryNotFound, entry.ID())
	}

	if _, err := tx.Exec("DELETE FROM history_tracks WHERE entry_id = ?", entry.ID()); err != nil {
		return fmt.Errorf("failed to clear tracks: %w", err)
	}
	if err := insertTracks(tx, entry.ID(), entry.Tracks()); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete soft-deletes an archived entry by ID
func (r *HistoryRepository) Delete(id string) error {
	query := `
		UPDATE history_entries
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEntryNotFound, id)
	}

	return nil
}

// List retrieves archived entries matching the given criteria, excluding
// soft-deleted entries. Supported criteria: "artist" (substring match).
func (r *HistoryRepository) List(criteria map[string]any) ([]*models.ArchivedEntry, error) {
	query := `
		SELECT id, sequence, title, artists, created_at, updated_at, deleted_at
		FROM history_entries
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artists LIKE ?"
		args = append(args, "%"+artist+"%")
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.ArchivedEntry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, entry := range entries {
		tracks, err := r.loadTracks(entry.ID())
		if err != nil {
			return nil, err
		}
		withTracks := entry.Entry()
		withTracks.Tracks = tracks
		entry.SetEntry(withTracks)
	}

	return entries, nil
}

// Archive stores a history entry unless it is already archived. Returns
// true when a new row was created.
func (r *HistoryRepository) Archive(entry models.HistoryEntry) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM history_entries WHERE id = ?)", entry.ID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check archive: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := r.Create(models.NewArchivedEntry(0, entry)); err != nil {
		return false, err
	}
	return true, nil
}

// insertTracks writes an entry's track rows inside the given transaction.
func insertTracks(tx *sql.Tx, entryID string, tracks []models.Track) error {
	query := `
		INSERT INTO history_tracks (id, entry_id, position, name, artist, album, duration, album_art, spotify_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for position, track := range tracks {
		id := track.ID
		if id == "" {
			id = shared.GenerateID()
		}

		_, err := tx.Exec(query,
			id,
			entryID,
			position,
			track.Name,
			track.Artist,
			track.Album,
			track.Duration,
			track.AlbumArt,
			track.SpotifyURL,
		)
		if err != nil {
			return fmt.Errorf("failed to insert track %d: %w", position, err)
		}
	}

	return nil
}

// loadTracks reads an entry's tracks ordered by position.
func (r *HistoryRepository) loadTracks(entryID string) ([]models.Track, error) {
	query := `
		SELECT id, name, artist, album, duration, album_art, spotify_url
		FROM history_tracks
		WHERE entry_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var track models.Track
		var album, duration, albumArt, spotifyURL sql.NullString

		if err := rows.Scan(&track.ID, &track.Name, &track.Artist, &album, &duration, &albumArt, &spotifyURL); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}

		track.Album = album.String
		track.Duration = duration.String
		track.AlbumArt = albumArt.String
		track.SpotifyURL = spotifyURL.String
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// scanOne scans a single row into a [models.ArchivedEntry]
func (r *HistoryRepository) scanOne(row *sql.Row) (*models.ArchivedEntry, error) {
	var (
		id        string
		sequence  int
		title     string
		artists   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &title, &artists, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: history entry", shared.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	return buildArchived(id, sequence, title, artists, createdAt, updatedAt, deletedAt)
}

// scanRow scans a row from [sql.Rows] into a [models.ArchivedEntry]
func (r *HistoryRepository) scanRow(rows *sql.Rows) (*models.ArchivedEntry, error) {
	var (
		id        string
		sequence  int
		title     string
		artists   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := rows.Scan(&id, &sequence, &title, &artists, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, fmt.Errorf("failed to scan history entry: %w", err)
	}

	return buildArchived(id, sequence, title, artists, createdAt, updatedAt, deletedAt)
}

func buildArchived(id string, sequence int, title, artists string, createdAt, updatedAt time.Time, deletedAt sql.NullTime) (*models.ArchivedEntry, error) {
	var artistList []string
	if err := json.Unmarshal([]byte(artists), &artistList); err != nil {
		return nil, fmt.Errorf("failed to decode artists: %w", err)
	}

	dto := models.HistoryEntry{
		ID:        id,
		Title:     title,
		Artists:   artistList,
		CreatedAt: createdAt,
	}

	entry := models.NewArchivedEntry(sequence, dto)
	entry.SetID(id)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}
