// package models defines the data model for the playlist blend client
package models

import (
	"strings"
	"time"
)

// DefaultPlaylistTitle is used when an entry carries no artists to derive a title from.
const DefaultPlaylistTitle = "ArtistBlend Playlist"

// titleSeparator joins artist names in derived playlist titles.
const titleSeparator = " × "

// Model defines the base interface for all persistent models in the blend client.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Track is a song in a generated or saved blend, as returned by the backend.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Duration   string `json:"duration,omitempty"`
	AlbumArt   string `json:"albumArt,omitempty"`
	SpotifyURL string `json:"spotifyUrl,omitempty"`
}

// Artist is a single artist search suggestion.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Followers int    `json:"followers,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// HistoryEntry is one saved blend. Both the backend and the local cache slot
// serialize it with these field names.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artists   []string  `json:"artists"`
	Tracks    []Track   `json:"tracks"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeriveTitle builds a playlist title from its artists, e.g.
// "Abba × Queen Blend". With no artists it falls back to
// [DefaultPlaylistTitle].
func DeriveTitle(artists []string) string {
	if len(artists) == 0 {
		return DefaultPlaylistTitle
	}
	return strings.Join(artists, titleSeparator) + " Blend"
}

// ArtistsFromTitle recovers the artist list from a derived title. Legacy
// records stored before the artists field existed carry only the title; the
// trailing "Blend" suffix is stripped and the remainder split on the
// separator.
func ArtistsFromTitle(title string) []string {
	title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(title), "Blend"))
	if title == "" {
		return []string{}
	}

	parts := strings.Split(title, titleSeparator)
	artists := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			artists = append(artists, part)
		}
	}
	return artists
}

// NormalizeEntry coerces a history record of unknown provenance into canonical
// form. Records come from the backend, from the local cache slot, and from
// legacy cache versions, and any of id, title, artists, tracks, or createdAt
// may be absent.
//
// The id falls back to newID (typically [shared.GenerateID]), nil slices
// become empty, a zero createdAt becomes now, a missing title is derived from
// the artists, and a missing artist list is recovered from a derived title.
// The recovery only applies to titles carrying the separator; a custom title
// says nothing about the artists behind it.
func NormalizeEntry(entry HistoryEntry, newID func() string) HistoryEntry {
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.Tracks == nil {
		entry.Tracks = []Track{}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if len(entry.Artists) == 0 && strings.Contains(entry.Title, titleSeparator) {
		entry.Artists = ArtistsFromTitle(entry.Title)
	}
	if entry.Artists == nil {
		entry.Artists = []string{}
	}
	if entry.Title == "" {
		entry.Title = DeriveTitle(entry.Artists)
	}

	return entry
}
