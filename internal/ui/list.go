package ui

import (
	"fmt"

	"github.com/artistblend/abx/internal/models"
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = entryItem{}
	_ list.Item = trackItem{}
)

// entryItem wraps [models.HistoryEntry] to implement [list.Item].
type entryItem struct {
	entry models.HistoryEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string       { return i.entry.Title }
func (i entryItem) Description() string {
	return fmt.Sprintf("%d tracks • %s", len(i.entry.Tracks), i.entry.CreatedAt.Format("Jan 2, 2006"))
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.Duration != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Duration)
	}
	return desc
}
