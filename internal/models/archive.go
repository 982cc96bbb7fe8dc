package models

import (
	"fmt"
	"time"
)

// ArchivedEntry is a [HistoryEntry] persisted to the local archive database.
//
// It wraps the entry DTO with a sequence number and lifecycle timestamps and
// implements [Model]. Fields are unexported so mutation goes through the
// repository layer.
type ArchivedEntry struct {
	id        string
	sequence  int
	entry     HistoryEntry
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewArchivedEntry wraps a normalized history entry for persistence.
// The database ID is assigned by the repository on Create.
func NewArchivedEntry(sequence int, entry HistoryEntry) *ArchivedEntry {
	now := time.Now()
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return &ArchivedEntry{
		sequence:  sequence,
		entry:     entry,
		createdAt: createdAt,
		updatedAt: now,
	}
}

func (a *ArchivedEntry) ID() string            { return a.id }
func (a *ArchivedEntry) Sequence() int         { return a.sequence }
func (a *ArchivedEntry) Entry() HistoryEntry   { return a.entry }
func (a *ArchivedEntry) EntryID() string       { return a.entry.ID }
func (a *ArchivedEntry) Title() string         { return a.entry.Title }
func (a *ArchivedEntry) Artists() []string     { return a.entry.Artists }
func (a *ArchivedEntry) Tracks() []Track       { return a.entry.Tracks }
func (a *ArchivedEntry) CreatedAt() time.Time  { return a.createdAt }
func (a *ArchivedEntry) UpdatedAt() time.Time  { return a.updatedAt }
func (a *ArchivedEntry) DeletedAt() *time.Time { return a.deletedAt }

func (a *ArchivedEntry) SetID(id string)             { a.id = id }
func (a *ArchivedEntry) SetSequence(sequence int)    { a.sequence = sequence }
func (a *ArchivedEntry) SetUpdatedAt(t time.Time)    { a.updatedAt = t }
func (a *ArchivedEntry) SetDeletedAt(t *time.Time)   { a.deletedAt = t }
func (a *ArchivedEntry) SetEntry(entry HistoryEntry) { a.entry = entry }

// Validate checks that the archived entry carries the fields the archive
// schema requires.
func (a *ArchivedEntry) Validate() error {
	if a.entry.ID == "" {
		return fmt.Errorf("archived entry missing source id")
	}
	if a.entry.Title == "" {
		return fmt.Errorf("archived entry missing title")
	}
	if a.sequence <= 0 {
		return fmt.Errorf("archived entry missing sequence")
	}
	return nil
}
