package search

import (
	"fmt"
	"strings"

	"github.com/artistblend/abx/internal/shared"
)

// MinArtists is how many distinct artists a blend needs.
const MinArtists = 3

// Fragment returns the segment after the last comma, trimmed. This is the
// piece of a comma-separated artist list the user is currently typing and
// the only part worth looking up.
func Fragment(input string) string {
	if idx := strings.LastIndex(input, ","); idx >= 0 {
		input = input[idx+1:]
	}
	return strings.TrimSpace(input)
}

// Draft is the comma-separated artist list under construction. Artist
// names are compared case-sensitively: "abba" and "Abba" are two artists
// as far as the draft is concerned, the backend decides what they resolve
// to.
type Draft struct {
	input string
}

// NewDraft starts an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// Input returns the raw text as typed.
func (d *Draft) Input() string {
	return d.input
}

// SetInput replaces the raw text, e.g. from a text field change.
func (d *Draft) SetInput(input string) {
	d.input = input
}

// Fragment returns the trailing segment currently being typed.
func (d *Draft) Fragment() string {
	return Fragment(d.input)
}

// Artists returns the ordered distinct artist names in the draft. Empty
// segments and repeats after the first occurrence are dropped.
func (d *Draft) Artists() []string {
	parts := strings.Split(d.input, ",")
	seen := make(map[string]bool, len(parts))
	artists := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		artists = append(artists, name)
	}
	return artists
}

// contains reports whether name is already a committed artist. The
// trailing fragment does not count as committed.
func (d *Draft) contains(name string, artists []string) bool {
	for _, artist := range artists {
		if artist == name {
			return true
		}
	}
	return false
}

// Add appends a complete artist name to the draft.
func (d *Draft) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty artist name", shared.ErrInvalidInput)
	}
	if d.contains(name, d.Artists()) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateArtist, name)
	}

	if strings.TrimSpace(d.input) == "" {
		d.input = name
	} else {
		d.input = strings.TrimRight(strings.TrimSpace(d.input), ",") + ", " + name
	}
	return nil
}

// ReplaceFragment splices a chosen suggestion over the trailing fragment,
// so "Abba, Queen, Elt" plus "Elton John" becomes "Abba, Queen, Elton John".
func (d *Draft) ReplaceFragment(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty artist name", shared.ErrInvalidInput)
	}

	committed := d.input
	if idx := strings.LastIndex(committed, ","); idx >= 0 {
		committed = committed[:idx]
	} else {
		committed = ""
	}

	prior := &Draft{input: committed}
	if d.contains(name, prior.Artists()) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateArtist, name)
	}

	if committed == "" {
		d.input = name
	} else {
		d.input = committed + ", " + name
	}
	return nil
}

// Ready reports whether the draft has enough artists to submit.
func (d *Draft) Ready() bool {
	return len(d.Artists()) >= MinArtists
}

// Validate returns the error shown when submitting an unready draft.
func (d *Draft) Validate() error {
	if artists := d.Artists(); len(artists) < MinArtists {
		return fmt.Errorf("%w: need at least %d artists, have %d", shared.ErrTooFewArtists, MinArtists, len(artists))
	}
	return nil
}
