// Package search implements the interactive artist lookup: a debounced
// suggestion pipeline and the comma-separated artist draft it feeds.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/artistblend/abx/internal/models"
	"github.com/charmbracelet/log"
)

const (
	// DebounceInterval is the quiet period after the last keystroke before
	// a lookup fires.
	DebounceInterval = 300 * time.Millisecond

	// MinQueryLength is the shortest fragment worth looking up.
	MinQueryLength = 2
)

// Lookup fetches suggestions for a fragment, typically
// [services.Client.SearchArtists].
type Lookup func(ctx context.Context, query string) ([]models.Artist, error)

// Result is one delivery from the debouncer. Err carries an inline message
// instead of an error value because lookup failures only ever surface as a
// note next to empty suggestions; they never abort the flow.
type Result struct {
	Query       string
	Generation  uint64
	Suggestions []models.Artist
	Err         string
}

// Debouncer coalesces keystrokes into at most one lookup per quiet period.
//
// Every Input bumps a generation counter and cancels the pending timer, so
// only the latest fragment's lookup fires, and a slow response that lands
// after a newer keystroke is dropped (last request wins).
type Debouncer struct {
	mu         sync.Mutex
	interval   time.Duration
	lookup     Lookup
	deliver    func(Result)
	logger     *log.Logger
	timer      *time.Timer
	generation uint64
}

// NewDebouncer creates a debouncer delivering results through the given
// callback. The callback runs on a timer goroutine.
func NewDebouncer(lookup Lookup, deliver func(Result), logger *log.Logger) *Debouncer {
	if logger == nil {
		logger = log.Default()
	}
	return &Debouncer{
		interval: DebounceInterval,
		lookup:   lookup,
		deliver:  deliver,
		logger:   logger,
	}
}

// SetInterval overrides the quiet period, mainly for tests.
func (d *Debouncer) SetInterval(interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interval = interval
}

// Input feeds the current fragment. Fragments below [MinQueryLength]
// deliver empty suggestions immediately and schedule nothing.
func (d *Debouncer) Input(ctx context.Context, fragment string) {
	fragment = strings.TrimSpace(fragment)

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
	generation := d.generation

	if len([]rune(fragment)) < MinQueryLength {
		d.mu.Unlock()
		d.deliver(Result{Query: fragment, Generation: generation})
		return
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.fire(ctx, fragment, generation)
	})
	d.mu.Unlock()
}

// fire runs the lookup and delivers unless a newer input superseded it.
func (d *Debouncer) fire(ctx context.Context, query string, generation uint64) {
	suggestions, err := d.lookup(ctx, query)

	d.mu.Lock()
	stale := generation != d.generation
	d.mu.Unlock()
	if stale {
		return
	}

	result := Result{Query: query, Generation: generation, Suggestions: suggestions}
	if err != nil {
		d.logger.Debug("artist lookup failed", "query", query, "error", err)
		result.Suggestions = nil
		result.Err = "suggestions unavailable"
	}
	d.deliver(result)
}

// Stop cancels any pending lookup.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.generation++
}
