package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artistblend/abx/internal/models"
)

// collector gathers delivered results for assertions.
type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) deliver(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) snapshot() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

func (c *collector) waitFor(t *testing.T, pred func([]Result) bool) []Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if results := c.snapshot(); pred(results) {
			return results
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for results, have %v", c.snapshot())
	return nil
}

func TestDebouncer(t *testing.T) {
	ctx := context.Background()

	t.Run("Rapid Keystrokes Fire One Lookup", func(t *testing.T) {
		var calls atomic.Int32
		var lastQuery atomic.Value
		lookup := func(ctx context.Context, q string) ([]models.Artist, error) {
			calls.Add(1)
			lastQuery.Store(q)
			return []models.Artist{{Name: "Taylor Swift"}}, nil
		}

		c := &collector{}
		d := NewDebouncer(lookup, c.deliver, nil)
		d.SetInterval(30 * time.Millisecond)

		// "T" is below the minimum and clears immediately; "Ta" and "Tay"
		// land inside one quiet period.
		d.Input(ctx, "T")
		d.Input(ctx, "Ta")
		d.Input(ctx, "Tay")

		c.waitFor(t, func(rs []Result) bool {
			return len(rs) == 2 && len(rs[1].Suggestions) == 1
		})

		if got := calls.Load(); got != 1 {
			t.Errorf("expected exactly one lookup, got %d", got)
		}
		if got := lastQuery.Load(); got != "Tay" {
			t.Errorf("expected lookup for 'Tay', got %v", got)
		}
	})

	t.Run("Short Fragment Clears Without Request", func(t *testing.T) {
		var calls atomic.Int32
		lookup := func(ctx context.Context, q string) ([]models.Artist, error) {
			calls.Add(1)
			return nil, nil
		}

		c := &collector{}
		d := NewDebouncer(lookup, c.deliver, nil)
		d.SetInterval(10 * time.Millisecond)

		d.Input(ctx, "T")

		results := c.waitFor(t, func(rs []Result) bool { return len(rs) == 1 })
		if len(results[0].Suggestions) != 0 {
			t.Errorf("expected empty suggestions, got %v", results[0].Suggestions)
		}

		time.Sleep(50 * time.Millisecond)
		if calls.Load() != 0 {
			t.Errorf("expected no lookup, got %d", calls.Load())
		}
	})

	t.Run("Stale Response Is Dropped", func(t *testing.T) {
		release := make(chan struct{})
		lookup := func(ctx context.Context, q string) ([]models.Artist, error) {
			if q == "Ab" {
				<-release
			}
			return []models.Artist{{Name: q}}, nil
		}

		c := &collector{}
		d := NewDebouncer(lookup, c.deliver, nil)
		d.SetInterval(10 * time.Millisecond)

		d.Input(ctx, "Ab")
		// Let the slow "Ab" lookup start, then supersede it.
		time.Sleep(30 * time.Millisecond)
		d.Input(ctx, "Abba")
		close(release)

		results := c.waitFor(t, func(rs []Result) bool { return len(rs) >= 1 })
		time.Sleep(50 * time.Millisecond)

		for _, r := range c.snapshot() {
			if r.Query == "Ab" {
				t.Errorf("stale result for %q was delivered", r.Query)
			}
		}
		if last := results[len(results)-1]; last.Query != "Abba" {
			t.Errorf("expected latest query delivered, got %q", last.Query)
		}
	})

	t.Run("Lookup Failure Delivers Inline Message", func(t *testing.T) {
		lookup := func(ctx context.Context, q string) ([]models.Artist, error) {
			return nil, errors.New("backend down")
		}

		c := &collector{}
		d := NewDebouncer(lookup, c.deliver, nil)
		d.SetInterval(10 * time.Millisecond)

		d.Input(ctx, "Tay")

		results := c.waitFor(t, func(rs []Result) bool { return len(rs) == 1 })
		if results[0].Err == "" {
			t.Error("expected inline error message")
		}
		if len(results[0].Suggestions) != 0 {
			t.Errorf("expected empty suggestions, got %v", results[0].Suggestions)
		}
	})

	t.Run("Stop Cancels Pending Lookup", func(t *testing.T) {
		var calls atomic.Int32
		lookup := func(ctx context.Context, q string) ([]models.Artist, error) {
			calls.Add(1)
			return nil, nil
		}

		c := &collector{}
		d := NewDebouncer(lookup, c.deliver, nil)
		d.SetInterval(30 * time.Millisecond)

		d.Input(ctx, "Tay")
		d.Stop()

		time.Sleep(80 * time.Millisecond)
		if calls.Load() != 0 {
			t.Errorf("expected no lookup after stop, got %d", calls.Load())
		}
	})
}
