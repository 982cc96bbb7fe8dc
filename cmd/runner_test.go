package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/artistblend/abx/internal/history"
	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/services"
	"github.com/artistblend/abx/internal/session"
	"github.com/artistblend/abx/internal/shared"
	tu "github.com/artistblend/abx/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// newTestRunner wires a runner against the given backend URL with state kept
// in temp dirs and output captured in the returned buffer.
func newTestRunner(t *testing.T, backendURL string) (*Runner, *session.Store, *bytes.Buffer) {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	output := &bytes.Buffer{}

	store := session.NewStore(t.TempDir())
	client := services.NewClient(backendURL, nil, store.AccessToken, logger)
	cache := history.NewCache(t.TempDir(), logger)
	reconciler := history.NewReconciler(client, cache, logger)
	resolver := session.NewResolver(store, client, logger)

	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		Client:     client,
		Store:      store,
		Resolver:   resolver,
		Reconciler: reconciler,
		Logger:     logger,
		Output:     output,
	})

	return runner, store, output
}

// run executes the CLI with the given args against the runner's registered commands.
func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "abx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"abx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("Output Helpers", func(t *testing.T) {
		t.Run("writeJSON surfaces writer failures", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})
			if err := runner.writeJSON(map[string]string{"k": "v"}, false); err == nil {
				t.Error("expected write error")
			}
		})

		t.Run("writePlain surfaces writer failures", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})
			if err := runner.writePlain("hello\n"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("prints matched artists", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if req.URL.Path != "/api/search/artists" {
					http.NotFound(w, req)
					return
				}
				json.NewEncoder(w).Encode(map[string]any{
					"artists": map[string]any{
						"items": []map[string]any{
							{"id": "a1", "name": "Taylor Swift", "followers": 95000000},
						},
					},
				})
			}))
			defer server.Close()

			runner, _, output := newTestRunner(t, server.URL)
			if err := run(runner, "search", "Tay"); err != nil {
				t.Fatalf("search failed: %v", err)
			}

			if !strings.Contains(output.String(), "Taylor Swift") {
				t.Errorf("expected artist name in output, got %q", output.String())
			}
			if !strings.Contains(output.String(), "Found 1 artists") {
				t.Errorf("expected match count in output, got %q", output.String())
			}
		})

		t.Run("requires a query", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, "http://127.0.0.1:1")
			err := run(runner, "search")
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("Blend", func(t *testing.T) {
		t.Run("requires three artists", func(t *testing.T) {
			runner, _, _ := newTestRunner(t, "http://127.0.0.1:1")
			err := run(runner, "blend", "--artist", "Abba", "--artist", "Queen")
			if !errors.Is(err, shared.ErrTooFewArtists) {
				t.Errorf("expected ErrTooFewArtists, got %v", err)
			}
		})

		t.Run("prints generated tracks", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"tracks": []models.Track{
						{ID: "t1", Name: "Dancing Queen", Artist: "Abba", Album: "Arrival", Duration: "3:52"},
					},
				})
			}))
			defer server.Close()

			runner, _, output := newTestRunner(t, server.URL)
			if err := run(runner, "blend", "Abba, Queen, Elton John"); err != nil {
				t.Fatalf("blend failed: %v", err)
			}

			if !strings.Contains(output.String(), "Abba × Queen × Elton John Blend") {
				t.Errorf("expected derived title in output, got %q", output.String())
			}
			if !strings.Contains(output.String(), "Dancing Queen") {
				t.Errorf("expected track in output, got %q", output.String())
			}
		})

		t.Run("falls back to sample tracks when generation fails", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			}))
			defer server.Close()

			runner, _, output := newTestRunner(t, server.URL)
			if err := run(runner, "blend", "Abba, Queen, Elton John"); err != nil {
				t.Fatalf("blend failed: %v", err)
			}

			if !strings.Contains(output.String(), "sample tracks") {
				t.Errorf("expected sample track warning, got %q", output.String())
			}
			if !strings.Contains(output.String(), "The Weeknd") {
				t.Errorf("expected demo track in output, got %q", output.String())
			}
		})
	})

	t.Run("HistoryList", func(t *testing.T) {
		t.Run("guides to login on an expired session", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			}))
			defer server.Close()

			runner, _, output := newTestRunner(t, server.URL)
			if err := run(runner, "history", "list"); err != nil {
				t.Fatalf("history list failed: %v", err)
			}

			if !strings.Contains(output.String(), "abx auth login") {
				t.Errorf("expected login guidance, got %q", output.String())
			}
		})

		t.Run("shows the cache when the backend is unreachable", func(t *testing.T) {
			runner, _, output := newTestRunner(t, "http://127.0.0.1:1")
			runner.reconciler.Save(context.Background(), "Abba × Queen Blend", []string{"Abba", "Queen"}, nil)

			if err := run(runner, "history", "list"); err != nil {
				t.Fatalf("history list failed: %v", err)
			}

			if !strings.Contains(output.String(), "local cache") {
				t.Errorf("expected degraded warning, got %q", output.String())
			}
			if !strings.Contains(output.String(), "Abba × Queen Blend") {
				t.Errorf("expected cached entry in output, got %q", output.String())
			}
		})
	})

	t.Run("AuthStatus", func(t *testing.T) {
		t.Run("reports a cold start as logged out", func(t *testing.T) {
			runner, _, output := newTestRunner(t, "http://127.0.0.1:1")
			if err := run(runner, "auth", "status"); err != nil {
				t.Fatalf("auth status failed: %v", err)
			}

			if !strings.Contains(output.String(), "Not logged in") {
				t.Errorf("expected logged out message, got %q", output.String())
			}
		})

		t.Run("reports a stored token as logged in", func(t *testing.T) {
			runner, store, output := newTestRunner(t, "http://127.0.0.1:1")
			store.SaveToken(&oauth2.Token{AccessToken: "tok"})

			if err := run(runner, "auth", "status"); err != nil {
				t.Fatalf("auth status failed: %v", err)
			}

			if !strings.Contains(output.String(), "Logged in") {
				t.Errorf("expected logged in message, got %q", output.String())
			}
		})
	})
}
