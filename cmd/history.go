package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/artistblend/abx/internal/history"
	"github.com/artistblend/abx/internal/repositories"
	"github.com/artistblend/abx/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList shows saved blends, newest first. When the backend is down the
// local cache is shown instead, flagged as such.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	outcome, err := r.reconciler.Load(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrLoginRequired) {
			r.writePlain("⚠ Login required. Run 'abx auth login' to see your saved blends.\n")
			return nil
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(outcome, cmd.Bool("pretty"))
	}

	if outcome.Source == history.SourceDegraded {
		r.writePlain("⚠ Backend unreachable, showing the local cache.\n\n")
	}

	if len(outcome.Entries) == 0 {
		r.writePlain("No blends saved yet. Run 'abx blend --save' to create one.\n")
		return nil
	}

	r.writePlain("%d playlists saved:\n\n", len(outcome.Entries))
	for i, entry := range outcome.Entries {
		r.writePlain("%d. %s\n", i+1, entry.Title)
		r.writePlain("   ID: %s\n", entry.ID)
		r.writePlain("   Tracks: %d\n", len(entry.Tracks))
		if !entry.CreatedAt.IsZero() {
			r.writePlain("   Saved: %s\n", entry.CreatedAt.Format("Jan 2, 2006"))
		}
		r.writePlain("\n")
	}

	return nil
}

// HistoryDelete removes a saved blend by ID. An ID that is not in the
// current history is a quiet no-op.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: entry id", shared.ErrMissingArgument)
	}

	outcome, err := r.reconciler.Load(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrLoginRequired) {
			r.writePlain("⚠ Login required. Run 'abx auth login' first.\n")
			return nil
		}
		return err
	}

	remaining, err := r.reconciler.Delete(ctx, id, outcome.Entries)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if len(remaining) == len(outcome.Entries) {
		r.writePlain("No blend with ID %s\n", id)
		return nil
	}

	r.writePlain("✓ Deleted blend %s (%d remaining)\n", id, len(remaining))
	return nil
}

// HistoryClear wipes the local history cache. The backend copy is untouched.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.reconciler.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.writePlain("✓ Local history cache cleared\n")
	return nil
}

// HistoryArchive copies the current history into the local archive database.
// Entries already archived are skipped.
func (r *Runner) HistoryArchive(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		}
	}

	outcome, err := r.reconciler.Load(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrLoginRequired) {
			r.writePlain("⚠ Login required. Run 'abx auth login' first.\n")
			return nil
		}
		return err
	}

	if len(outcome.Entries) == 0 {
		r.writePlain("Nothing to archive.\n")
		return nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := repositories.NewHistoryRepository(db)
	archived, err := r.reconciler.ArchiveAll(repo, outcome.Entries)
	if err != nil {
		return fmt.Errorf("archive failed: %w", err)
	}

	if outcome.Source == history.SourceDegraded {
		r.logger.Warn("archived from the local cache, backend unreachable")
	}

	r.writePlain("✓ Archived %d of %d blends (already archived entries are skipped)\n", archived, len(outcome.Entries))
	return nil
}
