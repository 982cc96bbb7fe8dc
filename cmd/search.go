package main

import (
	"context"
	"fmt"

	"github.com/artistblend/abx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SearchArtists queries the backend for artist suggestions.
func (r *Runner) SearchArtists(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	artists, err := r.client.SearchArtists(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	if len(artists) == 0 {
		r.writePlain("No artists found for %q\n", query)
		return nil
	}

	r.writePlain("Found %d artists:\n\n", len(artists))
	for i, artist := range artists {
		r.writePlain("%d. %s\n", i+1, artist.Name)
		if artist.Followers > 0 {
			r.writePlain("   Followers: %d\n", artist.Followers)
		}
	}

	return nil
}
