package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/artistblend/abx/internal/history"
	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/search"
	"github.com/artistblend/abx/internal/services"
	"github.com/artistblend/abx/internal/shared"
	"github.com/urfave/cli/v3"
)

// blendResult is the JSON output shape for the blend command.
type blendResult struct {
	Title   string         `json:"title"`
	Artists []string       `json:"artists"`
	Tracks  []models.Track `json:"tracks"`
	Demo    bool           `json:"demo,omitempty"`
	URL     string         `json:"url,omitempty"`
}

// Blend generates a blended track list for the given artists.
//
// Artists come from repeated --artist flags, a comma-separated positional
// argument, or both. When the backend cannot generate, the fixed sample
// tracks stand in so the command still shows something useful.
func (r *Runner) Blend(ctx context.Context, cmd *cli.Command) error {
	parts := cmd.StringSlice("artist")
	if arg := cmd.StringArg("artists"); arg != "" {
		parts = append(parts, arg)
	}

	draft := search.NewDraft()
	draft.SetInput(strings.Join(parts, ", "))
	if err := draft.Validate(); err != nil {
		return fmt.Errorf("%w: got %d", err, len(draft.Artists()))
	}

	artists := draft.Artists()
	title := models.DeriveTitle(artists)

	r.logger.Info("generating blend", "artists", len(artists))

	demo := false
	tracks, err := r.client.Generate(ctx, artists)
	if err != nil {
		r.logger.Warn("generation failed, substituting sample tracks", "error", err)
		tracks = services.DemoTracks()
		demo = true
	}

	result := blendResult{Title: title, Artists: artists, Tracks: tracks, Demo: demo}

	if cmd.Bool("create") && !demo {
		ids := make([]string, len(tracks))
		for i, track := range tracks {
			ids[i] = track.ID
		}

		playlistURL, err := r.client.CreatePlaylist(ctx, title, ids)
		if err != nil {
			return fmt.Errorf("failed to create playlist: %w", err)
		}
		result.URL = playlistURL
	}

	if cmd.Bool("save") && !demo {
		_, source, err := r.reconciler.Save(ctx, title, artists, tracks)
		if err != nil {
			return fmt.Errorf("failed to save blend: %w", err)
		}
		if source == history.SourceDegraded {
			r.logger.Warn("backend unreachable, blend saved to the local cache only")
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader(title)
	if demo {
		r.writePlainln("⚠ Playlist generation is unavailable, showing sample tracks.")
	}
	r.writePlain("\n")
	for i, track := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, track.Artist, track.Name)
		if track.Album != "" {
			r.writePlain("   Album: %s (%s)\n", track.Album, track.Duration)
		}
	}

	if result.URL != "" {
		r.writePlainln("✓ Playlist created: %s", result.URL)
		if cmd.Bool("open") {
			if err := shared.OpenBrowser(result.URL); err != nil {
				r.logger.Warnf("failed to open browser %v", err)
			}
		}
	}
	if cmd.Bool("save") {
		if demo {
			r.writePlainln("⚠ Sample tracks are not saved to history.")
		} else {
			r.writePlainln("✓ Blend saved to history")
		}
	}
	if cmd.Bool("create") && demo {
		r.writePlainln("⚠ Sample tracks cannot be turned into a playlist.")
	}

	return nil
}
