package main

import (
	"context"
	"fmt"

	"github.com/artistblend/abx/internal/shared"
	"github.com/artistblend/abx/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for building blends.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.client == nil || r.reconciler == nil || r.resolver == nil {
		return fmt.Errorf("%w: client not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/abx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.client, r.reconciler, r.resolver)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
