package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/desertthunder/mvx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse launches the interactive catalog browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	if r.api == nil || r.sessions == nil {
		return fmt.Errorf("%w: gateway not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/mvx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.sessions.Initialize(ctx)

	// Pick up logins and logouts from other terminals while browsing.
	stop := r.sessions.Watch(ctx, r.config.Session.PollInterval())
	defer stop()

	model := ui.NewModel(ctx, r.api, r.sessions)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
