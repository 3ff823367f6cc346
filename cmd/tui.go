package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/desertthunder/streamlist/internal/tasks"
	"github.com/desertthunder/streamlist/internal/ui"
	"github.com/desertthunder/streamlist/internal/watchlist"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI with the watchlist and movie search tabs.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	tab, err := parseTab(cmd.String("tab"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Client.LogFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	progressCh := make(chan tasks.ProgressUpdate, 32)
	model := ui.NewModel(ctx, ui.Options{
		Session:      r.newSession(cmd.Bool("direct"), progressCh),
		Progress:     progressCh,
		Watchlist:    watchlist.New(),
		ImageBaseURL: r.config.TMDB.ImageBaseURL,
		Logger:       fileLogger,
		StartTab:     tab,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func parseTab(name string) (ui.Tab, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "watchlist", "home":
		return ui.WatchlistTab, nil
	case "movies", "search":
		return ui.MoviesTab, nil
	default:
		return ui.WatchlistTab, fmt.Errorf("%w: unknown tab %q", shared.ErrInvalidArgument, name)
	}
}
