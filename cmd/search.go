package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/streamlist/internal/formatter"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/desertthunder/streamlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Search runs a new search on --page (default 1) and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	progress, stop := r.watchProgress()
	defer stop()

	session := r.session(cmd.Bool("direct"), progress)

	page := int(cmd.Int("page"))
	r.logger.Info("searching", "query", query, "page", page)
	if err := session.SearchPage(ctx, query, page); err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	snap := session.Snapshot()
	if snap.Page != page {
		r.logger.Warn("page out of range", "requested", page, "showing", snap.Page, "pages", snap.TotalPages)
	}

	return r.writeResults(cmd, snap)
}

// PageNext re-runs the persisted search on the next page.
func (r *Runner) PageNext(ctx context.Context, cmd *cli.Command) error {
	return r.paginate(ctx, cmd, func(s *tasks.SearchSession) (bool, error) {
		return s.NextPage(ctx)
	})
}

// PagePrev re-runs the persisted search on the previous page.
func (r *Runner) PagePrev(ctx context.Context, cmd *cli.Command) error {
	return r.paginate(ctx, cmd, func(s *tasks.SearchSession) (bool, error) {
		return s.PrevPage(ctx)
	})
}

// PageSet re-runs the persisted search on the page given as the first argument.
func (r *Runner) PageSet(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("%w: page number is required", shared.ErrMissingArgument)
	}
	page, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: page must be a number, got %q", shared.ErrInvalidArgument, arg)
	}

	return r.paginate(ctx, cmd, func(s *tasks.SearchSession) (bool, error) {
		return s.SetPage(ctx, page)
	})
}

// PageShow prints the persisted results without a network call.
func (r *Runner) PageShow(ctx context.Context, cmd *cli.Command) error {
	session := r.session(cmd.Bool("direct"), nil)
	return r.writeResults(cmd, session.Snapshot())
}

func (r *Runner) paginate(ctx context.Context, cmd *cli.Command, move func(*tasks.SearchSession) (bool, error)) error {
	progress, stop := r.watchProgress()
	defer stop()

	session := r.session(cmd.Bool("direct"), progress)
	snap := session.Snapshot()
	if snap.Query == "" {
		return fmt.Errorf("%w: no saved search, run 'streamlist search <query>' first", shared.ErrMissingArgument)
	}

	changed, err := move(session)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if !changed {
		r.logger.Warn("page unchanged", "page", snap.Page, "pages", snap.TotalPages)
	}

	return r.writeResults(cmd, session.Snapshot())
}

// writeResults renders snap in the --format requested and writes it to --output or stdout.
func (r *Runner) writeResults(cmd *cli.Command, snap tasks.Snapshot) error {
	view := formatter.NewResultsView(snap, r.config.TMDB.ImageBaseURL)
	data, err := formatter.Format(cmd.String("format"), view)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.logger.Info("results written", "path", path, "results", len(view.Results))
		return r.writePlain("✓ Wrote %d results to %s\n", len(view.Results), path)
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// watchProgress starts a goroutine that logs session updates. The returned func closes the channel and waits.
func (r *Runner) watchProgress() (chan tasks.ProgressUpdate, func()) {
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.SearchFailed, tasks.SearchDiscarded:
				r.logger.Warn(update.Message, "phase", update.Phase)
			default:
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	return progressCh, func() {
		close(progressCh)
		<-done
	}
}

// FavoritesList prints the favorite ids, with titles for those in the saved results.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	snap := r.session(false, nil).Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(snap.Favorites, true)
	}

	if len(snap.Favorites) == 0 {
		return r.writePlain("No favorites yet.\n")
	}

	titles := make(map[int]string, len(snap.Results))
	for _, result := range snap.Results {
		titles[result.ID] = result.Title
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(snap.Favorites)))
	for _, id := range snap.Favorites {
		if title, ok := titles[id]; ok {
			r.writePlain("★ %d  %s\n", id, title)
		} else {
			r.writePlain("★ %d\n", id)
		}
	}
	return nil
}

// FavoritesToggle adds the movie id given as the first argument to the favorites, or removes it.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()
	if arg == "" {
		return fmt.Errorf("%w: movie id is required", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: movie id must be a number, got %q", shared.ErrInvalidArgument, arg)
	}

	if r.session(false, nil).ToggleFavorite(id) {
		return r.writePlain("★ Added %d to favorites\n", id)
	}
	return r.writePlain("☆ Removed %d from favorites\n", id)
}

// Events prints the newest entries of the event log.
func (r *Runner) Events(ctx context.Context, cmd *cli.Command) error {
	snap := r.session(false, nil).Snapshot()
	limit := int(cmd.Int("limit"))

	if cmd.Bool("json") {
		if limit <= 0 {
			limit = -1
		}
		return r.writeJSON(snap.RecentEvents(limit), true)
	}

	if len(snap.Events) == 0 {
		return r.writePlain("No events yet.\n")
	}

	_, err := r.output.Write(formatter.EventsToText(snap.Events, limit))
	return err
}

// StateShow prints every persisted key and its JSON value.
func (r *Runner) StateShow(ctx context.Context, cmd *cli.Command) error {
	state, err := r.openStore().Dump()
	if err != nil {
		return err
	}
	return r.writeJSON(state, true)
}

// StateReset clears the persisted search, favorites, and event log.
func (r *Runner) StateReset(ctx context.Context, cmd *cli.Command) error {
	r.session(false, nil).Reset()
	r.logger.Info("state cleared")
	return r.writePlain("✓ Cleared saved searches, favorites, and events\n")
}
