// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/streamlist/internal/formatter"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// command builds the root command with every subcommand bound to r.
func (r *Runner) command() *cli.Command {
	return &cli.Command{
		Name:    "streamlist",
		Usage:   "Search movies, keep favorites, and manage a watchlist",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and initialize the state database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead of applying pending ones",
			},
		},
		Action: r.Setup,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the TMDB search proxy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (overrides server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Check the search proxy health",
		Action: r.Status,
	}
}

// resultFlags returns the flags shared by commands that print a page of results.
func resultFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "direct",
			Usage: "Call TMDB directly instead of going through the proxy",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (" + strings.Join(formatter.Formats, ", ") + ")",
			Value:   formatter.FormatText,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search movies and print the results",
		ArgsUsage: "<query>",
		Flags: append(resultFlags(),
			&cli.IntFlag{
				Name:  "page",
				Usage: "Result page to show",
				Value: 1,
			},
		),
		Action: r.Search,
	}
}

func pageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "page",
		Usage: "Paginate the last search",
		Commands: []*cli.Command{
			{
				Name:   "next",
				Usage:  "Show the next page",
				Flags:  resultFlags(),
				Action: r.PageNext,
			},
			{
				Name:   "prev",
				Usage:  "Show the previous page",
				Flags:  resultFlags(),
				Action: r.PagePrev,
			},
			{
				Name:      "set",
				Usage:     "Jump to a page",
				ArgsUsage: "<n>",
				Flags:     resultFlags(),
				Action:    r.PageSet,
			},
			{
				Name:   "show",
				Usage:  "Print the current page without searching",
				Flags:  resultFlags(),
				Action: r.PageShow,
			},
		},
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Inspect and toggle favorite movies",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorite movie ids",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.FavoritesList,
			},
			{
				Name:      "toggle",
				Usage:     "Add or remove a movie from the favorites",
				ArgsUsage: "<id>",
				Action:    r.FavoritesToggle,
			},
		},
	}
}

func eventsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Print recent events, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of events to print (0 for all)",
				Value:   5,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Events,
	}
}

func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect or clear persisted state",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print every persisted key as JSON",
				Action: r.StateShow,
			},
			{
				Name:   "reset",
				Usage:  "Clear the persisted search, favorites, and events",
				Action: r.StateReset,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "direct",
				Usage: "Call TMDB directly instead of going through the proxy",
			},
			&cli.StringFlag{
				Name:  "tab",
				Usage: "Tab to open first (watchlist, movies)",
				Value: "watchlist",
			},
		},
		Action: r.TUI,
	}
}
