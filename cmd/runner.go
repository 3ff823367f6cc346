package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/repositories"
	"github.com/desertthunder/streamlist/internal/services"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/desertthunder/streamlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     services.SearchClient
	api        *services.APIService
	store      *repositories.StateStore
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Store is opened lazily from the configured database; a nil Client is chosen per command
// between the search proxy and the direct TMDB client.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     services.SearchClient
	API        *services.APIService
	Store      *repositories.StateStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.Client.ProxyURL, opts.HTTPClient)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		api:        opts.API,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the logger used by subsequent actions.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.store = r.store.WithLogger(logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, statusCommand, searchCommand, pageCommand,
		favoritesCommand, eventsCommand, stateCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore returns the persistence adapter, opening the configured database on first use.
//
// When the database cannot be opened the runner falls back to an in-memory backend so commands
// still work for the lifetime of the process.
func (r *Runner) openStore() *repositories.StateStore {
	if r.store != nil {
		return r.store
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		r.logger.Warn("state database unavailable, using in-memory state", "path", r.config.Database.Path, "error", err)
		r.store = repositories.NewStateStore(repositories.NewMemoryBackend(), r.logger)
		return r.store
	}

	r.db = db
	r.store = repositories.NewStateStore(repositories.NewSQLiteBackend(db), r.logger)
	return r.store
}

// searchClient picks the search backend: an injected client, the TMDB API directly, or the proxy.
func (r *Runner) searchClient(direct bool) services.SearchClient {
	switch {
	case r.client != nil:
		return r.client
	case direct:
		return services.NewTMDBServiceFromConfig(r.config, r.httpClient)
	default:
		return r.api
	}
}

// newSession creates a search session backed by the runner's store. The caller hydrates it.
func (r *Runner) newSession(direct bool, progress chan<- tasks.ProgressUpdate) *tasks.SearchSession {
	return tasks.NewSearchSession(tasks.SessionOptions{
		Client:   r.searchClient(direct),
		Store:    r.openStore(),
		Logger:   r.logger,
		Progress: progress,
	})
}

// session creates a hydrated search session backed by the runner's store.
func (r *Runner) session(direct bool, progress chan<- tasks.ProgressUpdate) *tasks.SearchSession {
	session := r.newSession(direct, progress)
	session.Hydrate()
	return session
}

// Close releases the database handle, if one was opened, along with the store built on it.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.store = nil
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
