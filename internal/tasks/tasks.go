// package tasks implements the movie search session: search, pagination, favorites, and the event log.
//
// The core abstraction is SearchSession, which owns the state, persists it through a [repositories.StateStore],
// and emits state changes via a channel for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/models"
	"github.com/desertthunder/streamlist/internal/repositories"
	"github.com/desertthunder/streamlist/internal/services"
	"github.com/desertthunder/streamlist/internal/shared"
)

const msgSearchFailed = "Search failed"

// SessionOptions configures a [SearchSession].
type SessionOptions struct {
	Client   services.SearchClient    // search backend
	Store    *repositories.StateStore // optional; nil disables persistence
	Logger   *log.Logger              // defaults to [shared.NewLogger]
	Progress chan<- ProgressUpdate    // optional; sends never block
	Now      func() time.Time         // clock for event timestamps
}

// Snapshot is an immutable copy of session state for rendering.
type Snapshot struct {
	Query        string
	Results      []models.SearchResult
	Favorites    []int
	Events       []models.EventLogEntry
	Loading      bool
	Error        string
	Page         int
	TotalResults int
	TotalPages   int
	Ready        bool
}

// IsFavorite reports whether id is in the favorite set.
func (s Snapshot) IsFavorite(id int) bool {
	return slices.Contains(s.Favorites, id)
}

// RecentEvents returns at most n of the newest events.
func (s Snapshot) RecentEvents(n int) []models.EventLogEntry {
	if n < 0 || n >= len(s.Events) {
		return s.Events
	}
	return s.Events[:n]
}

// SearchSession is the movie search view-model.
//
// All state is guarded by a mutex that is never held across a network call. Each issued search takes a sequence
// number and only the latest issued search may apply its outcome, so a slow earlier response never overwrites a
// newer one.
type SearchSession struct {
	mu       sync.Mutex
	client   services.SearchClient
	store    *repositories.StateStore
	logger   *log.Logger
	progress chan<- ProgressUpdate
	now      func() time.Time

	query        string
	results      []models.SearchResult
	favorites    []int
	events       []models.EventLogEntry
	loading      bool
	errMsg       string
	page         int
	totalResults int
	ready        bool
	seq          uint64
}

// NewSearchSession creates a session with default state. Call [SearchSession.Hydrate] before rendering.
func NewSearchSession(opts SessionOptions) *SearchSession {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SearchSession{
		client:    opts.Client,
		store:     opts.Store,
		logger:    opts.Logger,
		progress:  opts.Progress,
		now:       opts.Now,
		results:   []models.SearchResult{},
		favorites: []int{},
		events:    []models.EventLogEntry{},
		page:      1,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (s *SearchSession) sendProgress(update ProgressUpdate) {
	if s.progress == nil {
		return
	}
	select {
	case s.progress <- update:
	default:
	}
}

// Hydrate loads persisted state and marks the session ready. Unreadable values fall back to defaults.
//
// A restored page is clamped to [1, [models.MaxPage]] only; the total it must fit is not known until the next search.
func (s *SearchSession) Hydrate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = repositories.Read(s.store, models.KeyQuery, "")
	s.results = nonNil(repositories.Read(s.store, models.KeyResults, []models.SearchResult{}))
	s.favorites = dedupe(repositories.Read(s.store, models.KeyFavorites, []int{}))
	s.events = nonNil(repositories.Read(s.store, models.KeyEvents, []models.EventLogEntry{}))
	if len(s.events) > models.MaxEvents {
		s.events = s.events[:models.MaxEvents]
	}
	s.page = min(max(repositories.Read(s.store, models.KeyPage, 1), 1), models.MaxPage)
	s.totalResults = max(repositories.Read(s.store, models.KeyTotal, 0), 0)
	s.ready = true

	s.logger.Debug("session hydrated", "query", s.query, "results", len(s.results), "page", s.page)
	s.sendProgress(hydratedUpdate(s.query, s.page, s.totalPagesLocked()))
}

// Ready reports whether [SearchSession.Hydrate] has run.
func (s *SearchSession) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Restore re-runs the saved query once when it has no saved results.
func (s *SearchSession) Restore(ctx context.Context) error {
	s.mu.Lock()
	query := s.query
	need := s.ready && query != "" && len(s.results) == 0
	s.mu.Unlock()

	if !need {
		return nil
	}
	return s.Search(ctx, query)
}

// Search runs query at the current page.
//
// An empty query clears results without a network call. On failure the previous results are kept and the
// error message is recorded; the error is also returned. Outcomes of superseded searches are dropped.
func (s *SearchSession) Search(ctx context.Context, query string) error {
	s.mu.Lock()
	s.errMsg = ""
	s.query = query
	s.seq++
	seq := s.seq
	page := s.page
	s.store.Write(models.KeyQuery, query)

	if query == "" {
		s.results = []models.SearchResult{}
		s.totalResults = 0
		s.loading = false
		s.persistResultsLocked()
		s.sendProgress(searchClearedUpdate())
		s.mu.Unlock()
		return nil
	}

	s.loading = true
	s.sendProgress(searchStartedUpdate(query, page))
	s.mu.Unlock()

	var resp *models.SearchResponse
	var err error
	if s.client == nil {
		err = shared.ErrServiceUnavailable
	} else {
		resp, err = s.client.Search(ctx, query, page)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.Debug("discarding stale search", "query", query, "page", page)
		s.sendProgress(searchDiscardedUpdate(query, page))
		return nil
	}
	s.loading = false

	if err != nil {
		s.errMsg = ErrorMessage(err)
		s.logger.Warn("search failed", "query", query, "page", page, "error", err)
		s.sendProgress(searchFailedUpdate(query, err))
		return err
	}

	if resp == nil {
		resp = &models.SearchResponse{}
	}
	s.results = nonNil(resp.Results)
	s.totalResults = max(resp.TotalResults, 0)
	if last := s.totalPagesLocked(); s.page > last {
		s.page = last
		s.store.Write(models.KeyPage, s.page)
	}
	s.persistResultsLocked()
	s.logEventLocked(models.EventSearch, map[string]any{"q": query, "page": page})

	s.logger.Info("search completed", "query", query, "page", page, "results", len(s.results), "total", s.totalResults)
	s.sendProgress(searchCompletedUpdate(query, page, s.totalPagesLocked(), s.results))
	return nil
}

// NewSearch starts a fresh search from page 1.
func (s *SearchSession) NewSearch(ctx context.Context, query string) error {
	return s.SearchPage(ctx, query, 1)
}

// SearchPage runs query starting at page p in a single request.
//
// p is clamped to [1, MaxPage]; a page past the returned total falls back to the last page.
func (s *SearchSession) SearchPage(ctx context.Context, query string, p int) error {
	s.mu.Lock()
	s.page = min(max(p, 1), models.MaxPage)
	s.store.Write(models.KeyPage, s.page)
	s.mu.Unlock()

	return s.Search(ctx, query)
}

// ToggleFavorite adds id to the favorites or removes it, and logs the action.
func (s *SearchSession) ToggleFavorite(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorite := true
	if i := slices.Index(s.favorites, id); i >= 0 {
		s.favorites = slices.Delete(s.favorites, i, i+1)
		favorite = false
	} else {
		s.favorites = append(s.favorites, id)
	}

	s.store.Write(models.KeyFavorites, s.favorites)
	s.logEventLocked(models.EventToggleFavorite, map[string]any{"id": id})
	s.sendProgress(favoriteToggledUpdate(id, favorite))

	return favorite
}

// SetPage moves to page p and re-runs the current query.
//
// Requests outside [1, TotalPages] or for the current page are ignored and report false.
func (s *SearchSession) SetPage(ctx context.Context, p int) (bool, error) {
	s.mu.Lock()
	total := s.totalPagesLocked()
	if p < 1 || p > total || p == s.page {
		s.mu.Unlock()
		return false, nil
	}

	s.page = p
	s.store.Write(models.KeyPage, p)
	query := s.query
	s.sendProgress(pageChangedUpdate(p, total))
	s.mu.Unlock()

	return true, s.Search(ctx, query)
}

// NextPage moves one page forward.
func (s *SearchSession) NextPage(ctx context.Context) (bool, error) {
	return s.SetPage(ctx, s.Page()+1)
}

// PrevPage moves one page back.
func (s *SearchSession) PrevPage(ctx context.Context) (bool, error) {
	return s.SetPage(ctx, s.Page()-1)
}

// Page returns the current page.
func (s *SearchSession) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// LogEvent records a user action, newest first, keeping at most [models.MaxEvents].
func (s *SearchSession) LogEvent(kind models.EventKind, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logEventLocked(kind, payload)
}

func (s *SearchSession) logEventLocked(kind models.EventKind, payload map[string]any) {
	entry := models.NewEventLogEntry(s.now(), kind, payload)

	events := make([]models.EventLogEntry, 0, min(len(s.events)+1, models.MaxEvents))
	events = append(events, entry)
	events = append(events, s.events...)
	if len(events) > models.MaxEvents {
		events = events[:models.MaxEvents]
	}
	s.events = events

	s.store.Write(models.KeyEvents, s.events)
}

// Reset clears persisted and in-memory state. Searches in flight are discarded.
func (s *SearchSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.query = ""
	s.results = []models.SearchResult{}
	s.favorites = []int{}
	s.events = []models.EventLogEntry{}
	s.loading = false
	s.errMsg = ""
	s.page = 1
	s.totalResults = 0

	s.store.Clear(models.StateKeys...)
	s.sendProgress(stateResetUpdate())
}

// Snapshot returns a copy of the current state.
func (s *SearchSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Query:        s.query,
		Results:      slices.Clone(s.results),
		Favorites:    slices.Clone(s.favorites),
		Events:       slices.Clone(s.events),
		Loading:      s.loading,
		Error:        s.errMsg,
		Page:         s.page,
		TotalResults: s.totalResults,
		TotalPages:   s.totalPagesLocked(),
		Ready:        s.ready,
	}
}

func (s *SearchSession) totalPagesLocked() int {
	return models.TotalPages(s.totalResults)
}

func (s *SearchSession) persistResultsLocked() {
	s.store.Write(models.KeyResults, s.results)
	s.store.Write(models.KeyTotal, s.totalResults)
}

// ErrorMessage converts a search error into the message shown to users.
func ErrorMessage(err error) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if err == nil || err.Error() == "" {
		return msgSearchFailed
	}
	return err.Error()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func dedupe(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
