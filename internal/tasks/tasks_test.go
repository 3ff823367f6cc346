package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/streamlist/internal/models"
	"github.com/desertthunder/streamlist/internal/repositories"
	"github.com/desertthunder/streamlist/internal/services"
	"github.com/desertthunder/streamlist/internal/shared"
	tu "github.com/desertthunder/streamlist/internal/testing"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func batman() *models.SearchResponse {
	return tu.NewSearchResponse(25, models.SearchResult{ID: 268, Title: "Batman", ReleaseDate: "1989-06-23"})
}

func newSession(t *testing.T, client services.SearchClient) (*SearchSession, *repositories.StateStore) {
	t.Helper()

	logger := shared.NewLogger(&bytes.Buffer{})
	store := repositories.NewStateStore(repositories.NewMemoryBackend(), logger)
	session := NewSearchSession(SessionOptions{Client: client, Store: store, Logger: logger, Now: fixedNow})
	session.Hydrate()

	return session, store
}

func TestSearchSession_Search(t *testing.T) {
	t.Run("Successful Search", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, store := newSession(t, client)

		if err := session.Search(context.Background(), "batman"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap := session.Snapshot()
		if len(snap.Results) != 1 || snap.Results[0].Title != "Batman" {
			t.Errorf("unexpected results %+v", snap.Results)
		}
		if snap.TotalResults != 25 || snap.TotalPages != 2 {
			t.Errorf("expected 25 results over 2 pages, got %d over %d", snap.TotalResults, snap.TotalPages)
		}
		if snap.Loading || snap.Error != "" {
			t.Errorf("expected idle session, got loading=%v error=%q", snap.Loading, snap.Error)
		}

		if len(snap.Events) != 1 {
			t.Fatalf("expected one event, got %d", len(snap.Events))
		}
		event := snap.Events[0]
		if event.Type != models.EventSearch || event.Payload["q"] != "batman" || event.Payload["page"] != 1 {
			t.Errorf("unexpected event %+v", event)
		}
		if event.Timestamp != "2024-05-01T12:00:00Z" {
			t.Errorf("unexpected timestamp %s", event.Timestamp)
		}

		calls := client.Calls()
		if len(calls) != 1 || calls[0] != (tu.SearchCall{Query: "batman", Page: 1}) {
			t.Errorf("unexpected calls %+v", calls)
		}

		if got := repositories.Read(store, models.KeyQuery, ""); got != "batman" {
			t.Errorf("expected persisted query, got %q", got)
		}
		if got := repositories.Read(store, models.KeyResults, []models.SearchResult{}); len(got) != 1 {
			t.Errorf("expected persisted results, got %v", got)
		}
	})

	t.Run("Empty Query Clears Without Network Call", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, _ := newSession(t, client)

		_ = session.Search(context.Background(), "batman")
		if err := session.Search(context.Background(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		snap := session.Snapshot()
		if len(snap.Results) != 0 || snap.TotalResults != 0 {
			t.Errorf("expected cleared results, got %d/%d", len(snap.Results), snap.TotalResults)
		}
		if len(client.Calls()) != 1 {
			t.Errorf("expected no call for empty query, got %d calls", len(client.Calls()))
		}
		if len(snap.Events) != 1 {
			t.Errorf("expected no event for empty query, got %d events", len(snap.Events))
		}
	})

	t.Run("Failure Keeps Previous Results", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, _ := newSession(t, client)
		_ = session.Search(context.Background(), "batman")

		client.Response, client.Err = nil, &services.APIError{StatusCode: 401, Message: "Invalid API key"}
		err := session.Search(context.Background(), "superman")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected API error, got %v", err)
		}

		snap := session.Snapshot()
		if snap.Error != "Invalid API key" {
			t.Errorf("expected error message, got %q", snap.Error)
		}
		if len(snap.Results) != 1 || snap.Results[0].Title != "Batman" {
			t.Errorf("expected previous results kept, got %+v", snap.Results)
		}
		if snap.Query != "superman" {
			t.Errorf("expected query recorded, got %q", snap.Query)
		}
		if snap.Loading {
			t.Error("expected loading cleared")
		}
		if len(snap.Events) != 1 {
			t.Errorf("expected no event for failed search, got %d", len(snap.Events))
		}
	})

	t.Run("Next Search Clears Error", func(t *testing.T) {
		client := &tu.MockSearchClient{Err: errors.New("boom")}
		session, _ := newSession(t, client)
		_ = session.Search(context.Background(), "x")

		client.Err, client.Response = nil, batman()
		_ = session.Search(context.Background(), "batman")

		if got := session.Snapshot().Error; got != "" {
			t.Errorf("expected error cleared, got %q", got)
		}
	})

	t.Run("Missing Fields Become Empty", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: &models.SearchResponse{}}
		session, _ := newSession(t, client)

		_ = session.Search(context.Background(), "x")

		snap := session.Snapshot()
		if snap.Results == nil || len(snap.Results) != 0 || snap.TotalResults != 0 || snap.TotalPages != 1 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
	})

	t.Run("No Client", func(t *testing.T) {
		session, _ := newSession(t, nil)

		err := session.Search(context.Background(), "batman")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("NewSearch Resets Page", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, _ := newSession(t, client)
		_ = session.Search(context.Background(), "batman")
		_, _ = session.NextPage(context.Background())

		_ = session.NewSearch(context.Background(), "alien")

		calls := client.Calls()
		last := calls[len(calls)-1]
		if last.Query != "alien" || last.Page != 1 {
			t.Errorf("expected alien page 1, got %+v", last)
		}
	})

	t.Run("SearchPage Issues One Request", func(t *testing.T) {
		tests := []struct {
			name     string
			page     int
			wantCall int
			wantPage int
		}{
			{name: "In Range", page: 2, wantCall: 2, wantPage: 2},
			{name: "Below One", page: 0, wantCall: 1, wantPage: 1},
			{name: "Past Total", page: 7, wantCall: 7, wantPage: 2},
			{name: "Past Max", page: 9000, wantCall: models.MaxPage, wantPage: 2},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client := &tu.MockSearchClient{Response: batman()}
				session, store := newSession(t, client)

				if err := session.SearchPage(context.Background(), "batman", tt.page); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				calls := client.Calls()
				if len(calls) != 1 || calls[0].Page != tt.wantCall {
					t.Errorf("expected one call for page %d, got %+v", tt.wantCall, calls)
				}
				if got := session.Page(); got != tt.wantPage {
					t.Errorf("expected page %d, got %d", tt.wantPage, got)
				}
				if got := repositories.Read(store, models.KeyPage, 0); got != tt.wantPage {
					t.Errorf("expected persisted page %d, got %d", tt.wantPage, got)
				}
				if events := session.Snapshot().Events; len(events) != 1 {
					t.Errorf("expected one search event, got %d", len(events))
				}
			})
		}
	})
}

func TestSearchSession_Overlap(t *testing.T) {
	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})

	client := &tu.MockSearchClient{
		SearchFunc: func(ctx context.Context, query string, page int) (*models.SearchResponse, error) {
			if query == "slow" {
				close(slowStarted)
				<-slowRelease
				return tu.NewSearchResponse(1, models.SearchResult{ID: 1, Title: "Slow"}), nil
			}
			return tu.NewSearchResponse(1, models.SearchResult{ID: 2, Title: "Fast"}), nil
		},
	}
	session, _ := newSession(t, client)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = session.Search(context.Background(), "slow")
	}()

	<-slowStarted
	if !session.Snapshot().Loading {
		t.Error("expected loading while the slow search is in flight")
	}

	if err := session.Search(context.Background(), "fast"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(slowRelease)
	wg.Wait()

	snap := session.Snapshot()
	if len(snap.Results) != 1 || snap.Results[0].Title != "Fast" {
		t.Errorf("expected newest results to win, got %+v", snap.Results)
	}
	if snap.Query != "fast" {
		t.Errorf("expected query fast, got %q", snap.Query)
	}
	if len(snap.Events) != 1 {
		t.Errorf("expected only the applied search logged, got %d events", len(snap.Events))
	}
}

func TestSearchSession_Favorites(t *testing.T) {
	t.Run("Double Toggle Restores Set", func(t *testing.T) {
		session, store := newSession(t, &tu.MockSearchClient{})

		if !session.ToggleFavorite(10) {
			t.Error("expected first toggle to add")
		}
		session.ToggleFavorite(20)
		if session.ToggleFavorite(10) {
			t.Error("expected second toggle to remove")
		}

		snap := session.Snapshot()
		if len(snap.Favorites) != 1 || snap.Favorites[0] != 20 {
			t.Errorf("expected [20], got %v", snap.Favorites)
		}
		if snap.IsFavorite(10) || !snap.IsFavorite(20) {
			t.Error("unexpected favorite membership")
		}
		if len(snap.Events) != 3 || snap.Events[0].Type != models.EventToggleFavorite || snap.Events[0].Payload["id"] != 10 {
			t.Errorf("unexpected events %+v", snap.Events)
		}

		if got := repositories.Read(store, models.KeyFavorites, []int{}); len(got) != 1 || got[0] != 20 {
			t.Errorf("expected persisted [20], got %v", got)
		}
	})

	t.Run("Insertion Order", func(t *testing.T) {
		session, _ := newSession(t, &tu.MockSearchClient{})
		for _, id := range []int{3, 1, 2} {
			session.ToggleFavorite(id)
		}

		if got := fmt.Sprint(session.Snapshot().Favorites); got != "[3 1 2]" {
			t.Errorf("expected insertion order, got %s", got)
		}
	})
}

func TestSearchSession_Pagination(t *testing.T) {
	t.Run("Bounds", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, _ := newSession(t, client)
		ctx := context.Background()
		_ = session.Search(ctx, "batman")

		tests := []struct {
			name    string
			page    int
			changed bool
			want    int
		}{
			{"below range", 0, false, 1},
			{"same page", 1, false, 1},
			{"above total", 3, false, 1},
			{"valid", 2, true, 2},
			{"far above", 500, false, 2},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				changed, err := session.SetPage(ctx, tt.page)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if changed != tt.changed {
					t.Errorf("expected changed=%v, got %v", tt.changed, changed)
				}
				if got := session.Page(); got != tt.want {
					t.Errorf("expected page %d, got %d", tt.want, got)
				}
			})
		}
	})

	t.Run("Page Change Re-Runs Query", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, store := newSession(t, client)
		ctx := context.Background()
		_ = session.Search(ctx, "batman")

		if changed, _ := session.NextPage(ctx); !changed {
			t.Fatal("expected next page to change page")
		}
		if changed, _ := session.NextPage(ctx); changed {
			t.Error("expected next page past the last page to be a no-op")
		}

		calls := client.Calls()
		if len(calls) != 2 || calls[1] != (tu.SearchCall{Query: "batman", Page: 2}) {
			t.Errorf("unexpected calls %+v", calls)
		}
		if got := repositories.Read(store, models.KeyPage, 0); got != 2 {
			t.Errorf("expected persisted page 2, got %d", got)
		}

		if changed, _ := session.PrevPage(ctx); !changed || session.Page() != 1 {
			t.Errorf("expected prev page to return to 1, got %d", session.Page())
		}
		if changed, _ := session.PrevPage(ctx); changed {
			t.Error("expected prev page before the first page to be a no-op")
		}
	})

	t.Run("Total Pages Capped", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: tu.NewSearchResponse(1_000_000)}
		session, _ := newSession(t, client)
		ctx := context.Background()
		_ = session.Search(ctx, "a")

		if got := session.Snapshot().TotalPages; got != models.MaxPage {
			t.Errorf("expected %d pages, got %d", models.MaxPage, got)
		}
		if changed, _ := session.SetPage(ctx, models.MaxPage+1); changed {
			t.Error("expected page beyond the cap to be rejected")
		}
		if changed, _ := session.SetPage(ctx, models.MaxPage); !changed {
			t.Error("expected last page to be accepted")
		}
	})

	t.Run("Page Stays In Range", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: tu.NewSearchResponse(45)}
		session, _ := newSession(t, client)
		ctx := context.Background()
		_ = session.Search(ctx, "a")

		for _, p := range []int{-1, 0, 4, 3, 2, 99, 1, 3} {
			_, _ = session.SetPage(ctx, p)
			snap := session.Snapshot()
			if snap.Page < 1 || snap.Page > snap.TotalPages {
				t.Fatalf("page %d outside [1, %d] after SetPage(%d)", snap.Page, snap.TotalPages, p)
			}
		}
	})

	t.Run("Total Shrinks Between Pages", func(t *testing.T) {
		client := &tu.MockSearchClient{
			SearchFunc: func(ctx context.Context, query string, page int) (*models.SearchResponse, error) {
				if page == 1 {
					return tu.NewSearchResponse(60), nil
				}
				return tu.NewSearchResponse(20), nil
			},
		}
		session, store := newSession(t, client)
		ctx := context.Background()
		_ = session.Search(ctx, "a")

		if changed, err := session.SetPage(ctx, 3); !changed || err != nil {
			t.Fatalf("expected page 3 to be accepted, got changed=%v err=%v", changed, err)
		}

		snap := session.Snapshot()
		if snap.TotalPages != 1 || snap.Page != 1 {
			t.Errorf("expected page pulled back to 1 of 1, got %d of %d", snap.Page, snap.TotalPages)
		}
		if got := repositories.Read(store, models.KeyPage, 0); got != 1 {
			t.Errorf("expected persisted page 1, got %d", got)
		}
	})

	t.Run("Prev Works After Total Shrinks", func(t *testing.T) {
		client := &tu.MockSearchClient{
			SearchFunc: func(ctx context.Context, query string, page int) (*models.SearchResponse, error) {
				if page == 1 {
					return tu.NewSearchResponse(100), nil
				}
				return tu.NewSearchResponse(70), nil
			},
		}
		session, _ := newSession(t, client)
		ctx := context.Background()
		_ = session.Search(ctx, "a")

		if changed, _ := session.SetPage(ctx, 5); !changed {
			t.Fatal("expected page 5 to be accepted")
		}
		if got := session.Page(); got != 4 {
			t.Fatalf("expected page clamped to 4, got %d", got)
		}
		if changed, _ := session.PrevPage(ctx); !changed || session.Page() != 3 {
			t.Errorf("expected prev to move to 3, got changed=%v page=%d", changed, session.Page())
		}
	})
}

func TestSearchSession_EventLog(t *testing.T) {
	session, store := newSession(t, &tu.MockSearchClient{})

	for i := 0; i < models.MaxEvents+1; i++ {
		session.LogEvent(models.EventToggleFavorite, map[string]any{"id": i})
	}

	snap := session.Snapshot()
	if len(snap.Events) != models.MaxEvents {
		t.Fatalf("expected %d events, got %d", models.MaxEvents, len(snap.Events))
	}
	if snap.Events[0].Payload["id"] != models.MaxEvents {
		t.Errorf("expected newest first, got %v", snap.Events[0].Payload)
	}
	if snap.Events[len(snap.Events)-1].Payload["id"] != 1 {
		t.Errorf("expected oldest entry dropped, got %v", snap.Events[len(snap.Events)-1].Payload)
	}
	if got := len(snap.RecentEvents(5)); got != 5 {
		t.Errorf("expected 5 recent events, got %d", got)
	}

	persisted := repositories.Read(store, models.KeyEvents, []models.EventLogEntry{})
	if len(persisted) != models.MaxEvents {
		t.Errorf("expected %d persisted events, got %d", models.MaxEvents, len(persisted))
	}
}

func TestSearchSession_Lifecycle(t *testing.T) {
	t.Run("Not Ready Before Hydrate", func(t *testing.T) {
		session := NewSearchSession(SessionOptions{Logger: shared.NewLogger(&bytes.Buffer{})})

		if session.Ready() {
			t.Error("expected session not ready before hydrate")
		}
		if err := session.Restore(context.Background()); err != nil {
			t.Errorf("unexpected restore error: %v", err)
		}
	})

	t.Run("Hydrate Restores Persisted State", func(t *testing.T) {
		logger := shared.NewLogger(&bytes.Buffer{})
		store := repositories.NewStateStore(repositories.NewMemoryBackend(), logger)
		store.Write(models.KeyQuery, "dune")
		store.Write(models.KeyResults, []models.SearchResult{{ID: 438631, Title: "Dune"}})
		store.Write(models.KeyFavorites, []int{7, 7, 8})
		store.Write(models.KeyPage, 900)
		store.Write(models.KeyTotal, 60)

		client := &tu.MockSearchClient{}
		session := NewSearchSession(SessionOptions{Client: client, Store: store, Logger: logger})
		session.Hydrate()

		snap := session.Snapshot()
		if !snap.Ready || snap.Query != "dune" || len(snap.Results) != 1 {
			t.Errorf("unexpected snapshot %+v", snap)
		}
		if fmt.Sprint(snap.Favorites) != "[7 8]" {
			t.Errorf("expected duplicate favorites dropped, got %v", snap.Favorites)
		}
		if snap.Page != models.MaxPage {
			t.Errorf("expected page clamped to %d, got %d", models.MaxPage, snap.Page)
		}
		if snap.TotalPages != 3 {
			t.Errorf("expected 3 total pages, got %d", snap.TotalPages)
		}

		if err := session.Restore(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Calls()) != 0 {
			t.Error("expected no restore search when results were saved")
		}
	})

	t.Run("Corrupt Favorites Fall Back", func(t *testing.T) {
		logger := shared.NewLogger(&bytes.Buffer{})
		backend := repositories.NewMemoryBackend()
		_ = backend.Set(models.KeyFavorites, []byte("not json"))

		session := NewSearchSession(SessionOptions{Store: repositories.NewStateStore(backend, logger), Logger: logger})
		session.Hydrate()

		if favs := session.Snapshot().Favorites; favs == nil || len(favs) != 0 {
			t.Errorf("expected empty favorites, got %v", favs)
		}
	})

	t.Run("Restore Re-Runs Saved Query", func(t *testing.T) {
		logger := shared.NewLogger(&bytes.Buffer{})
		store := repositories.NewStateStore(repositories.NewMemoryBackend(), logger)
		store.Write(models.KeyQuery, "batman")

		client := &tu.MockSearchClient{Response: batman()}
		session := NewSearchSession(SessionOptions{Client: client, Store: store, Logger: logger})
		session.Hydrate()

		if err := session.Restore(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(client.Calls()) != 1 || len(session.Snapshot().Results) != 1 {
			t.Errorf("expected one restore search, got %d calls", len(client.Calls()))
		}
	})

	t.Run("Reset", func(t *testing.T) {
		client := &tu.MockSearchClient{Response: batman()}
		session, store := newSession(t, client)
		_ = session.Search(context.Background(), "batman")
		session.ToggleFavorite(268)

		session.Reset()

		snap := session.Snapshot()
		if snap.Query != "" || len(snap.Results) != 0 || len(snap.Favorites) != 0 || len(snap.Events) != 0 || snap.Page != 1 {
			t.Errorf("expected default state, got %+v", snap)
		}
		if got := repositories.Read(store, models.KeyQuery, "none"); got != "none" {
			t.Errorf("expected persisted query removed, got %q", got)
		}
	})
}

func TestSearchSession_Progress(t *testing.T) {
	progress := make(chan ProgressUpdate, 10)
	logger := shared.NewLogger(&bytes.Buffer{})
	session := NewSearchSession(SessionOptions{
		Client:   &tu.MockSearchClient{Response: batman()},
		Logger:   logger,
		Progress: progress,
	})
	session.Hydrate()
	_ = session.Search(context.Background(), "batman")
	close(progress)

	var phases []string
	for update := range progress {
		phases = append(phases, update.Phase.String())
	}

	want := "[hydrated search_started search_completed]"
	if fmt.Sprint(phases) != want {
		t.Errorf("expected %s, got %v", want, phases)
	}
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	progress := make(chan ProgressUpdate)
	session := NewSearchSession(SessionOptions{Logger: shared.NewLogger(&bytes.Buffer{}), Progress: progress})

	done := make(chan struct{})
	go func() {
		session.Hydrate()
		session.ToggleFavorite(1)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("progress reporting blocked the session")
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api error", &services.APIError{StatusCode: 401, Message: "Invalid API key"}, "Invalid API key"},
		{"wrapped api error", fmt.Errorf("proxy: %w", &services.APIError{StatusCode: 500}), "Search failed: 500"},
		{"plain error", errors.New("network down"), "network down"},
		{"empty error", errors.New(""), "Search failed"},
		{"nil", nil, "Search failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
