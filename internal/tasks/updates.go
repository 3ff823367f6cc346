package tasks

import (
	"fmt"

	"github.com/desertthunder/streamlist/internal/models"
)

// ProgressUpdate represents a state change in a [SearchSession].
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Kind of change
	Step    int    // Current page, where relevant
	Total   int    // Total pages, where relevant
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase enumerates session state changes.
type Phase int

const (
	Hydrated Phase = iota
	SearchStarted
	SearchCompleted
	SearchFailed
	SearchDiscarded
	SearchCleared
	FavoriteToggled
	PageChanged
	StateReset
)

func (p Phase) String() string {
	switch p {
	case Hydrated:
		return "hydrated"
	case SearchStarted:
		return "search_started"
	case SearchCompleted:
		return "search_completed"
	case SearchFailed:
		return "search_failed"
	case SearchDiscarded:
		return "search_discarded"
	case SearchCleared:
		return "search_cleared"
	case FavoriteToggled:
		return "favorite_toggled"
	case PageChanged:
		return "page_changed"
	case StateReset:
		return "state_reset"
	default:
		return ""
	}
}

func hydratedUpdate(query string, page, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Hydrated,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("Restored state (query %q)", query),
	}
}

func searchStartedUpdate(query string, page int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchStarted,
		Step:    page,
		Message: fmt.Sprintf("Searching for %q (page %d)...", query, page),
	}
}

func searchCompletedUpdate(query string, page, total int, results []models.SearchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCompleted,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("Found %d results for %q", len(results), query),
		Data:    results,
	}
}

func searchFailedUpdate(query string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchFailed,
		Message: fmt.Sprintf("Search for %q failed: %v", query, err),
		Data:    err,
	}
}

func searchDiscardedUpdate(query string, page int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchDiscarded,
		Step:    page,
		Message: fmt.Sprintf("Discarded stale results for %q", query),
	}
}

func searchClearedUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: SearchCleared, Message: "Cleared results"}
}

func favoriteToggledUpdate(id int, favorite bool) ProgressUpdate {
	verb := "Removed"
	if favorite {
		verb = "Added"
	}
	return ProgressUpdate{
		Phase:   FavoriteToggled,
		Message: fmt.Sprintf("%s favorite %d", verb, id),
		Data:    id,
	}
}

func pageChangedUpdate(page, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PageChanged,
		Step:    page,
		Total:   total,
		Message: fmt.Sprintf("Page %d of %d", page, total),
	}
}

func stateResetUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: StateReset, Message: "Cleared saved state"}
}
