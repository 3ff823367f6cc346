package models

import "time"

// Persisted state keys.
const (
	KeyQuery     = "lastSearchQuery"
	KeyResults   = "lastSearchResults"
	KeyFavorites = "favorites"
	KeyEvents    = "eventLog"
	KeyPage      = "lastSearchPage"
	KeyTotal     = "lastSearchTotalResults"
)

// StateKeys lists every key owned by the search view-model.
var StateKeys = []string{KeyQuery, KeyResults, KeyFavorites, KeyEvents, KeyPage, KeyTotal}

// MaxEvents caps the event log.
const MaxEvents = 50

// EventKind enumerates audited user actions.
type EventKind string

const (
	EventSearch         EventKind = "search"
	EventToggleFavorite EventKind = "toggle_favorite"
)

// EventLogEntry records one user action.
type EventLogEntry struct {
	Timestamp string         `json:"ts"`
	Type      EventKind      `json:"type"`
	Payload   map[string]any `json:"payload"`
}

// NewEventLogEntry stamps an entry with t formatted as RFC 3339 in UTC.
func NewEventLogEntry(t time.Time, kind EventKind, payload map[string]any) EventLogEntry {
	if payload == nil {
		payload = map[string]any{}
	}
	return EventLogEntry{
		Timestamp: t.UTC().Format(time.RFC3339Nano),
		Type:      kind,
		Payload:   payload,
	}
}

// ListItem is a watchlist entry.
type ListItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}
