// Package ui implements the navigation shell as a terminal interface using bubbletea's Elm architecture.
//
// The shell has a header with two tabs:
//  1. [WatchlistTab] : add, edit, complete, and delete watchlist items
//  2. [MoviesTab] : search movies, page through results, mark favorites, and see recent events
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Searches run as commands against the shared [tasks.SearchSession]; its progress channel drives re-renders while
// a search is in flight.
//
// The movies view shows a placeholder until the session has been hydrated from the state store.
//
// Each view has an input and a list. Typing goes to the input; esc or ↓ moves focus to the list, where
// single-key bindings apply (x, e, d on the watchlist; f, n, p on movies). Contextual help is rendered via
// charmbracelet/bubbles/help.
package ui
