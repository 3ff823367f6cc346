// Package tasks holds the movie search session shared by the CLI and the TUI.
//
// # Lifecycle
//
// A [SearchSession] is created with defaults by [NewSearchSession], then [SearchSession.Hydrate] loads the
// persisted query, results, favorites, event log, and page and flips [SearchSession.Ready]. Views render nothing
// until then. [SearchSession.Restore] re-runs a saved query whose results were not saved.
//
// # Operations
//
//   - [SearchSession.Search] : run the query at the current page; an empty query clears results locally
//   - [SearchSession.NewSearch] : same, from page 1
//   - [SearchSession.SetPage], [SearchSession.NextPage], [SearchSession.PrevPage] : move within
//     [1, TotalPages] and re-run the query; other requests are no-ops
//   - [SearchSession.ToggleFavorite] : symmetric toggle of a result id
//   - [SearchSession.LogEvent] : prepend to the event log, capped at 50
//   - [SearchSession.Reset] : clear everything, including persisted keys
//
// Every state change is written through the [repositories.StateStore]; writes never fail the operation.
//
// # Overlapping Searches
//
// Searches may overlap when driven from bubbletea commands. Each issued search takes a sequence number and
// only the most recently issued one may apply its outcome. Superseded responses, successful or not, are dropped.
//
// # Progress Reporting
//
// State changes are announced on an optional channel of [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
package tasks
