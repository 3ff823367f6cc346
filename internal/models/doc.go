// Package models defines the domain types shared by the StreamList proxy, view-model, and clients.
//
// The package contains two categories of types:
//
// 1. Upstream records: immutable data received from the movie database
//   - [SearchResult] : one matched title with an optional poster and release date
//   - [SearchResponse] : one page of results with the total match count
//
// 2. Client state: values persisted by the local state store
//   - [EventLogEntry] : a bounded audit trail of user actions, newest first
//   - [ListItem] : a watchlist entry addressed by a stable opaque ID
//
// Persisted values are serialized as JSON under the keys declared in this package.
package models
