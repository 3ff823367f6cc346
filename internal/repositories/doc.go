// Package repositories implements the client state store used to save and restore named pieces of state across runs.
//
// The [StateStore] is a tolerant key/value adapter: reads never fail and fall back to a caller supplied default
// when the store is unavailable, the key is absent, or the stored JSON no longer parses. Writes are fire-and-forget;
// failures are logged and otherwise ignored.
//
// Key Implementations:
//   - [SQLiteBackend] : persistent storage in the migrated "state" table
//   - [MemoryBackend] : process-lifetime storage backed by go-cache, used when no database is available
//
// Stored values carry no version; changing the shape of a persisted value is a breaking change for existing data.
package repositories
