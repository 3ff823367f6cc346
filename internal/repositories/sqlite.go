package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteBackend implements [Backend] over the "state" table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend creates a [SQLiteBackend] with the given (migrated) database connection.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// Get retrieves the value stored under key.
func (b *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	var value string
	err := b.db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query state: %w", err)
	}

	return []byte(value), true, nil
}

// Set upserts value under key.
func (b *SQLiteBackend) Set(key string, value []byte) error {
	query := `
		INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := b.db.Exec(query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	return nil
}

// Delete removes key.
func (b *SQLiteBackend) Delete(key string) error {
	if _, err := b.db.Exec("DELETE FROM state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// Keys lists stored keys in ascending order.
func (b *SQLiteBackend) Keys() ([]string, error) {
	rows, err := b.db.Query("SELECT key FROM state ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
