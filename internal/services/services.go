// package services defines the [SearchClient] interface for movie search backends
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/desertthunder/streamlist/internal/models"
	"github.com/desertthunder/streamlist/internal/shared"
)

// SearchClient performs a paged movie search.
//
// Implemented by [TMDBService] (upstream, server-held token) and [APIService] (through the search proxy).
type SearchClient interface {
	// Search returns one page of results for query.
	// Non-2xx responses are reported as [*APIError].
	Search(ctx context.Context, query string, page int) (*models.SearchResponse, error)
}

// APIError is a non-2xx response from the upstream database or the search proxy.
type APIError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("Search failed: %d", e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// NormalizePage converts a raw page parameter into a page number in [1, [models.MaxPage]].
//
// Only the leading integer is considered, so "3abc" is 3 and " -2" clamps to 1.
// Values that fail to parse, or parse to zero, become 1.
func NormalizePage(raw string) int {
	i := 0
	for i < len(raw) && isSpace(raw[i]) {
		i++
	}

	start := i
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
		i++
	}
	digits := i
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == digits {
		return 1
	}

	n, err := strconv.Atoi(raw[start:i])
	if err != nil {
		// out of range for int; only the sign matters
		if raw[start] == '-' {
			return 1
		}
		return models.MaxPage
	}

	return min(max(n, 1), models.MaxPage)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
