// package models defines the data model for the StreamList movie search service
package models

import (
	"encoding/json"
	"math"
	"strings"
)

const (
	// PageSize is the fixed number of results the upstream returns per page.
	PageSize = 20
	// MaxPage is the highest page the upstream will serve.
	MaxPage = 500
	// DefaultImageBaseURL is the fixed-width poster CDN prefix.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w342"
)

// SearchResult represents one matched title from the movie database.
type SearchResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	PosterPath  string `json:"poster_path,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// PosterURL returns the absolute poster URL under base, or an empty string when the title has no poster.
//
// base defaults to [DefaultImageBaseURL].
func (r SearchResult) PosterURL(base string) string {
	if r.PosterPath == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(r.PosterPath, "/")
}

// DisplayDate returns the release date, or "No date" when absent.
func (r SearchResult) DisplayDate() string {
	if r.ReleaseDate == "" {
		return "No date"
	}
	return r.ReleaseDate
}

// SearchResponse is the subset of the upstream search payload consumed by clients.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	TotalPages   int            `json:"total_pages"`
}

// UnmarshalJSON decodes leniently: a missing or malformed results field becomes an empty list and a
// missing or non-numeric total_results becomes zero.
func (s *SearchResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		Page         json.RawMessage `json:"page"`
		Results      json.RawMessage `json:"results"`
		TotalResults json.RawMessage `json:"total_results"`
		TotalPages   json.RawMessage `json:"total_pages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var results []SearchResult
	if err := json.Unmarshal(raw.Results, &results); err != nil || results == nil {
		results = []SearchResult{}
	}

	*s = SearchResponse{
		Page:         lenientInt(raw.Page),
		Results:      results,
		TotalResults: lenientInt(raw.TotalResults),
		TotalPages:   lenientInt(raw.TotalPages),
	}
	return nil
}

// lenientInt decodes a JSON number, saturating at the int32 range. Anything else yields 0.
func lenientInt(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return int(min(max(n, math.MinInt32), math.MaxInt32))
}

// TotalPages derives the number of navigable pages from a total result count, clamped to [1, MaxPage].
func TotalPages(totalResults int) int {
	pages := totalResults / PageSize
	if totalResults%PageSize > 0 {
		pages++
	}
	return min(MaxPage, max(1, pages))
}
