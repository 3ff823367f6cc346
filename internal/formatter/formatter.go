// package formatter renders search results and the event log as plain text, CSV, Markdown, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/desertthunder/streamlist/internal/models"
	"github.com/desertthunder/streamlist/internal/shared"
	"github.com/desertthunder/streamlist/internal/tasks"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Formats lists the values accepted by [Format].
var Formats = []string{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ResultsView is one page of search results prepared for output.
type ResultsView struct {
	Query        string                `json:"query"`
	Page         int                   `json:"page"`
	TotalPages   int                   `json:"total_pages"`
	TotalResults int                   `json:"total_results"`
	Results      []models.SearchResult `json:"results"`
	Favorites    []int                 `json:"favorites"`
	ImageBaseURL string                `json:"-"`
}

// NewResultsView builds a [ResultsView] from a session snapshot.
func NewResultsView(snap tasks.Snapshot, imageBaseURL string) ResultsView {
	return ResultsView{
		Query:        snap.Query,
		Page:         snap.Page,
		TotalPages:   snap.TotalPages,
		TotalResults: snap.TotalResults,
		Results:      snap.Results,
		Favorites:    snap.Favorites,
		ImageBaseURL: imageBaseURL,
	}
}

func (v ResultsView) favorite(id int) bool {
	return slices.Contains(v.Favorites, id)
}

// PageLabel renders "Page N", adding " / total" when there is more than one page.
func PageLabel(page, totalPages int) string {
	if totalPages > 1 {
		return fmt.Sprintf("Page %d / %d", page, totalPages)
	}
	return fmt.Sprintf("Page %d", page)
}

// Format renders v in the named format.
func Format(format string, v ResultsView) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ResultsToText(v)
	case FormatJSON:
		return ResultsToJSON(v)
	case FormatCSV:
		return ResultsToCSV(v)
	case FormatMarkdown, "md":
		return ResultsToMarkdown(v)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ResultsToText renders results as a numbered list with a page footer. Favorites are starred.
func ResultsToText(v ResultsView) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Results for %q (%d total)\n\n", v.Query, v.TotalResults)

	if len(v.Results) == 0 {
		buf.WriteString("No results.\n")
	}

	for i, r := range v.Results {
		mark := " "
		if v.favorite(r.ID) {
			mark = "★"
		}
		fmt.Fprintf(&buf, "%s %2d. %s (%s) [id %d]\n", mark, i+1, r.Title, r.DisplayDate(), r.ID)
	}

	fmt.Fprintf(&buf, "\n%s\n", PageLabel(v.Page, v.TotalPages))
	return buf.Bytes(), nil
}

// ResultsToCSV renders results with columns: ID, Title, Release Date, Poster URL, Favorite
func ResultsToCSV(v ResultsView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Release Date", "Poster URL", "Favorite"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range v.Results {
		record := []string{
			strconv.Itoa(r.ID),
			r.Title,
			r.ReleaseDate,
			r.PosterURL(v.ImageBaseURL),
			strconv.FormatBool(v.favorite(r.ID)),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ResultsToMarkdown renders results as a Markdown document with poster images
func ResultsToMarkdown(v ResultsView) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Results for \"%s\"\n\n", v.Query)
	fmt.Fprintf(&buf, "**Total**: %d\n", v.TotalResults)
	fmt.Fprintf(&buf, "**%s**\n\n", PageLabel(v.Page, v.TotalPages))

	for i, r := range v.Results {
		title := r.Title
		if v.favorite(r.ID) {
			title += " ★"
		}
		fmt.Fprintf(&buf, "%d. **%s** (%s)\n", i+1, title, r.DisplayDate())

		if poster := r.PosterURL(v.ImageBaseURL); poster != "" {
			fmt.Fprintf(&buf, "   ![%s](%s)\n", r.Title, poster)
		}
	}

	return buf.Bytes(), nil
}

// ResultsToJSON renders v as indented JSON.
func ResultsToJSON(v ResultsView) ([]byte, error) {
	if v.Results == nil {
		v.Results = []models.SearchResult{}
	}
	if v.Favorites == nil {
		v.Favorites = []int{}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// EventToText renders one entry as "ts - type", adding (q="...", p=N) for searches.
func EventToText(e models.EventLogEntry) string {
	line := fmt.Sprintf("%s - %s", e.Timestamp, e.Type)

	q, ok := e.Payload["q"]
	if !ok || q == nil || q == "" {
		return line
	}

	page := any("1")
	if p, ok := e.Payload["page"]; ok && p != nil {
		page = p
	}
	return fmt.Sprintf("%s (q=\"%v\", p=%v)", line, q, page)
}

// EventsToText renders at most limit entries, one per line. A limit of zero or less renders all.
func EventsToText(events []models.EventLogEntry, limit int) []byte {
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}

	var buf bytes.Buffer
	for _, e := range events {
		buf.WriteString(EventToText(e))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
