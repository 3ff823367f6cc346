// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/streamlist/internal/models"
)

// SearchCall records one call to [MockSearchClient.Search].
type SearchCall struct {
	Query string
	Page  int
}

// MockSearchClient is a test double for [services.SearchClient].
//
// Response and Err are returned as-is; SearchFunc, when set, takes precedence.
type MockSearchClient struct {
	Response   *models.SearchResponse
	Err        error
	SearchFunc func(ctx context.Context, query string, page int) (*models.SearchResponse, error)

	mu    sync.Mutex
	calls []SearchCall
}

func (m *MockSearchClient) Search(ctx context.Context, query string, page int) (*models.SearchResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SearchCall{Query: query, Page: page})
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, page)
	}
	return m.Response, m.Err
}

// Calls returns a copy of the recorded calls.
func (m *MockSearchClient) Calls() []SearchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SearchCall(nil), m.calls...)
}

// NewSearchResponse builds a response page with the given results and total.
func NewSearchResponse(total int, results ...models.SearchResult) *models.SearchResponse {
	if results == nil {
		results = []models.SearchResult{}
	}
	return &models.SearchResponse{
		Page:         1,
		Results:      results,
		TotalResults: total,
		TotalPages:   models.TotalPages(total),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// Body wraps s as a response body.
func Body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// StaticError is an error with a fixed message.
type StaticError struct {
	Message string
}

func (e *StaticError) Error() string { return e.Message }
