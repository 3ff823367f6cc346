// API service for making requests to the search proxy
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/streamlist/internal/models"
	"github.com/desertthunder/streamlist/internal/shared"
)

const defaultProxyURL = "http://127.0.0.1:3000"

// APIService provides methods for making requests to the search proxy served by the server package.
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the search proxy.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = defaultProxyURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the response has a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HealthStatus is the body served by the proxy's /health route.
type HealthStatus struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	fullURL := a.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// Search requests one page of results from the proxy's /api/tmdb route.
//
// Error bodies of the form {"error": "..."} become an [*APIError] carrying that message;
// anything else becomes "Search failed: <status>".
func (a *APIService) Search(ctx context.Context, query string, page int) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))

	resp, err := a.Get(ctx, "/api/tmdb?"+params.Encode())
	if err != nil {
		return nil, err
	}

	if !resp.OK() {
		return nil, proxyError(resp)
	}

	var result models.SearchResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}

	return &result, nil
}

// Health calls the proxy's /health route.
func (a *APIService) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := a.Get(ctx, "/health")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	if !resp.OK() {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("health check failed: %d", resp.StatusCode)}
	}

	var status HealthStatus
	if err := json.Unmarshal(resp.Body, &status); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}

	return &status, nil
}

func proxyError(resp *APIResponse) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if resp.IsJSON && json.Unmarshal(resp.Body, &payload) == nil {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
	}

	return apiErr
}
