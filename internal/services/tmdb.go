// TMDB implementation of [SearchClient]
//
// Response shapes based on https://developer.themoviedb.org/reference/search-movie
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
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL  = "https://api.themoviedb.org/3"
	tmdbLanguage = "en-US"
)

// TMDBOptions configures a [TMDBService].
type TMDBOptions struct {
	BaseURL    string       // defaults to the public v3 API
	Token      string       // v4 read access token sent as a bearer credential
	Language   string       // defaults to en-US
	RateLimit  float64      // upstream requests per second; zero or less disables limiting
	HTTPClient *http.Client // base client wrapped by the oauth2 transport
}

// TMDBService calls the TMDB movie search endpoint with a static bearer token.
type TMDBService struct {
	baseURL    string
	language   string
	hasToken   bool
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewTMDBService creates a TMDB client. A service without a token can be constructed; its requests fail
// with [shared.ErrMissingCredentials].
func NewTMDBService(opts TMDBOptions) *TMDBService {
	if opts.BaseURL == "" {
		opts.BaseURL = tmdbBaseURL
	}
	if opts.Language == "" {
		opts.Language = tmdbLanguage
	}

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	client := base
	if opts.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: opts.Token,
			TokenType:   "Bearer",
		}))
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &TMDBService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		language:   opts.Language,
		hasToken:   opts.Token != "",
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// NewTMDBServiceFromConfig creates a TMDB client from the [shared.TMDBConfig] section, taking the token from
// the environment first.
func NewTMDBServiceFromConfig(cfg *shared.Config, client *http.Client) *TMDBService {
	return NewTMDBService(TMDBOptions{
		BaseURL:    cfg.TMDB.BaseURL,
		Token:      cfg.BearerToken(),
		Language:   cfg.TMDB.Language,
		RateLimit:  cfg.TMDB.RateLimit,
		HTTPClient: client,
	})
}

// HasCredentials reports whether a bearer token is configured.
func (s *TMDBService) HasCredentials() bool {
	return s.hasToken
}

// SearchURL builds the upstream search URL for query and page.
func (s *TMDBService) SearchURL(query string, page int) string {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")
	params.Set("language", s.language)

	return s.baseURL + "/search/movie?" + params.Encode()
}

// Do performs the upstream search and returns the raw status code and body.
//
// Errors are only returned when no response was received: missing credentials, a canceled context,
// or a transport failure.
func (s *TMDBService) Do(ctx context.Context, query string, page int) (int, []byte, error) {
	if !s.hasToken {
		return 0, nil, fmt.Errorf("%w: %s is not set", shared.ErrMissingCredentials, shared.TokenEnvVar)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.SearchURL(query, page), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// Search performs the upstream search and decodes the result page.
func (s *TMDBService) Search(ctx context.Context, query string, page int) (*models.SearchResponse, error) {
	status, body, err := s.Do(ctx, query, page)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, UpstreamError(status, body)
	}

	var result models.SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodeResponse, err)
	}

	return &result, nil
}

// UpstreamError builds the [*APIError] for a non-2xx TMDB response, taking the message from its
// status_message field.
func UpstreamError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: "TMDB error"}

	if json.Valid(body) {
		apiErr.Details = json.RawMessage(body)

		var payload struct {
			StatusMessage string `json:"status_message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
			apiErr.Message = payload.StatusMessage
		}
	}

	return apiErr
}
