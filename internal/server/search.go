package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/services"
	"github.com/desertthunder/streamlist/internal/shared"
)

const (
	msgMissingToken  = shared.TokenEnvVar + " is not set"
	msgRequestFailed = "TMDB request failed"
)

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

// SearchHandler relays movie searches to the [Upstream] so the bearer token never leaves the server.
type SearchHandler struct {
	upstream Upstream
	logger   *log.Logger
}

// NewSearchHandler creates a [SearchHandler] for upstream.
func NewSearchHandler(upstream Upstream, logger *log.Logger) *SearchHandler {
	return &SearchHandler{upstream: upstream, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SearchHandler) Routes() []string {
	return []string{"/api/tmdb"}
}

// ServeHTTP forwards ?q= and ?page= upstream.
//
// Successful responses are relayed byte for byte. Upstream errors keep their status and carry the upstream
// status_message; anything that prevents a JSON answer from upstream is a 500.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("q")
	rawPage := "1"
	if params.Has("page") {
		rawPage = params.Get("page")
	}
	page := services.NormalizePage(rawPage)

	if h.upstream == nil || !h.upstream.HasCredentials() {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgMissingToken})
		return
	}

	status, body, err := h.upstream.Do(r.Context(), query, page)
	if err != nil {
		if errors.Is(err, shared.ErrMissingCredentials) {
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgMissingToken})
			return
		}
		h.logger.Error("upstream request failed", "query", query, "page", page, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgRequestFailed})
		return
	}

	if !json.Valid(body) {
		h.logger.Error("upstream returned non-JSON body", "status", status, "bytes", len(body))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgRequestFailed})
		return
	}

	if status < 200 || status >= 300 {
		apiErr := services.UpstreamError(status, body)
		h.logger.Warn("upstream error", "status", status, "message", apiErr.Message)
		writeJSON(w, status, errorBody{Error: apiErr.Message, Details: apiErr.Details})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// HealthHandler reports whether the proxy is up and has a token.
type HealthHandler struct {
	upstream Upstream
}

// NewHealthHandler creates a [HealthHandler] for upstream.
func NewHealthHandler(upstream Upstream) *HealthHandler {
	return &HealthHandler{upstream: upstream}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authenticated := h.upstream != nil && h.upstream.HasCredentials()
	writeJSON(w, http.StatusOK, services.HealthStatus{Status: "ok", Authenticated: authenticated})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
