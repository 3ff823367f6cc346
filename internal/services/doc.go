// Package services defines the [SearchClient] interface for movie search and implements it twice.
//
// # TMDB Implementation
//
// [TMDBService] calls the TMDB search/movie endpoint directly. The bearer token is attached by an
// [oauth2.Transport] built from a static token source, and every request first waits on a [rate.Limiter].
// [TMDBService.Do] returns the raw status and body so the proxy can relay them unchanged.
//
// # Proxy Implementation
//
// [APIService] calls the /api/tmdb route of the search proxy, which holds the token server-side.
// This is what the TUI and CLI use by default.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : no bearer token configured
//   - [shared.ErrAPIRequest] : wrapped by [*APIError] for non-2xx responses
//   - [shared.ErrDecodeResponse] : a 2xx body that is not JSON
//   - [shared.ErrServiceUnavailable] : the proxy could not be reached for a health check
//
// # Pages
//
// [NormalizePage] turns a raw page parameter into a page in [1, 500], the range TMDB accepts.
package services
