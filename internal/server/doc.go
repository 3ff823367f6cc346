// Package server provides HTTP routing, middleware, and the handlers of the movie search proxy.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Search Proxy
//
// [SearchHandler] serves GET /api/tmdb?q=&page= by forwarding to an [Upstream] (the TMDB client) that holds
// the bearer token. Responses:
//   - 200 with the upstream JSON body unchanged
//   - the upstream status with {"error": status_message, "details": body} for upstream errors
//   - 500 {"error": "TMDB_BEARER_TOKEN is not set"} without a token
//   - 500 {"error": "TMDB request failed"} for transport failures and non-JSON bodies
//
// [HealthHandler] serves GET /health.
//
// # Middleware
//
// [RequestLogging] assigns every request a uuid (echoed in X-Request-ID) and logs it on completion.
// [CORS] wraps github.com/rs/cors for browser clients. [Recover] turns panics into 500s.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
