// package server contains middleware & handlers for the movie search proxy
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/streamlist/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, recovery, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the search proxy.
// Implementations handle specific endpoints (search, health).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Upstream is the movie database the proxy forwards to. Implemented by [services.TMDBService].
type Upstream interface {
	// Do performs the search and returns the raw upstream status and body.
	Do(ctx context.Context, query string, page int) (int, []byte, error)
	// HasCredentials reports whether the server-held token is configured.
	HasCredentials() bool
}

// Options configures the proxy built by [NewRouter] and [ListenAndServe].
type Options struct {
	Addr        string
	Upstream    Upstream
	Logger      *log.Logger
	CORSOrigins []string
}

// NewRouter builds the proxy router with its middleware stack and handlers.
func NewRouter(opts Options) *BasicRouter {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(Recover(opts.Logger), RequestLogging(opts.Logger), CORS(opts.CORSOrigins))
	router.Handler(NewSearchHandler(opts.Upstream, opts.Logger))
	router.Handler(NewHealthHandler(opts.Upstream))

	return router
}

// ListenAndServe runs the proxy on opts.Addr until ctx is canceled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, opts Options) error {
	router := NewRouter(opts)
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}

	return Serve(ctx, ln, router, logger)
}

// Serve serves handler on ln until ctx is canceled.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *log.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting search proxy", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", "error", err)
		return err
	}

	logger.Info("search proxy stopped")
	return nil
}
