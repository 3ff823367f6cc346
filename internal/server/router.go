package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing. Unknown paths get a JSON 404.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      []string
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	r := &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
	}
	r.mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	}))
	return r
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Only handlers registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// The handler is wrapped with all registered middleware.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.register(path, r.Apply(methods(handler, method)))
}

// Handler registers a custom [Handler] implementation for GET requests.
//
// All routes returned by [Handler.Routes] are registered with this handler.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(methods(handler, http.MethodGet, http.MethodHead))

	for _, route := range handler.Routes() {
		r.register(route, wrapped)
	}
}

// Routes lists registered paths in registration order.
func (r *BasicRouter) Routes() []string {
	return slices.Clone(r.routes)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

func (r *BasicRouter) register(path string, handler http.Handler) {
	r.mux.Handle(path, handler)
	r.routes = append(r.routes, path)
}

func methods(handler http.Handler, allowed ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		for _, m := range allowed {
			if strings.EqualFold(req.Method, m) {
				handler.ServeHTTP(w, req)
				return
			}
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
}
