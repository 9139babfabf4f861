package cors

import (
	"net/http"
	"sync/atomic"

	"github.com/oriflect/cors/internal/headers"
)

// A Middleware is a CORS middleware.
// Call its [*Middleware.Wrap] method to apply it to a [http.Handler],
// or drive it manually via its [*Middleware.Process] method.
//
// The zero value is ready to use but is a mere "passthrough"
// middleware, i.e. a middleware that simply delegates to the handler(s)
// it wraps. To obtain a proper CORS middleware, call [NewMiddleware]
// (for a static configuration) or [NewDynamicMiddleware] (for a
// per-request configuration resolver).
//
// A Middleware must not be copied after first use.
//
// Middleware are safe for concurrent use by multiple goroutines;
// in particular, you can safely reconfigure a middleware even as it's
// concurrently processing requests.
type Middleware struct {
	state      atomic.Pointer[middlewareState]
	errHandler atomic.Pointer[ErrorHandler]
}

// An ErrorHandler handles errors reported by a configuration or origin
// resolver during [*Middleware.Wrap]-style processing. No CORS header
// has been set when it runs; it owns the response from that point on.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// NewMiddleware creates a CORS middleware that behaves in accordance
// with cfg.
//
// Mutating the fields of cfg after NewMiddleware has returned does not
// alter the resulting middleware's behavior. However, you can
// reconfigure a [Middleware] via its [*Middleware.Reconfigure] method.
func NewMiddleware(cfg Config) *Middleware {
	var m Middleware
	m.state.Store(&middlewareState{rcfg: newResolvedConfig(&cfg)})
	return &m
}

// NewDynamicMiddleware creates a CORS middleware that obtains its
// configuration anew for each request by invoking resolve; see
// [ConfigResolverFunc] for the contract that resolve must honor.
// If resolve is nil, the resulting middleware is a passthrough
// middleware.
func NewDynamicMiddleware(resolve ConfigResolverFunc) *Middleware {
	var m Middleware
	if resolve != nil {
		m.state.Store(&middlewareState{resolve: resolve})
	}
	return &m
}

// Reconfigure reconfigures m in accordance with cfg.
// If cfg is nil, it turns m into a passthrough middleware.
// Mutating the fields of cfg after Reconfigure has returned does not
// alter m's behavior.
func (m *Middleware) Reconfigure(cfg *Config) {
	if cfg == nil {
		m.state.Store(nil)
		return
	}
	// Rather than attempt to diff the new config against the current
	// one, we simply start from scratch; for common configurations,
	// doing so indeed is performant enough.
	m.state.Store(&middlewareState{rcfg: newResolvedConfig(cfg)})
}

// SetErrorHandler sets the handler to which m's [*Middleware.Wrap]
// method routes resolution errors. A nil h restores the default
// handler, which responds with a bare 500 (Internal Server Error) and
// discloses nothing about the error.
//
// SetErrorHandler has no bearing on [*Middleware.Process], which
// returns resolution errors to its caller instead.
func (m *Middleware) SetErrorHandler(h ErrorHandler) {
	if h == nil {
		m.errHandler.Store(nil)
		return
	}
	m.errHandler.Store(&h)
}

// Wrap applies the CORS middleware to the specified handler.
//
// For each request, the resulting handler takes exactly one of the
// following paths:
//
//   - resolution error: m's error handler (see
//     [*Middleware.SetErrorHandler]) finalizes the response; h never
//     runs and no CORS header is set;
//   - denial (static or from an origin resolver): h runs, with no CORS
//     header set;
//   - terminated preflight: the middleware responds with the
//     configured preflight-success status, a Content-Length of zero,
//     and an empty body; h never runs;
//   - otherwise: the CORS headers are set and h runs.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := m.state.Load()
		if s == nil { // passthrough middleware
			h.ServeHTTP(w, r)
			return
		}
		rcfg, err := s.resolveForRequest(r)
		if err != nil {
			m.handleError(w, r, err)
			return
		}
		if rcfg == nil { // not a CORS-eligible request
			h.ServeHTTP(w, r)
			return
		}
		if terminated := decideAndApply(rcfg, w, r); terminated {
			return
		}
		h.ServeHTTP(w, r)
	})
}

// Process runs the CORS middleware for a single request, outside of
// any handler chain: it resolves m's configuration for r, sets the
// appropriate response headers on w, and, for preflight requests that
// the configuration terminates, finalizes the response.
//
// Process reports whether it finalized the response; if it did, the
// caller must not write to w. A non-nil error is a resolution error,
// propagated verbatim; no header has been set in that case, the
// response is not finalized, and the caller owns both the error and
// the response.
func (m *Middleware) Process(w http.ResponseWriter, r *http.Request) (terminated bool, err error) {
	s := m.state.Load()
	if s == nil { // passthrough middleware
		return false, nil
	}
	rcfg, err := s.resolveForRequest(r)
	if err != nil {
		return false, err
	}
	if rcfg == nil { // not a CORS-eligible request
		return false, nil
	}
	return decideAndApply(rcfg, w, r), nil
}

// decideAndApply runs the decision engine for r and applies its output
// to w. It reports whether it finalized the response.
func decideAndApply(rcfg *resolvedConfig, w http.ResponseWriter, r *http.Request) bool {
	origin, _ := headers.First(r.Header, headers.Origin)
	acrh, hasACRH := headers.First(r.Header, headers.ACRH)
	a := decide(rcfg, r.Method, origin, acrh, hasACRH)
	a.apply(w.Header())
	if !a.terminate {
		return false
	}
	// Safari (and potentially other browsers) need content-length 0
	// for 204 or they just hang waiting for a body.
	w.Header().Set(headers.ContentLength, headers.ValueZero)
	w.WriteHeader(a.status)
	return true
}

func (m *Middleware) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if h := m.errHandler.Load(); h != nil {
		(*h)(w, r, err)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Config returns a pointer to a deep copy of m's current configuration;
// if m is a passthrough middleware or was built from a
// [ConfigResolverFunc], it simply returns nil.
// Mutating the fields of the result does not alter m's behavior.
func (m *Middleware) Config() *Config {
	s := m.state.Load()
	if s == nil {
		return nil
	}
	return newConfig(s.rcfg)
}
