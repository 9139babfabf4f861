package cors

import (
	"net/http"

	"github.com/oriflect/cors/internal/headers"
)

// A middlewareState is the immutable state behind a [Middleware]:
// either a pre-resolved static configuration or a per-request
// configuration resolver. Exactly one of the two fields is non-nil.
type middlewareState struct {
	rcfg    *resolvedConfig
	resolve ConfigResolverFunc
}

// resolveForRequest performs the two sequential resolution steps for r:
// configuration resolution first, then origin resolution. Each step
// completes before the next one runs; there is no fan-out.
//
// The three possible outcomes are mutually exclusive:
//
//   - a non-nil error (from either resolver), propagated verbatim: the
//     pipeline must abort with that error and set no header;
//   - a nil resolvedConfig and a nil error: the request is not
//     CORS-eligible (static or dynamic denial); the pipeline must
//     delegate to the next handler with no header set and no error;
//   - a non-nil resolvedConfig whose origin policy is concrete, ready
//     for the decision engine.
func (s *middlewareState) resolveForRequest(r *http.Request) (*resolvedConfig, error) {
	rcfg := s.rcfg
	if s.resolve != nil {
		cfg, err := s.resolve(r)
		if err != nil {
			return nil, err
		}
		rcfg = newResolvedConfig(cfg)
	}
	switch p := rcfg.origin.(type) {
	case noOriginPolicy:
		// static denial: no need to consult anything else
		return nil, nil
	case dynamicOriginPolicy:
		origin, _ := headers.First(r.Header, headers.Origin)
		pol, err := p.fn(origin)
		if err != nil {
			return nil, err
		}
		pol = concreteOriginPolicy(pol)
		if pol == nil {
			// denial without error: deliberately not a failure
			return nil, nil
		}
		// rcfg may be the shared static configuration; shallow-copy it
		// before swapping in the per-request policy.
		c := *rcfg
		c.origin = pol
		return &c, nil
	default:
		return rcfg, nil
	}
}
