package cors

import (
	"net/http"
	"strings"

	"github.com/oriflect/cors/internal/headers"
	"github.com/oriflect/cors/internal/origins"
)

// responseActions is the output of the decision engine: the response
// headers to set (in computation order), the Vary augmentations to
// apply, and whether to terminate the request instead of delegating to
// the next handler. A terminated response carries status, a
// Content-Length of zero, and an empty body.
type responseActions struct {
	pairs     []headerPair
	vary      []string
	terminate bool
	status    int
}

type headerPair struct {
	name, value string
}

// decide computes the response actions for a single request.
//
// decide is a pure function of its arguments: it never blocks, never
// fails, and touches no state. Malformed inputs degrade to "no header
// set" rather than erroring. rcfg must stem from resolveForRequest;
// in particular, its origin policy must be concrete.
//
// method is the request's method; origin and acrh are the values of
// the request's Origin and Access-Control-Request-Headers headers, and
// hasACRH reports whether the latter header is present at all.
func decide(rcfg *resolvedConfig, method, origin, acrh string, hasACRH bool) responseActions {
	var a responseActions
	if !strings.EqualFold(method, http.MethodOptions) {
		// actual (i.e. non-preflight) CORS request
		a.appendOrigin(rcfg, origin)
		a.appendCredentials(rcfg)
		a.appendExposedHeaders(rcfg)
		return a
	}
	// preflight request; the order below is what makes the Vary
	// accumulation deterministic
	a.appendOrigin(rcfg, origin)
	a.appendCredentials(rcfg)
	if rcfg.allowedMethods != "" {
		a.set(headers.ACAM, rcfg.allowedMethods)
	}
	a.appendAllowedHeaders(rcfg, acrh, hasACRH)
	if rcfg.maxAge != "" {
		a.set(headers.ACMA, rcfg.maxAge)
	}
	a.appendExposedHeaders(rcfg)
	if !rcfg.preflightContinue {
		a.terminate = true
		a.status = rcfg.preflightStatus
	}
	return a
}

func (a *responseActions) appendOrigin(rcfg *resolvedConfig, origin string) {
	switch p := rcfg.origin.(type) {
	case fixedOriginPolicy:
		a.set(headers.ACAO, p.value)
		a.addVary(headers.Origin)
	case reflectOriginPolicy:
		if origins.MatchAny(p.matchers, origin) {
			a.set(headers.ACAO, origin)
		}
		// The response now depends on the request's origin whether or
		// not it matched; caches must not reuse a headerless response
		// for a different, allowed origin.
		a.addVary(headers.Origin)
	default: // anyOriginPolicy
		a.set(headers.ACAO, headers.ValueWildcard)
	}
}

func (a *responseActions) appendCredentials(rcfg *resolvedConfig) {
	if rcfg.credentialed {
		a.set(headers.ACAC, headers.ValueTrue)
	}
}

func (a *responseActions) appendAllowedHeaders(rcfg *resolvedConfig, acrh string, hasACRH bool) {
	if !rcfg.reflectReqHeaders {
		if rcfg.allowedHeaders != "" {
			a.set(headers.ACAH, rcfg.allowedHeaders)
		}
		return
	}
	if !hasACRH {
		return
	}
	a.addVary(headers.ACRH)
	if acrh != "" {
		// echoed verbatim, not parsed or normalized
		a.set(headers.ACAH, acrh)
	}
}

func (a *responseActions) appendExposedHeaders(rcfg *resolvedConfig) {
	if rcfg.exposedHeaders != "" {
		a.set(headers.ACEH, rcfg.exposedHeaders)
	}
}

func (a *responseActions) set(name, value string) {
	a.pairs = append(a.pairs, headerPair{name: name, value: value})
}

func (a *responseActions) addVary(value string) {
	a.vary = append(a.vary, value)
}

// apply writes a's headers to hdrs. Vary augmentations preserve any
// Vary header lines set by outer middleware or by the host.
func (a *responseActions) apply(hdrs http.Header) {
	for _, p := range a.pairs {
		hdrs.Set(p.name, p.value)
	}
	for _, v := range a.vary {
		headers.AddVary(hdrs, v)
	}
}
