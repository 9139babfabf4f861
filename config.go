package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/oriflect/cors/internal/headers"
	"github.com/oriflect/cors/internal/methods"
)

// A Config configures a [Middleware]. Its zero value is a valid
// configuration that allows anonymous access from any origin with the
// default methods.
//
// No field of a Config is ever validated in a way that can fail:
// configured method and header names that are not valid HTTP tokens
// are silently discarded, and out-of-range values fall back to the
// documented defaults. The affected header is simply omitted.
//
// # Origin
//
// Origin selects this middleware's origin policy;
// see [OriginPolicy] and its constructors. A nil Origin is equivalent
// to [AnyOrigin]().
//
// # Methods
//
// Methods configures the value of the Access-Control-Allow-Methods
// header sent in response to preflight requests.
// A nil slice stands for the default method list:
//
//	GET,HEAD,PUT,PATCH,POST,DELETE
//
// A non-nil slice replaces the default list wholesale; in particular,
// an empty non-nil slice suppresses the header.
//
// # AllowedHeaders
//
// AllowedHeaders configures the value of the
// Access-Control-Allow-Headers header sent in response to preflight
// requests. A nil slice enables reflection: the value of the request's
// Access-Control-Request-Headers header (if any) is echoed back
// verbatim, and the Vary header is augmented accordingly.
// A non-nil slice disables reflection; an empty non-nil slice
// suppresses the header.
//
// # ExposedHeaders
//
// ExposedHeaders configures the value of the
// Access-Control-Expose-Headers header; if empty, no such header is
// set.
//
// # Credentialed
//
// Credentialed, when set, configures the middleware to send
// Access-Control-Allow-Credentials: true.
// Exercise caution when combining it with a [ReflectOrigins] policy:
// reflecting loosely matched origins with credentialed access enabled
// exposes your users to cross-origin attacks.
//
// # MaxAgeInSeconds
//
// MaxAgeInSeconds configures the value of the Access-Control-Max-Age
// header sent in response to preflight requests. The zero value leaves
// the header unset (browsers then apply their default of five
// seconds). To instruct browsers to eschew caching of preflight
// responses altogether, specify a value of -1, which yields
//
//	Access-Control-Max-Age: 0
//
// Other negative values leave the header unset.
//
// # PreflightContinue
//
// PreflightContinue, when set, configures the middleware to delegate
// preflight requests to the handler it wraps (after setting the
// preflight response headers) instead of terminating them.
// Useful only if that handler has its own OPTIONS logic.
//
// # PreflightSuccessStatus
//
// PreflightSuccessStatus is the status of responses to preflight
// requests that the middleware terminates. The zero value stands for
// 204 (No Content). Some legacy user agents choke on 204; specify 200
// to cater for them.
type Config struct {
	// Precludes comparability and unkeyed struct literals.
	_ [0]func()

	Origin                 OriginPolicy
	Methods                []string
	AllowedHeaders         []string
	ExposedHeaders         []string
	Credentialed           bool
	MaxAgeInSeconds        int
	PreflightContinue      bool
	PreflightSuccessStatus int
}

// A ConfigResolverFunc produces a configuration for a single request.
// A [Middleware] built from one (see [NewDynamicMiddleware]) invokes it
// anew for each request, before any CORS processing takes place.
//
// A non-nil error aborts the middleware pipeline and surfaces the error
// verbatim, with no CORS headers set. A nil *Config with a nil error
// stands for the default configuration. The resulting configuration is
// layered over the defaults field by field and discarded once the
// request's response headers have been computed; the resolver is free
// to return a shared *Config, which is never mutated.
type ConfigResolverFunc func(r *http.Request) (*Config, error)

// sentinel for MaxAgeInSeconds: emit "Access-Control-Max-Age: 0"
const disablePreflightCaching = -1

// A resolvedConfig is the result of layering a Config over the
// defaults: every optional field has been normalized to the exact
// header value to emit (empty string meaning "omit"), and origin is a
// concrete policy, never a dynamicOriginPolicy, once resolveOrigin has
// run.
type resolvedConfig struct {
	origin            OriginPolicy
	allowedMethods    string
	allowedHeaders    string
	reflectReqHeaders bool
	exposedHeaders    string
	credentialed      bool
	maxAge            string
	preflightContinue bool
	preflightStatus   int
}

func newResolvedConfig(cfg *Config) *resolvedConfig {
	rcfg := resolvedConfig{
		origin:            anyOriginPolicy{},
		allowedMethods:    methods.Default,
		reflectReqHeaders: true,
		preflightStatus:   http.StatusNoContent,
	}
	if cfg == nil {
		return &rcfg
	}
	if cfg.Origin != nil {
		rcfg.origin = cfg.Origin
	}
	if cfg.Methods != nil {
		rcfg.allowedMethods = methods.Join(cfg.Methods)
	}
	if cfg.AllowedHeaders != nil {
		rcfg.allowedHeaders = headers.Join(cfg.AllowedHeaders)
		rcfg.reflectReqHeaders = false
	}
	rcfg.exposedHeaders = headers.Join(cfg.ExposedHeaders)
	rcfg.credentialed = cfg.Credentialed
	switch {
	case cfg.MaxAgeInSeconds == disablePreflightCaching:
		rcfg.maxAge = headers.ValueZero
	case cfg.MaxAgeInSeconds > 0:
		rcfg.maxAge = strconv.Itoa(cfg.MaxAgeInSeconds)
	}
	rcfg.preflightContinue = cfg.PreflightContinue
	if cfg.PreflightSuccessStatus > 0 {
		rcfg.preflightStatus = cfg.PreflightSuccessStatus
	}
	return &rcfg
}

// newConfig returns a Config equivalent to rcfg.
// The soundness of the result is guaranteed only if rcfg is the result
// of a previous call to newResolvedConfig.
func newConfig(rcfg *resolvedConfig) *Config {
	if rcfg == nil {
		return nil
	}
	cfg := Config{
		Origin:            rcfg.origin,
		Credentialed:      rcfg.credentialed,
		PreflightContinue: rcfg.preflightContinue,
	}
	// Note: do not hold (in cfg) any references to mutable state;
	// splitting the normalized header values yields fresh slices.
	if rcfg.allowedMethods != methods.Default {
		cfg.Methods = []string{}
		if rcfg.allowedMethods != "" {
			cfg.Methods = splitHeaderValue(rcfg.allowedMethods)
		}
	}
	if !rcfg.reflectReqHeaders {
		cfg.AllowedHeaders = []string{}
		if rcfg.allowedHeaders != "" {
			cfg.AllowedHeaders = splitHeaderValue(rcfg.allowedHeaders)
		}
	}
	cfg.ExposedHeaders = splitHeaderValue(rcfg.exposedHeaders)
	if rcfg.maxAge == headers.ValueZero {
		cfg.MaxAgeInSeconds = disablePreflightCaching
	} else if rcfg.maxAge != "" {
		cfg.MaxAgeInSeconds, _ = strconv.Atoi(rcfg.maxAge) // safe, by construction
	}
	if rcfg.preflightStatus != http.StatusNoContent {
		cfg.PreflightSuccessStatus = rcfg.preflightStatus
	}
	return &cfg
}

func splitHeaderValue(value string) []string {
	if value == "" {
		return nil
	}
	return slices.Clip(strings.Split(value, headers.ValueSep))
}
