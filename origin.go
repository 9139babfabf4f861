package cors

import (
	"regexp"

	"github.com/oriflect/cors/internal/origins"
)

// An OriginPolicy determines which origins a middleware allows and what
// value (if any) it writes to the Access-Control-Allow-Origin header.
//
// OriginPolicy is a closed set of variants; use one of the constructor
// functions of this package ([AnyOrigin], [NoOrigin], [FixedOrigin],
// [ReflectOrigins], [DynamicOrigin]) to obtain one.
// A nil OriginPolicy is equivalent to [AnyOrigin]().
type OriginPolicy interface {
	// sealed limits implementations of OriginPolicy to this package.
	sealed()
}

// An OriginResolverFunc resolves the effective origin policy for a
// single request. Its argument is the raw value of that request's
// Origin header (possibly empty). It must return a policy other than
// the result of [DynamicOrigin]; resolution happens at most once per
// request, and a nested dynamic policy is treated as a denial.
//
// The outcomes are asymmetric by design:
//
//   - a non-nil error aborts the middleware pipeline and surfaces the
//     error verbatim, with no CORS headers set;
//   - a nil policy with a nil error silently marks the request as not
//     CORS-eligible: the request proceeds, with no CORS headers set
//     and no error.
type OriginResolverFunc func(origin string) (OriginPolicy, error)

// AnyOrigin returns the policy that allows all origins.
// The resulting Access-Control-Allow-Origin header is always the
// wildcard (*), never a reflection of the request's origin;
// as such, this policy is incompatible with credentialed access.
func AnyOrigin() OriginPolicy {
	return anyOriginPolicy{}
}

// NoOrigin returns the policy that allows no origin at all.
// Middleware configured with it set no CORS headers whatsoever and
// simply delegate to the handler they wrap.
func NoOrigin() OriginPolicy {
	return noOriginPolicy{}
}

// FixedOrigin returns the policy that unconditionally writes value to
// the Access-Control-Allow-Origin header, regardless of the request's
// own origin. It augments the Vary header with Origin.
func FixedOrigin(value string) OriginPolicy {
	return fixedOriginPolicy{value: value}
}

// ReflectOrigins returns the policy that allows a request's origin if
// any of matchers allows it. When the origin is allowed, the
// Access-Control-Allow-Origin header echoes the request's own Origin
// value (never a matcher, never the wildcard); otherwise, no such
// header is set. Either way, the Vary header is augmented with Origin,
// since the response now depends on it.
func ReflectOrigins(matchers ...OriginMatcher) OriginPolicy {
	ms := make([]origins.Matcher, 0, len(matchers))
	for _, m := range matchers {
		if m.m == nil { // zero-value matcher: matches no origin
			continue
		}
		ms = append(ms, m.m)
	}
	return reflectOriginPolicy{matchers: ms}
}

// DynamicOrigin returns a policy that delegates, for each request, to
// fn; see [OriginResolverFunc] for the contract that fn must honor.
func DynamicOrigin(fn OriginResolverFunc) OriginPolicy {
	return dynamicOriginPolicy{fn: fn}
}

type (
	anyOriginPolicy     struct{}
	noOriginPolicy      struct{}
	fixedOriginPolicy   struct{ value string }
	reflectOriginPolicy struct{ matchers []origins.Matcher }
	dynamicOriginPolicy struct{ fn OriginResolverFunc }
)

func (anyOriginPolicy) sealed()     {}
func (noOriginPolicy) sealed()      {}
func (fixedOriginPolicy) sealed()   {}
func (reflectOriginPolicy) sealed() {}
func (dynamicOriginPolicy) sealed() {}

// An OriginMatcher is an entry of a [ReflectOrigins] policy.
// Use [ExactOrigin], [PatternOrigin], [AllowAllOrigins], or
// [SubdomainsOf] to obtain one. The zero value matches no origin.
type OriginMatcher struct {
	m origins.Matcher
}

// ExactOrigin returns a matcher that allows value and no other origin.
// Comparison is byte for byte; no normalization takes place.
func ExactOrigin(value string) OriginMatcher {
	return OriginMatcher{m: origins.Exact(value)}
}

// PatternOrigin returns a matcher that allows all origins matched by re.
// A nil re matches no origin.
func PatternOrigin(re *regexp.Regexp) OriginMatcher {
	return OriginMatcher{m: origins.Pattern{RE: re}}
}

// AllowAllOrigins returns a matcher that ignores the request's origin
// altogether: if allow is true, it allows any origin (note that, unlike
// [AnyOrigin], the resulting header reflects the request's origin
// rather than the wildcard); otherwise, it allows none.
func AllowAllOrigins(allow bool) OriginMatcher {
	return OriginMatcher{m: origins.Static(allow)}
}

// SubdomainsOf returns a matcher that allows all proper subdomains of
// the host in a pattern of the form
//
//	scheme://*.host[:port]
//
// For instance, pattern https://*.example.com allows origins
// https://foo.example.com and https://bar.foo.example.com, but not
// https://example.com itself. An asterisk in place of the port denotes
// an arbitrary (possibly implicit) port.
//
// The host must be specified in ASCII serialized form and must not be
// a public suffix (such as com or github.io); SubdomainsOf returns a
// non-nil error for patterns that violate those rules.
func SubdomainsOf(pattern string) (OriginMatcher, error) {
	p, err := origins.ParseSubdomainPattern(pattern)
	if err != nil {
		return OriginMatcher{}, err
	}
	return OriginMatcher{m: p}, nil
}

// concreteOriginPolicy normalizes the result of an origin resolution:
// denials of all forms (nil policies, [NoOrigin] policies, nested
// dynamic policies) collapse to nil.
func concreteOriginPolicy(p OriginPolicy) OriginPolicy {
	switch p.(type) {
	case nil, noOriginPolicy, dynamicOriginPolicy:
		return nil
	default:
		return p
	}
}
