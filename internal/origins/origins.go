// Package origins provides machinery for matching Web origins
// against the various kinds of origin specifiers that a CORS
// configuration can carry.
package origins

import "regexp"

// A Matcher reports whether a given request origin is allowed.
// Matchers must be safe for concurrent use by multiple goroutines.
type Matcher interface {
	// Match reports whether origin is allowed.
	// origin is the raw value of the request's Origin header;
	// it may be empty if the request carried no such header.
	Match(origin string) bool
}

// An Exact matcher allows a single origin, compared byte for byte.
type Exact string

func (e Exact) Match(origin string) bool {
	return string(e) == origin
}

// A Pattern matcher allows any origin matched by a regular expression.
type Pattern struct {
	RE *regexp.Regexp
}

func (p Pattern) Match(origin string) bool {
	return p.RE != nil && p.RE.MatchString(origin)
}

// A Static matcher ignores the origin altogether:
// true allows any origin; false allows none.
type Static bool

func (s Static) Match(string) bool {
	return bool(s)
}

// MatchAny reports whether any of matchers allows origin.
// Matchers are consulted in order; only the overall outcome matters.
func MatchAny(matchers []Matcher, origin string) bool {
	for _, m := range matchers {
		if m.Match(origin) {
			return true
		}
	}
	return false
}
