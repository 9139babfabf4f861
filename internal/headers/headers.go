package headers

import (
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// header names in canonical format
const (
	// common request headers
	Origin = "Origin"

	// preflight-only request headers
	ACRH = "Access-Control-Request-Headers"

	// common response headers
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"

	// preflight-only response headers
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACMA = "Access-Control-Max-Age"

	ACEH = "Access-Control-Expose-Headers"

	ContentLength = "Content-Length"
	Vary          = "Vary"
)

const (
	ValueTrue     = "true"
	ValueWildcard = "*"
	ValueZero     = "0"
)

const ValueSep = ","

// IsValid reports whether name is a valid header name,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#header-name
func IsValid(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// First, if k is present in hdrs, returns the value of the first header
// line named k and true; otherwise, First returns "" and false.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
func First(hdrs http.Header, k string) (string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Join joins names with commas after discarding invalid header names.
// The elements of a header-field value may be separated simply by commas;
// since whitespace is optional, we don't use any.
// See https://httpwg.org/http-core/draft-ietf-httpbis-semantics-latest.html#abnf.extension.recipient
func Join(names []string) string {
	var b strings.Builder
	for _, name := range names {
		if !IsValid(name) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(ValueSep)
		}
		b.WriteString(name)
	}
	return b.String()
}

// AddVary augments the Vary header in hdrs with value.
// It adds rather than sets a header line, because outer middleware may
// have already added/set a Vary header, which we wouldn't want to clobber.
// If value is already listed in hdrs (possibly among other elements of a
// comma-separated header line), or if hdrs names all request headers via
// the wildcard, AddVary leaves hdrs unchanged.
func AddVary(hdrs http.Header, value string) {
	for _, line := range hdrs[Vary] {
		for elem := range strings.SplitSeq(line, ValueSep) {
			elem = strings.TrimSpace(elem)
			if elem == ValueWildcard || strings.EqualFold(elem, value) {
				return
			}
		}
	}
	hdrs.Add(Vary, value)
}
