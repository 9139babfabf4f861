package methods

import (
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Default is the comma-joined list of methods that a middleware
// allows when its configuration specifies none.
var Default = strings.Join([]string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodPost,
	http.MethodDelete,
}, ",")

// IsValid reports whether name is a valid method, [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#concept-method
func IsValid(name string) bool {
	// Note: the production is identical to that of header names.
	return httpguts.ValidHeaderFieldName(name)
}

// Join joins names with commas after discarding invalid method names.
func Join(names []string) string {
	var b strings.Builder
	for _, name := range names {
		if !IsValid(name) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(name)
	}
	return b.String()
}
