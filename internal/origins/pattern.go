package origins

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	schemeHostSep   = "://"
	hostPortSep     = ":"
	subdomainPrefix = "*."

	// portAny is a sentinel value indicating that all ports
	// (explicit or implicit) are allowed.
	portAny = -1
)

// A SubdomainPattern matcher allows all proper subdomains of a base host,
// on a fixed scheme and (unless the pattern's port is the wildcard) a
// fixed port. For instance, pattern
//
//	https://*.example.com
//
// allows https://foo.example.com and https://bar.foo.example.com,
// but neither https://example.com nor https://foo.example.com:8080.
type SubdomainPattern struct {
	scheme string
	host   string // base host, in ASCII (punycode) form
	port   int    // 0: no explicit port; portAny: any port
}

// ParseSubdomainPattern parses an origin pattern of the form
//
//	scheme://*.host[:port]
//
// in which port may be a literal port number or a * that denotes an
// arbitrary (possibly implicit) port.
//
// The host must be specified in ASCII serialized form (Unicode is
// rejected) and must not be a public suffix (also known as "effective
// top-level domain"): allowing arbitrary subdomains of a domain that
// anyone can register under is dangerous.
func ParseSubdomainPattern(str string) (SubdomainPattern, error) {
	// Using [net/url.Parse] here is tempting, but it is in some ways too
	// permissive (it tolerates hosts we want to reject) and in other ways
	// too strict for a pattern that isn't a well-formed URL. Manual
	// scanning plus the [golang.org/x/net] packages serve us better.
	var p SubdomainPattern
	scheme, rest, ok := strings.Cut(str, schemeHostSep)
	if !ok || !isValidScheme(scheme) {
		return p, invalidPatternError(str)
	}
	rest, ok = strings.CutPrefix(rest, subdomainPrefix)
	if !ok {
		return p, invalidPatternError(str)
	}
	host, portStr, hasPort := strings.Cut(rest, hostPortSep)
	var port int
	switch {
	case !hasPort:
		// no explicit port
	case portStr == "*":
		port = portAny
	default:
		n, err := strconv.Atoi(portStr)
		if err != nil || n < 1 || n > 65535 {
			return p, invalidPatternError(str)
		}
		port = n
	}
	if host == "" || strings.HasPrefix(host, "[") {
		// IP-address hosts have no subdomains.
		return p, invalidPatternError(str)
	}
	ascii, err := profile().ToASCII(host)
	if err != nil || ascii != host {
		return p, invalidPatternError(str)
	}
	if suffix, icann := publicsuffix.PublicSuffix(host); icann && suffix == host {
		const tmpl = "origin pattern %q allows arbitrary subdomains of public suffix %q"
		return p, fmt.Errorf(tmpl, str, host)
	}
	p = SubdomainPattern{
		scheme: scheme,
		host:   host,
		port:   port,
	}
	return p, nil
}

func (p SubdomainPattern) Match(origin string) bool {
	scheme, rest, ok := strings.Cut(origin, schemeHostSep)
	if !ok || scheme != p.scheme {
		return false
	}
	host, portStr, hasPort := strings.Cut(rest, hostPortSep)
	switch {
	case p.port == portAny:
		// any port, explicit or implicit
	case p.port == 0:
		if hasPort {
			return false
		}
	default:
		if portStr != strconv.Itoa(p.port) {
			return false
		}
	}
	// Only proper subdomains match: the base host itself is excluded.
	return len(host) > len(p.host)+1 &&
		strings.HasSuffix(host, p.host) &&
		host[len(host)-len(p.host)-1] == '.'
}

func isValidScheme(scheme string) bool {
	if scheme == "" || scheme == "file" || !isLowerAlpha(scheme[0]) {
		return false
	}
	for i := 1; i < len(scheme); i++ {
		c := scheme[i]
		if !isLowerAlpha(c) && !isDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

func isLowerAlpha(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func invalidPatternError(pattern string) error {
	return fmt.Errorf("invalid origin pattern %q", pattern)
}

var profile = sync.OnceValue(func() *idna.Profile {
	return idna.New(
		idna.BidiRule(),
		idna.ValidateLabels(true),
		idna.StrictDomainName(true),
		idna.VerifyDNSLength(true),
	)
})
