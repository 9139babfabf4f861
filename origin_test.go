package cors

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriflect/cors/internal/origins"
)

func TestOriginMatchers(t *testing.T) {
	cases := []struct {
		desc    string
		matcher OriginMatcher
		origin  string
		want    bool
	}{
		{
			desc:    "exact match",
			matcher: ExactOrigin("http://a.com"),
			origin:  "http://a.com",
			want:    true,
		}, {
			desc:    "exact mismatch on scheme",
			matcher: ExactOrigin("http://a.com"),
			origin:  "https://a.com",
			want:    false,
		}, {
			desc:    "exact is not a suffix match",
			matcher: ExactOrigin("http://a.com"),
			origin:  "http://evil-a.com",
			want:    false,
		}, {
			desc:    "pattern match",
			matcher: PatternOrigin(regexp.MustCompile(`\.b\.com$`)),
			origin:  "http://x.b.com",
			want:    true,
		}, {
			desc:    "pattern mismatch",
			matcher: PatternOrigin(regexp.MustCompile(`\.b\.com$`)),
			origin:  "http://evil.com",
			want:    false,
		}, {
			desc:    "nil pattern matches nothing",
			matcher: PatternOrigin(nil),
			origin:  "http://a.com",
			want:    false,
		}, {
			desc:    "allow all",
			matcher: AllowAllOrigins(true),
			origin:  "http://anything.example",
			want:    true,
		}, {
			desc:    "allow none",
			matcher: AllowAllOrigins(false),
			origin:  "http://anything.example",
			want:    false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.matcher.m.Match(tc.origin))
		})
	}
}

func TestReflectOriginsAnyEntryMatches(t *testing.T) {
	pol := ReflectOrigins(
		ExactOrigin("http://a.com"),
		PatternOrigin(regexp.MustCompile(`\.b\.com$`)),
	)
	rp, ok := pol.(reflectOriginPolicy)
	require.True(t, ok)
	assert.True(t, origins.MatchAny(rp.matchers, "http://a.com"))
	assert.True(t, origins.MatchAny(rp.matchers, "http://x.b.com"))
	assert.False(t, origins.MatchAny(rp.matchers, "http://evil.com"))
	assert.False(t, origins.MatchAny(nil, "http://a.com"))
}

func TestReflectOriginsSkipsZeroValueMatchers(t *testing.T) {
	pol := ReflectOrigins(OriginMatcher{}, ExactOrigin("http://a.com"))
	rp, ok := pol.(reflectOriginPolicy)
	require.True(t, ok)
	assert.Len(t, rp.matchers, 1)
}

func TestSubdomainsOf(t *testing.T) {
	t.Run("valid patterns", func(t *testing.T) {
		cases := []struct {
			pattern string
			origin  string
			want    bool
		}{
			{"https://*.example.com", "https://foo.example.com", true},
			{"https://*.example.com", "https://bar.foo.example.com", true},
			{"https://*.example.com", "https://example.com", false},
			{"https://*.example.com", "https://evilexample.com", false},
			{"https://*.example.com", "http://foo.example.com", false},
			{"https://*.example.com", "https://foo.example.com:8080", false},
			{"https://*.example.com:8080", "https://foo.example.com:8080", true},
			{"https://*.example.com:8080", "https://foo.example.com", false},
			{"http://*.localhost:*", "http://foo.localhost", true},
			{"http://*.localhost:*", "http://foo.localhost:9090", true},
		}
		for _, tc := range cases {
			m, err := SubdomainsOf(tc.pattern)
			require.NoError(t, err, "pattern %q", tc.pattern)
			assert.Equal(t, tc.want, m.m.Match(tc.origin),
				"pattern %q against origin %q", tc.pattern, tc.origin)
		}
	})
	t.Run("invalid patterns", func(t *testing.T) {
		patterns := []string{
			"",
			"example.com",
			"https://example.com",     // no subdomain wildcard
			"https://*.com",           // public suffix
			"https://*.github.io",     // public suffix
			"https://*.example.com:0", // port out of range
			"https://*.example.com:65536",
			"https://*.example.com:http",
			"file://*.example.com",
			"https://*.",
			"https://*.résumé.com", // Unicode; ASCII form required
			"https://*.[::1]",
		}
		for _, pattern := range patterns {
			_, err := SubdomainsOf(pattern)
			assert.Error(t, err, "pattern %q", pattern)
		}
	})
}

func TestConcreteOriginPolicy(t *testing.T) {
	var nested OriginResolverFunc = func(string) (OriginPolicy, error) {
		return AnyOrigin(), nil
	}
	assert.Nil(t, concreteOriginPolicy(nil))
	assert.Nil(t, concreteOriginPolicy(NoOrigin()))
	assert.Nil(t, concreteOriginPolicy(DynamicOrigin(nested)))
	assert.Equal(t, AnyOrigin(), concreteOriginPolicy(AnyOrigin()))
	assert.Equal(t, FixedOrigin("http://a.com"), concreteOriginPolicy(FixedOrigin("http://a.com")))
}
