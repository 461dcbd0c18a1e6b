package routing

import (
	"net/url"
	"strings"
)

// Params holds positional parameters extracted from a matched path.
type Params map[string]string

// Get returns the named parameter or "" when absent.
func (p Params) Get(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

// Match is the result of resolving a request path against a Table.
type Match[H any] struct {
	Route  Route[H]
	Params Params
	// URL is the matched portion of the path; for non-exact routes it may be
	// shorter than the request path.
	URL string
}

// Match resolves path to the first route that accepts it. The fallback closes
// every table, so a result is always returned.
func (t *Table[H]) Match(path string) Match[H] {
	if path == "" {
		path = "/"
	}
	parts := split(path)

	for _, rt := range t.routes {
		if rt.IsFallback() {
			return Match[H]{Route: rt, Params: Params{}, URL: path}
		}
		if params, ok := matchSegments(rt.segments, parts, rt.Exact); ok {
			return Match[H]{Route: rt, Params: params, URL: joinURL(parts[:len(rt.segments)])}
		}
	}

	// unreachable: New guarantees a trailing fallback
	return Match[H]{Route: t.Fallback(), Params: Params{}, URL: path}
}

func matchSegments(segs []segment, parts []string, exact bool) (Params, bool) {
	if len(parts) < len(segs) {
		return nil, false
	}
	if exact && len(parts) != len(segs) {
		return nil, false
	}

	params := Params{}
	for i, s := range segs {
		part := parts[i]
		if s.param == "" {
			if !strings.EqualFold(s.literal, part) {
				return nil, false
			}
			continue
		}
		if part == "" {
			return nil, false
		}
		params[s.param] = decode(part)
	}

	return params, true
}

func decode(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

func joinURL(parts []string) string {
	return "/" + strings.Join(parts, "/")
}
