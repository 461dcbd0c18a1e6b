package routing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTable      = errors.New("route table is empty")
	ErrNoFallback      = errors.New("route table has no fallback route")
	ErrFallbackNotLast = errors.New("fallback route must be declared last")
	ErrInvalidPattern  = errors.New("invalid route pattern")
)

// Route binds a path pattern to a handler. An empty Path makes the route a
// fallback that matches every request path.
type Route[H any] struct {
	Name    string
	Path    string
	Exact   bool
	Handler H

	segments []segment
}

// IsFallback reports whether the route has no path constraint.
func (r Route[H]) IsFallback() bool { return r.Path == "" }

type segment struct {
	literal string
	param   string // set for :name segments
}

// Table is an ordered list of routes evaluated first-match-wins.
// The last entry is always the single fallback, so Match never fails.
type Table[H any] struct {
	routes []Route[H]
}

// New validates the routes and builds a table. Every non-fallback pattern must
// start with "/", and exactly one fallback must close the list.
func New[H any](routes ...Route[H]) (*Table[H], error) {
	if len(routes) == 0 {
		return nil, ErrEmptyTable
	}

	compiled := make([]Route[H], len(routes))
	for i, rt := range routes {
		if rt.IsFallback() {
			if i != len(routes)-1 {
				return nil, fmt.Errorf("%w: %q at position %d", ErrFallbackNotLast, rt.Name, i)
			}
			compiled[i] = rt
			continue
		}

		segs, err := compile(rt.Path)
		if err != nil {
			return nil, err
		}
		rt.segments = segs
		compiled[i] = rt
	}

	if !compiled[len(compiled)-1].IsFallback() {
		return nil, ErrNoFallback
	}

	return &Table[H]{routes: compiled}, nil
}

// MustNew is New for static tables declared at startup.
func MustNew[H any](routes ...Route[H]) *Table[H] {
	t, err := New(routes...)
	if err != nil {
		panic(fmt.Sprintf("routing: %v", err))
	}
	return t
}

// Routes returns the table entries in evaluation order.
func (t *Table[H]) Routes() []Route[H] {
	out := make([]Route[H], len(t.routes))
	copy(out, t.routes)
	return out
}

// Fallback returns the catch-all entry.
func (t *Table[H]) Fallback() Route[H] {
	return t.routes[len(t.routes)-1]
}

func compile(pattern string) ([]segment, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrInvalidPattern, pattern)
	}

	parts := split(pattern)
	segs := make([]segment, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, p := range parts {
		if !strings.HasPrefix(p, ":") {
			if p == "" {
				return nil, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, pattern)
			}
			segs = append(segs, segment{literal: p})
			continue
		}

		name := p[1:]
		if name == "" {
			return nil, fmt.Errorf("%w: %q has an unnamed parameter", ErrInvalidPattern, pattern)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidPattern, pattern, name)
		}
		seen[name] = struct{}{}
		segs = append(segs, segment{param: name})
	}

	return segs, nil
}

// split cuts a path into segments. "/" yields no segments and one trailing
// slash is dropped, so "/room/42/" and "/room/42" split the same way.
func split(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
