// Package matcher maps (HTTP method, URL path) pairs to ordered handler
// payloads with named path parameter extraction.
//
// Two matching strategies are provided. Trie walks a prefix tree of path
// segments with backtracking and accepts any route set. Regexp compiles all
// routes of a method into a static-path lookup table plus one composite
// regular expression, which is faster but rejects structurally ambiguous
// route sets at build time. Smart wraps both: it attempts the regexp build on
// the first match and commits permanently to whichever strategy succeeds.
//
// Pattern syntax: '/users/:id' binds the named parameter id, ':id{[0-9]+}'
// constrains it with a regular expression, ':id?' makes the segment optional,
// and a final '*' or '*name' consumes the path remainder. Wildcard patterns
// registered under the ALL method (MethodWild) act as prefix middleware and
// are placed ahead of route payloads in match results, ordered by
// registration.
package matcher

import "sort"

// MethodWild is the ALL method: routes registered under it are inherited by
// every HTTP method.
const MethodWild = "*"

// Matcher is the registration and dispatch surface shared by the Trie,
// Regexp and Smart strategies. The payload type is opaque to the engine.
type Matcher[T any] interface {
	// Add registers a payload for the given method and route pattern.
	Add(method, pattern string, payload T) error
	// Match resolves the ordered payload list and parameter bindings for a
	// request path. An unmatched path yields an empty Result, not an error.
	Match(method, path string) (Result[T], error)
}

// entry is a registered payload tagged with its registration sequence, which
// drives ordering wherever several payloads apply to one path.
type entry[T any] struct {
	seq     int
	payload T
}

// Result is the outcome of one Match call. A zero Result means no route
// matched. Results are ephemeral: they are created fresh per call and never
// retained by the matcher.
type Result[T any] struct {
	// Handlers holds the matched payloads in registration order, prefix
	// middleware ahead of route payloads.
	Handlers []T
	// Params exposes the named parameter bindings of the matched route.
	// Nil when the match bound no parameters.
	Params *Params
}

// Matched reports whether any route matched.
func (r Result[T]) Matched() bool {
	return len(r.Handlers) > 0
}

// Param is shorthand for r.Params.Value(name).
func (r Result[T]) Param(name string) string {
	return r.Params.Value(name)
}

// sortEntries orders entries by registration sequence, preserving insertion
// order between equal sequences (several payloads may share one sequence when
// an optional pattern expands into siblings).
func sortEntries[T any](ents []entry[T]) []T {
	sort.SliceStable(ents, func(i, j int) bool { return ents[i].seq < ents[j].seq })

	payloads := make([]T, len(ents))
	for i, e := range ents {
		payloads[i] = e.payload
	}
	return payloads
}
