package matcher

import (
	"regexp"
	"strings"
)

// Trie matches routes by walking a prefix tree keyed by path segment. It
// never fails to build, whatever the route set looks like, trading per-match
// walking cost for that resilience. At every level a literal child is
// preferred over a parameter child and a parameter child over a wildcard,
// with full backtracking when a branch dead-ends.
//
// ALL-method wildcard registrations act as prefix middleware. They are kept
// off the tree and applied by pattern coverage to whichever route a walk
// ends at, the same rule the composite-regexp builder uses, so both
// strategies always run the same handler list.
type Trie[T any] struct {
	root       *trieNode[T]
	middleware []mwRoute[T]
	seq        int
}

// mwRoute is one prefix-middleware registration.
type mwRoute[T any] struct {
	pat  Pattern
	ents []entry[T]
}

type trieNode[T any] struct {
	static map[string]*trieNode[T]
	params []*paramEdge[T]
	wild   *wildNode[T]

	// routes marks a terminal match point: method (or MethodWild) to the
	// payloads registered for it. pat is the pattern that ends here.
	routes map[string][]entry[T]
	pat    Pattern
}

// paramEdge is a parameter-capturing child. Edges with distinct names or
// constraints stay separate so sibling patterns never collide structurally.
type paramEdge[T any] struct {
	name       string
	constraint string
	regex      *regexp.Regexp
	node       *trieNode[T]
}

// wildNode is the trailing-wildcard slot of a node, holding terminal
// wildcard routes. They only match when nothing more specific does.
type wildNode[T any] struct {
	name   string
	routes map[string][]entry[T]
	pat    Pattern
}

// NewTrie returns an empty trie matcher.
func NewTrie[T any]() *Trie[T] {
	return &Trie[T]{root: newTrieNode[T]()}
}

func newTrieNode[T any]() *trieNode[T] {
	return &trieNode[T]{static: make(map[string]*trieNode[T])}
}

// Add registers a payload for the given method and pattern. Optional
// parameters expand into sibling routes sharing the payload. Only pattern
// parse failures are reported; insertion itself cannot fail.
func (t *Trie[T]) Add(method, pattern string, payload T) error {
	e := entry[T]{seq: t.seq, payload: payload}

	for _, raw := range expandOptional(pattern) {
		pat, err := parse(raw)
		if err != nil {
			return err
		}
		t.insert(method, pat, e)
	}

	t.seq++
	return nil
}

func (t *Trie[T]) insert(method string, pat Pattern, e entry[T]) {
	if method == MethodWild && pat.wildcard {
		t.middleware = append(t.middleware, mwRoute[T]{pat: pat, ents: []entry[T]{e}})
		return
	}

	n := t.root

	for _, seg := range pat.segments {
		switch seg.kind {
		case segStatic:
			child, ok := n.static[seg.text]
			if !ok {
				child = newTrieNode[T]()
				n.static[seg.text] = child
			}
			n = child

		case segParam, segParamRegex:
			var edge *paramEdge[T]
			for _, pe := range n.params {
				if pe.name == seg.text && pe.constraint == seg.constraint {
					edge = pe
					break
				}
			}
			if edge == nil {
				edge = &paramEdge[T]{
					name:       seg.text,
					constraint: seg.constraint,
					regex:      seg.regex,
					node:       newTrieNode[T](),
				}
				n.params = append(n.params, edge)
			}
			n = edge.node

		case segWildcard:
			if n.wild == nil {
				n.wild = &wildNode[T]{name: seg.text, pat: pat}
			}
			if n.wild.routes == nil {
				n.wild.routes = make(map[string][]entry[T])
			}
			n.wild.routes[method] = append(n.wild.routes[method], e)
			return
		}
	}

	if n.routes == nil {
		n.routes = make(map[string][]entry[T])
	}
	n.routes[method] = append(n.routes[method], e)
	n.pat = pat
}

// Match walks the tree for the given method and path. Reads mutate no state,
// so a built trie is safe for concurrent matching.
func (t *Trie[T]) Match(method, path string) (Result[T], error) {
	st := &walkState[T]{}

	if !t.root.walk(method, splitSegments(path), st) {
		return Result[T]{}, nil
	}

	ents := t.coveringMiddleware(st.pat)
	ents = append(ents, st.found...)

	return Result[T]{
		Handlers: sortEntries(ents),
		Params:   newResolvedParams(st.binds),
	}, nil
}

// coveringMiddleware returns the middleware entries whose wildcard prefix
// covers the matched route's pattern.
func (t *Trie[T]) coveringMiddleware(pat Pattern) []entry[T] {
	var ents []entry[T]
	for _, mw := range t.middleware {
		if middlewareCovers(mw.pat, pat) {
			ents = append(ents, mw.ents...)
		}
	}
	return ents
}

type walkState[T any] struct {
	found []entry[T]
	pat   Pattern
	binds []binding
}

func (n *trieNode[T]) walk(method string, segs []string, st *walkState[T]) bool {
	if len(segs) == 0 {
		if ents := routesFor(n.routes, method); len(ents) > 0 {
			st.found, st.pat = ents, n.pat
			return true
		}
		// A trailing wildcard also covers the empty remainder.
		if n.wild != nil {
			if ents := routesFor(n.wild.routes, method); len(ents) > 0 {
				st.found, st.pat = ents, n.wild.pat
				return true
			}
		}
		return false
	}

	seg := segs[0]

	if child, ok := n.static[seg]; ok {
		if child.walk(method, segs[1:], st) {
			return true
		}
	}

	for _, pe := range n.params {
		if pe.regex != nil && !pe.regex.MatchString(seg) {
			continue
		}
		st.binds = append(st.binds, binding{name: pe.name, value: seg})
		if pe.node.walk(method, segs[1:], st) {
			return true
		}
		st.binds = st.binds[:len(st.binds)-1]
	}

	if n.wild != nil {
		if ents := routesFor(n.wild.routes, method); len(ents) > 0 {
			st.binds = append(st.binds, binding{name: n.wild.name, value: strings.Join(segs, "/")})
			st.found, st.pat = ents, n.wild.pat
			return true
		}
	}

	return false
}

func routesFor[T any](routes map[string][]entry[T], method string) []entry[T] {
	if routes == nil {
		return nil
	}
	ents := routes[method]
	if method != MethodWild {
		ents = append(ents[:len(ents):len(ents)], routes[MethodWild]...)
	}
	return ents
}
