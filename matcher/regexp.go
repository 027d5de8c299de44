package matcher

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Regexp matches routes through a build-once, read-many structure: all
// parameter-free routes of a method go into an exact-string lookup table and
// every dynamic route becomes one labeled alternative of a single anchored
// composite regular expression. Building is lazy per method; the first Match
// for a method compiles it and releases the pre-build buffers.
//
// The strategy is fast but strict: dynamic route sets whose match sets
// overlap with conflicting parameter shapes are rejected at build time with
// an UnsupportedPathError instead of being resolved arbitrarily.
type Regexp[T any] struct {
	seq     int
	buckets map[string]*bucket[T]
	built   map[string]*methodMatcher[T]
}

// bucket buffers registrations for one method until that method builds.
// Middleware records (ALL-method wildcards) live in the MethodWild bucket and
// are inherited by every method at build time. index keys every record by raw
// pattern so repeated registrations merge in constant time.
type bucket[T any] struct {
	middleware []*record[T]
	routes     []*record[T]
	index      map[string]*record[T]
}

// record groups the entries registered under one pattern.
type record[T any] struct {
	pat     Pattern
	entries []entry[T]
}

// methodMatcher is the immutable built state for one method.
type methodMatcher[T any] struct {
	table map[string][]T
	re    *regexp.Regexp
	alts  []alternative[T]
}

// alternative maps one branch of the composite regexp back to its payloads.
// base is the absolute capture group wrapping the whole branch; groups maps
// parameter names to absolute capture-group numbers inside it.
type alternative[T any] struct {
	base     int
	groups   map[string]int
	handlers []T
}

// NewRegexp returns an empty composite-regexp matcher.
func NewRegexp[T any]() *Regexp[T] {
	return &Regexp[T]{
		buckets: make(map[string]*bucket[T]),
		built:   make(map[string]*methodMatcher[T]),
	}
}

// Add buffers a payload for the given method and pattern; nothing compiles
// until the first Match or Build for the method. Adding to an already-built
// method fails with a MatcherBuiltError.
func (r *Regexp[T]) Add(method, pattern string, payload T) error {
	if r.built[method] != nil || r.built[MethodWild] != nil {
		return &MatcherBuiltError{Method: method}
	}
	if method == MethodWild && len(r.built) > 0 {
		// ALL-method routes feed every method's build.
		return &MatcherBuiltError{Method: method}
	}

	e := entry[T]{seq: r.seq, payload: payload}

	for _, raw := range expandOptional(pattern) {
		pat, err := parse(raw)
		if err != nil {
			return err
		}

		b := r.buckets[method]
		if b == nil {
			b = &bucket[T]{index: make(map[string]*record[T])}
			r.buckets[method] = b
		}

		// Entries registered under the same raw pattern merge into one
		// record, preserving registration order within it.
		if rec := b.index[pat.raw]; rec != nil {
			rec.entries = append(rec.entries, e)
			continue
		}

		rec := &record[T]{pat: pat, entries: []entry[T]{e}}
		b.index[pat.raw] = rec
		if method == MethodWild && pat.wildcard {
			b.middleware = append(b.middleware, rec)
		} else {
			b.routes = append(b.routes, rec)
		}
	}

	r.seq++
	return nil
}

// Build compiles the matcher for one method, merging in the ALL bucket, and
// releases the method's pre-build buffer. It fails with an
// UnsupportedPathError when the dynamic routes are structurally ambiguous.
func (r *Regexp[T]) Build(method string) error {
	if r.built[method] != nil {
		return nil
	}

	var routes []*record[T]
	if b := r.buckets[method]; b != nil {
		routes = append(routes, b.routes...)
	}

	var middleware []*record[T]
	if wb := r.buckets[MethodWild]; wb != nil {
		middleware = wb.middleware
		if method != MethodWild {
			routes = append(routes, wb.routes...)
		}
	}

	m, err := buildMethod(routes, middleware)
	if err != nil {
		return err
	}

	r.built[method] = m
	if method != MethodWild {
		// The ALL bucket stays: later-built methods still inherit it.
		delete(r.buckets, method)
	}

	return nil
}

// BuildAll compiles every buffered method plus the ALL fallback and releases
// all pre-build state. Used by the Smart matcher to validate the whole route
// set in one shot.
func (r *Regexp[T]) BuildAll() error {
	methods := make([]string, 0, len(r.buckets))
	for method := range r.buckets {
		if method != MethodWild {
			methods = append(methods, method)
		}
	}
	sort.Strings(methods)

	for _, method := range methods {
		if err := r.Build(method); err != nil {
			return err
		}
	}
	if err := r.Build(MethodWild); err != nil {
		return err
	}

	r.buckets = nil
	return nil
}

// Match resolves the payloads for a request path, building the method's
// matcher on first use. Requests for methods with no routes of their own are
// served by the ALL fallback.
func (r *Regexp[T]) Match(method, path string) (Result[T], error) {
	m := r.built[method]
	if m == nil {
		if r.buckets != nil {
			if err := r.Build(method); err != nil {
				return Result[T]{}, err
			}
			m = r.built[method]
		} else if m = r.built[MethodWild]; m == nil {
			return Result[T]{}, nil
		}
	}

	return m.match(canonicalPath(path)), nil
}

func (m *methodMatcher[T]) match(canon string) Result[T] {
	if handlers, ok := m.table[canon]; ok {
		return Result[T]{Handlers: handlers}
	}

	if m.re == nil {
		return Result[T]{}
	}

	idx := m.re.FindStringSubmatchIndex(canon)
	if idx == nil {
		return Result[T]{}
	}

	for i := range m.alts {
		alt := &m.alts[i]
		if 2*alt.base >= len(idx) || idx[2*alt.base] < 0 {
			continue
		}
		return Result[T]{
			Handlers: alt.handlers,
			Params:   newIndexedParams(canon, idx, alt.groups),
		}
	}

	return Result[T]{}
}

// buildMethod compiles the frozen state for one method from its merged route
// and middleware records.
func buildMethod[T any](routes, middleware []*record[T]) (*methodMatcher[T], error) {
	m := &methodMatcher[T]{table: make(map[string][]T)}

	// Static records are merged by canonical key first ('/a' and '/a/' are
	// the same route), so prefix middleware attaches to each key only once.
	statics := make(map[string]*record[T])
	var keys []string
	var dynamic []*record[T]
	for _, rec := range routes {
		if !rec.pat.static {
			dynamic = append(dynamic, rec)
			continue
		}
		key := rec.pat.key()
		if merged, ok := statics[key]; ok {
			merged.entries = append(merged.entries, rec.entries...)
		} else {
			statics[key] = &record[T]{pat: rec.pat, entries: rec.entries}
			keys = append(keys, key)
		}
	}
	for _, key := range keys {
		rec := statics[key]
		ents := append(applyMiddleware(middleware, rec.pat), rec.entries...)
		m.table[key] = sortEntries(ents)
	}

	if len(dynamic) == 0 {
		return m, nil
	}

	if err := checkAmbiguity(dynamic); err != nil {
		return nil, err
	}

	// Precedence: non-wildcard alternatives first, shorter patterns ahead of
	// longer ones, registration order preserved on ties. Wildcard routes come
	// last, longest prefix first, so the most specific wildcard wins.
	sort.SliceStable(dynamic, func(i, j int) bool {
		a, b := dynamic[i].pat, dynamic[j].pat
		if a.wildcard != b.wildcard {
			return !a.wildcard
		}
		if a.wildcard {
			return len(a.prefix()) > len(b.prefix())
		}
		return len(a.raw) < len(b.raw)
	})

	var sb strings.Builder
	sb.WriteString("^(?:")

	group := 1
	for i, rec := range dynamic {
		if i > 0 {
			sb.WriteByte('|')
		}

		body, groups, n := compileAlternative(rec.pat, group)
		sb.WriteByte('(')
		sb.WriteString(body)
		sb.WriteByte(')')

		ents := append(applyMiddleware(middleware, rec.pat), rec.entries...)
		m.alts = append(m.alts, alternative[T]{
			base:     group,
			groups:   groups,
			handlers: sortEntries(ents),
		})

		group += 1 + n
	}
	sb.WriteString(")$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		// Constraints compiled individually at parse time, so a composite
		// failure means a constraint that only breaks when embedded.
		return nil, &UnsupportedPathError{
			Path:   dynamic[0].pat.raw,
			Reason: fmt.Sprintf("composite expression failed to compile: %v", err),
		}
	}
	m.re = re

	return m, nil
}

// compileAlternative renders one pattern as a regexp fragment. base is the
// absolute group number of the wrapping group; the returned map carries
// absolute group numbers per parameter and n is the number of capture groups
// inside the fragment.
func compileAlternative(pat Pattern, base int) (string, map[string]int, int) {
	var (
		sb     strings.Builder
		groups map[string]int
		n      int
	)

	bind := func(name string) {
		if groups == nil {
			groups = make(map[string]int)
		}
		n++
		groups[name] = base + n
	}

	for _, seg := range pat.segments {
		switch seg.kind {
		case segStatic:
			sb.WriteByte('/')
			sb.WriteString(regexp.QuoteMeta(seg.text))

		case segParam:
			sb.WriteString("/([^/]+)")
			bind(seg.text)

		case segParamRegex:
			sb.WriteString("/(")
			sb.WriteString(seg.constraint)
			sb.WriteByte(')')
			bind(seg.text)
			n += countCaptureGroups(seg.constraint)

		case segWildcard:
			// Also matches the bare prefix, leaving the parameter absent.
			sb.WriteString("(?:/(.*))?")
			bind(seg.text)
		}
	}

	return sb.String(), groups, n
}

// applyMiddleware returns the middleware entries whose wildcard prefix covers
// every path the pattern can match.
func applyMiddleware[T any](middleware []*record[T], pat Pattern) []entry[T] {
	var ents []entry[T]
	for _, mw := range middleware {
		if middlewareCovers(mw.pat, pat) {
			ents = append(ents, mw.entries...)
		}
	}
	return ents
}

func middlewareCovers(mw, pat Pattern) bool {
	prefix := mw.prefix()
	target := pat.segments
	if pat.wildcard {
		target = pat.prefix()
	}
	if len(prefix) > len(target) {
		return false
	}

	for i, ps := range prefix {
		switch ts := target[i]; {
		case ps.kind == segStatic && ts.kind == segStatic:
			if ps.text != ts.text {
				return false
			}
		case ps.kind == segStatic:
			// A parameter here may or may not take the prefix literal at
			// request time; the constraint at least has to allow it.
			if ts.regex != nil && !ts.regex.MatchString(ps.text) {
				return false
			}
		default:
			// Parameters in a middleware prefix cover any segment.
		}
	}

	return true
}

// checkAmbiguity rejects dynamic route pairs whose match sets overlap while
// their parameter shapes differ: such paths would bind the same capture
// position to different names or constraints depending on which route one
// asks. Same-shape duplicates are legal and ordered by registration.
// Wildcard routes are exempt; they rank below every non-wildcard alternative.
// Only routes with the same segment count can overlap, so the pairwise scan
// runs within segment-count groups.
func checkAmbiguity[T any](dynamic []*record[T]) error {
	byLen := make(map[int][]*record[T])
	for _, rec := range dynamic {
		if rec.pat.wildcard {
			continue
		}
		n := len(rec.pat.segments)
		byLen[n] = append(byLen[n], rec)
	}

	for _, recs := range byLen {
		for i := 0; i < len(recs); i++ {
			for j := i + 1; j < len(recs); j++ {
				a, b := recs[i].pat, recs[j].pat
				if patternsOverlap(a, b) && patternsConflict(a, b) {
					return &UnsupportedPathError{
						Path:   b.raw,
						Reason: fmt.Sprintf("ambiguous against previously registered route %q", a.raw),
					}
				}
			}
		}
	}

	return nil
}

// patternsOverlap reports whether some concrete path matches both patterns.
func patternsOverlap(a, b Pattern) bool {
	if len(a.segments) != len(b.segments) {
		return false
	}

	for i := range a.segments {
		sa, sb := a.segments[i], b.segments[i]
		switch {
		case sa.kind == segStatic && sb.kind == segStatic:
			if sa.text != sb.text {
				return false
			}
		case sa.kind == segStatic:
			if sb.regex != nil && !sb.regex.MatchString(sa.text) {
				return false
			}
		case sb.kind == segStatic:
			if sa.regex != nil && !sa.regex.MatchString(sb.text) {
				return false
			}
		default:
			// Two parameters always share at least one value, short of
			// solving constraint intersection; treated as overlapping.
		}
	}

	return true
}

// patternsConflict reports whether two same-length patterns disagree on where
// parameters sit, what they are called, or how they are constrained.
func patternsConflict(a, b Pattern) bool {
	for i := range a.segments {
		sa, sb := a.segments[i], b.segments[i]
		if sa.isParam() != sb.isParam() {
			return true
		}
		if sa.isParam() && (sa.text != sb.text || sa.constraint != sb.constraint) {
			return true
		}
	}
	return false
}
