package matcher

import (
	"regexp"
	"strings"
)

type segmentKind uint8

const (
	segStatic segmentKind = iota
	segParam
	segParamRegex
	segWildcard
)

// segment is one '/'-delimited piece of a parsed pattern. For segStatic, text
// holds the literal. For segParam, segParamRegex and segWildcard, text holds
// the parameter name.
type segment struct {
	text       string
	kind       segmentKind
	constraint string
	regex      *regexp.Regexp
}

func (s segment) isParam() bool {
	return s.kind == segParam || s.kind == segParamRegex
}

// Pattern is a parsed route template. Immutable once returned by parse.
type Pattern struct {
	raw      string
	segments []segment
	static   bool
	wildcard bool
}

// Raw returns the pattern text the Pattern was parsed from.
func (p Pattern) Raw() string { return p.raw }

// key returns the canonical static lookup key of a parameter-free pattern.
func (p Pattern) key() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.segments {
		b.WriteByte('/')
		b.WriteString(s.text)
	}
	return b.String()
}

// prefix returns the static route prefix of a wildcard pattern, i.e. the
// segments ahead of the trailing wildcard.
func (p Pattern) prefix() []segment {
	if !p.wildcard {
		return p.segments
	}
	return p.segments[:len(p.segments)-1]
}

// parse compiles a route pattern into a Pattern. Segments beginning with ':'
// are named parameters, optionally constrained by a '{regex}' suffix. A final
// segment of '*' or '*name' is a wildcard consuming the path remainder.
// Optional segments (':name?') must be expanded with expandOptional before
// parsing.
func parse(pattern string) (Pattern, error) {
	if pattern == "" || pattern[0] != '/' {
		return Pattern{}, &UnsupportedPathError{Path: pattern, Reason: "must begin with '/'"}
	}

	p := Pattern{raw: pattern, static: true}

	raw := splitSegments(pattern)
	seen := make(map[string]struct{}, len(raw))

	for i, seg := range raw {
		switch {
		case seg == "":
			return Pattern{}, &UnsupportedPathError{Path: pattern, Reason: "empty path segment"}

		case seg[0] == '*':
			if i != len(raw)-1 {
				return Pattern{}, &UnsupportedPathError{Path: pattern, Reason: "wildcard must be the final segment"}
			}
			name := seg[1:]
			if name == "" {
				name = "*"
			}
			if err := noteParam(seen, name, pattern); err != nil {
				return Pattern{}, err
			}
			p.segments = append(p.segments, segment{text: name, kind: segWildcard})
			p.static = false
			p.wildcard = true

		case seg[0] == ':':
			s, err := parseParam(seg, pattern)
			if err != nil {
				return Pattern{}, err
			}
			if err := noteParam(seen, s.text, pattern); err != nil {
				return Pattern{}, err
			}
			p.segments = append(p.segments, s)
			p.static = false

		default:
			p.segments = append(p.segments, segment{text: seg, kind: segStatic})
		}
	}

	return p, nil
}

// parseParam compiles a ':name' or ':name{regex}' segment.
func parseParam(seg, pattern string) (segment, error) {
	body := seg[1:]

	brace := strings.IndexByte(body, '{')
	if brace == -1 {
		if body == "" {
			return segment{}, &UnsupportedPathError{Path: pattern, Reason: "parameter must have a non-empty name"}
		}
		return segment{text: body, kind: segParam}, nil
	}

	name := body[:brace]
	if name == "" {
		return segment{}, &UnsupportedPathError{Path: pattern, Reason: "parameter must have a non-empty name"}
	}
	if body[len(body)-1] != '}' {
		return segment{}, &UnsupportedPathError{Path: pattern, Reason: "unterminated '{' in parameter constraint"}
	}

	constraint := body[brace+1 : len(body)-1]
	if constraint == "" {
		return segment{}, &UnsupportedPathError{Path: pattern, Reason: "empty parameter constraint"}
	}

	re, err := compileConstraint(constraint)
	if err != nil {
		return segment{}, &UnsupportedPathError{Path: pattern, Reason: "invalid parameter constraint: " + err.Error()}
	}

	return segment{text: name, kind: segParamRegex, constraint: constraint, regex: re}, nil
}

func noteParam(seen map[string]struct{}, name, pattern string) error {
	if _, dup := seen[name]; dup {
		return &UnsupportedPathError{Path: pattern, Reason: "duplicate parameter name '" + name + "'"}
	}
	seen[name] = struct{}{}
	return nil
}

// expandOptional expands a pattern containing optional parameters (':name?')
// into the set of sibling patterns to register: one per combination of the
// optional segments being present or elided. Patterns without optional
// segments expand to themselves.
func expandOptional(pattern string) []string {
	if !strings.Contains(pattern, "?") {
		return []string{pattern}
	}

	segs := splitSegments(pattern)

	var optional []int
	for i, seg := range segs {
		if len(seg) > 2 && seg[0] == ':' && seg[len(seg)-1] == '?' {
			optional = append(optional, i)
		}
	}
	if len(optional) == 0 {
		return []string{pattern}
	}

	var (
		paths []string
		seen  = make(map[string]struct{})
	)
	for mask := 0; mask < 1<<len(optional); mask++ {
		var b strings.Builder
		for i, seg := range segs {
			opt := -1
			for j, oi := range optional {
				if oi == i {
					opt = j
					break
				}
			}
			if opt >= 0 {
				if mask&(1<<opt) == 0 {
					continue
				}
				seg = seg[:len(seg)-1] // strip '?'
			}
			b.WriteByte('/')
			b.WriteString(seg)
		}
		p := b.String()
		if p == "" {
			p = "/"
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}

	return paths
}

// splitSegments splits a path or pattern into its '/'-delimited segments.
// A single trailing slash is tolerated, so '/users' and '/users/' produce the
// same segments.
func splitSegments(p string) []string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// canonicalPath rebuilds a request path in the same canonical form used for
// pattern keys and composite regexp matching.
func canonicalPath(path string) string {
	segs := splitSegments(path)
	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}
