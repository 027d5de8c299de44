package matcher

import (
	"regexp"
	"sync"
)

// Compiled parameter constraints are shared process-wide: the same
// '{[0-9]+}' constraint appearing in many routes (and in both matching
// strategies) compiles exactly once.
var constraintCache = struct {
	sync.Mutex
	m map[string]*regexp.Regexp
}{m: make(map[string]*regexp.Regexp)}

// compileConstraint compiles a parameter constraint expression anchored to a
// whole path segment.
func compileConstraint(expr string) (*regexp.Regexp, error) {
	constraintCache.Lock()
	defer constraintCache.Unlock()

	if re, ok := constraintCache.m[expr]; ok {
		return re, nil
	}

	re, err := regexp.Compile("^(?:" + expr + ")$")
	if err != nil {
		return nil, err
	}
	constraintCache.m[expr] = re

	return re, nil
}

// countCaptureGroups counts the capturing groups of a constraint expression,
// skipping escaped parentheses, character classes and '(?' groups. The
// composite regexp builder uses it to keep absolute group numbers correct
// when a constraint carries its own groups.
func countCaptureGroups(expr string) int {
	n := 0
	inClass := false

	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '(':
			if !inClass && (i+1 >= len(expr) || expr[i+1] != '?') {
				n++
			}
		}
	}

	return n
}
