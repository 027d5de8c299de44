package matcher

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPath is the sentinel wrapped by UnsupportedPathError.
	ErrUnsupportedPath = errors.New("unsupported route path")

	// ErrMatcherBuilt is the sentinel wrapped by MatcherBuiltError.
	ErrMatcherBuilt = errors.New("matcher already built")
)

// UnsupportedPathError reports a route pattern that cannot be compiled,
// either on its own (duplicate parameter names, malformed syntax) or against
// previously registered patterns (structural ambiguity, conflicting regex
// constraints). It always carries the offending pattern.
type UnsupportedPathError struct {
	// Path is the route pattern that triggered the error.
	Path string
	// Reason describes why the pattern was rejected.
	Reason string
}

func (e *UnsupportedPathError) Error() string {
	return fmt.Sprintf("unsupported route path %q: %s", e.Path, e.Reason)
}

// Unwrap returns the sentinel ErrUnsupportedPath.
func (e *UnsupportedPathError) Unwrap() error {
	return ErrUnsupportedPath
}

// MatcherBuiltError reports a registration attempted after the matcher has
// been built and begun serving matches. Registration and dispatch phases are
// strictly separated.
type MatcherBuiltError struct {
	// Method is the HTTP method whose matcher was already built.
	Method string
}

func (e *MatcherBuiltError) Error() string {
	if e.Method == "" {
		return "matcher already built: routes are frozen"
	}
	return fmt.Sprintf("matcher already built for method %s: routes are frozen", e.Method)
}

// Unwrap returns the sentinel ErrMatcherBuilt.
func (e *MatcherBuiltError) Unwrap() error {
	return ErrMatcherBuilt
}
