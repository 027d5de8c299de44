package matcher

import (
	"errors"
	"sync"
	"sync/atomic"
)

const (
	undecided int32 = iota
	viaRegexp
	viaTrie
)

// Smart feeds registrations to both strategies and decides between them on
// the very first match: it attempts the full composite-regexp build and, if
// that fails with an UnsupportedPathError, discards the regexp matcher and
// commits permanently to the trie. Any other build error propagates to the
// caller. The commit is one-way; the losing matcher's state is released and
// every later Add fails with a MatcherBuiltError.
//
// Registration must complete before the first match. The commit itself is
// mutex-guarded, so concurrent first requests perform exactly one build;
// matching after the commit is lock-free.
type Smart[T any] struct {
	mu    sync.Mutex
	state atomic.Int32

	re   *Regexp[T]
	trie *Trie[T]
}

// NewSmart returns an adaptive matcher in the undecided state.
func NewSmart[T any]() *Smart[T] {
	return &Smart[T]{
		re:   NewRegexp[T](),
		trie: NewTrie[T](),
	}
}

// Add registers a payload with both underlying matchers.
func (s *Smart[T]) Add(method, pattern string, payload T) error {
	if s.state.Load() != undecided {
		return &MatcherBuiltError{}
	}

	if err := s.re.Add(method, pattern, payload); err != nil {
		return err
	}
	return s.trie.Add(method, pattern, payload)
}

// Match resolves a request against the committed strategy, committing first
// if needed.
func (s *Smart[T]) Match(method, path string) (Result[T], error) {
	switch s.state.Load() {
	case viaRegexp:
		return s.re.Match(method, path)
	case viaTrie:
		return s.trie.Match(method, path)
	}

	if err := s.commit(); err != nil {
		return Result[T]{}, err
	}
	return s.Match(method, path)
}

// Strategy reports the committed strategy: "regexp", "trie" or "" while
// undecided.
func (s *Smart[T]) Strategy() string {
	switch s.state.Load() {
	case viaRegexp:
		return "regexp"
	case viaTrie:
		return "trie"
	}
	return ""
}

func (s *Smart[T]) commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Load() != undecided {
		// Another goroutine committed while this one waited.
		return nil
	}

	if err := s.re.BuildAll(); err != nil {
		if !errors.Is(err, ErrUnsupportedPath) {
			return err
		}
		s.re = nil
		s.state.Store(viaTrie)
		return nil
	}

	s.trie = nil
	s.state.Store(viaRegexp)
	return nil
}
