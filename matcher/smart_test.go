package matcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmartCommitsToRegexp(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	require.NoError(t, sm.Add("GET", "/users/:id", "users"))
	require.NoError(t, sm.Add("GET", "/health", "health"))

	assert.Equal(t, "", sm.Strategy())

	res, err := sm.Match("GET", "/users/7")
	require.NoError(t, err)
	require.Equal(t, []string{"users"}, res.Handlers)
	assert.Equal(t, "7", res.Param("id"))

	assert.Equal(t, "regexp", sm.Strategy())
}

func TestSmartFallsBackToTrie(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	require.NoError(t, sm.Add("GET", "/:user/entries", "byUser"))
	require.NoError(t, sm.Add("GET", "/entry/:name", "byName"))

	// The set is ambiguous for the regexp strategy; the smart matcher must
	// return a defined match via the trie instead of surfacing the error.
	res, err := sm.Match("GET", "/entry/entries")
	require.NoError(t, err)
	require.Equal(t, []string{"byName"}, res.Handlers)
	assert.Equal(t, "entries", res.Param("name"))

	assert.Equal(t, "trie", sm.Strategy())

	res, err = sm.Match("GET", "/bob/entries")
	require.NoError(t, err)
	require.Equal(t, []string{"byUser"}, res.Handlers)
	assert.Equal(t, "bob", res.Param("user"))
}

func TestSmartAddAfterCommit(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	require.NoError(t, sm.Add("GET", "/users", "users"))

	_, err := sm.Match("GET", "/users")
	require.NoError(t, err)

	err = sm.Add("GET", "/posts", "posts")
	require.ErrorIs(t, err, ErrMatcherBuilt)

	// The commit is global: even methods the regexp matcher would build
	// lazily are frozen.
	err = sm.Add("POST", "/posts", "posts")
	require.ErrorIs(t, err, ErrMatcherBuilt)
}

func TestSmartParseErrors(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	err := sm.Add("GET", "/users/:id/:id", "dup")
	require.ErrorIs(t, err, ErrUnsupportedPath)
}

func TestSmartMatchIdempotent(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	require.NoError(t, sm.Add("GET", "/users/:id", "users"))

	first, err := sm.Match("GET", "/users/5")
	require.NoError(t, err)
	second, err := sm.Match("GET", "/users/5")
	require.NoError(t, err)

	assert.Equal(t, first.Handlers, second.Handlers)
	assert.Equal(t, first.Params.Map(), second.Params.Map())
}

func TestSmartNoMatch(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	require.NoError(t, sm.Add("GET", "/users", "users"))

	res, err := sm.Match("GET", "/missing")
	require.NoError(t, err)
	assert.False(t, res.Matched())

	res, err = sm.Match("POST", "/users")
	require.NoError(t, err)
	assert.False(t, res.Matched())
}

func TestSmartConcurrentFirstMatch(t *testing.T) {
	t.Parallel()

	sm := NewSmart[string]()
	require.NoError(t, sm.Add("GET", "/users/:id", "users"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := sm.Match("GET", "/users/5")
			assert.NoError(t, err)
			assert.Equal(t, []string{"users"}, res.Handlers)
		}()
	}
	wg.Wait()

	assert.Equal(t, "regexp", sm.Strategy())
}
