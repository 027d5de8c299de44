package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsNil(t *testing.T) {
	t.Parallel()

	var p *Params
	v, ok := p.Get("id")
	assert.Equal(t, "", v)
	assert.False(t, ok)
	assert.Equal(t, "", p.Value("id"))
	assert.Nil(t, p.Map())
}

func TestParamsResolved(t *testing.T) {
	t.Parallel()

	p := newResolvedParams([]binding{{name: "id", value: "42"}, {name: "user", value: "bob"}})

	v, ok := p.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
	assert.Equal(t, "bob", p.Value("user"))

	_, ok = p.Get("missing")
	assert.False(t, ok)

	m := p.Map()
	assert.Equal(t, map[string]string{"id": "42", "user": "bob"}, m)

	// The snapshot is a copy.
	m["id"] = "changed"
	assert.Equal(t, "42", p.Value("id"))
}

func TestParamsIndexedBarePrefixWildcard(t *testing.T) {
	t.Parallel()

	re := NewRegexp[string]()
	require.NoError(t, re.Add("GET", "/files/*filepath", "files"))

	// Matching the bare prefix binds nothing: no params view at all, same
	// as the trie walk for the same route.
	res, err := re.Match("GET", "/files")
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.Nil(t, res.Params)
	assert.Nil(t, res.Params.Map())
	_, ok := res.Params.Get("filepath")
	assert.False(t, ok)
}

func TestParamsIndexedLazy(t *testing.T) {
	t.Parallel()

	re := NewRegexp[string]()
	require.NoError(t, re.Add("GET", "/users/:user/posts/:id", "h"))

	res, err := re.Match("GET", "/users/bob/posts/7")
	require.NoError(t, err)
	p := res.Params

	// Repeated lookups resolve to the same value.
	for i := 0; i < 3; i++ {
		assert.Equal(t, "bob", p.Value("user"))
		assert.Equal(t, "7", p.Value("id"))
	}

	_, ok := p.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"user": "bob", "id": "7"}, p.Map())
}
