package matcher

import (
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both strategies must agree on whether a path matches and on the parameter
// bindings, for any route set the regexp strategy accepts.

func registerAll(t *testing.T, m Matcher[string], routes map[string]string) {
	t.Helper()
	for pattern, payload := range routes {
		require.NoError(t, m.Add("GET", pattern, payload))
	}
}

func TestMatchersAgreeOnStaticCorpus(t *testing.T) {
	t.Parallel()

	routes := map[string]string{
		"/":                "root",
		"/users":          "users",
		"/users/all":      "usersAll",
		"/users/all/meta": "usersAllMeta",
		"/posts":          "posts",
		"/posts/recent":   "postsRecent",
		"/api/v1/health":  "health",
		"/api/v2/health":  "healthV2",
	}

	trie := NewTrie[string]()
	re := NewRegexp[string]()
	registerAll(t, trie, routes)
	registerAll(t, re, routes)

	paths := []string{
		"/", "/users", "/users/", "/users/all", "/users/all/meta",
		"/users/some", "/posts", "/posts/recent", "/posts/recent/extra",
		"/api/v1/health", "/api/v3/health", "/missing",
	}

	f := fuzz.NewWithSeed(42).NilChance(0).NumElements(1, 4)
	for i := 0; i < 500; i++ {
		var segs []string
		f.Fuzz(&segs)

		var clean []string
		for _, seg := range segs {
			seg = strings.ReplaceAll(seg, "/", "")
			if seg != "" {
				clean = append(clean, seg)
			}
		}
		paths = append(paths, "/"+strings.Join(clean, "/"))
	}

	for _, path := range paths {
		tr, err := trie.Match("GET", path)
		require.NoError(t, err)
		rr, err := re.Match("GET", path)
		require.NoError(t, err)

		assert.Equal(t, tr.Matched(), rr.Matched(), "path %q", path)
		assert.Equal(t, tr.Handlers, rr.Handlers, "path %q", path)
	}
}

func TestMatchersAgreeOnMiddleware(t *testing.T) {
	t.Parallel()

	trie := NewTrie[string]()
	re := NewRegexp[string]()

	for _, m := range []Matcher[string]{trie, re} {
		require.NoError(t, m.Add(MethodWild, "/*", "global"))
		require.NoError(t, m.Add(MethodWild, "/:tenant/*", "tenant"))
		require.NoError(t, m.Add(MethodWild, "/admin/*", "admin"))
		require.NoError(t, m.Add("GET", "/admin/x", "adminX"))
		require.NoError(t, m.Add("GET", "/:tenant/settings", "settings"))
		require.NoError(t, m.Add("GET", "/files/*filepath", "files"))
	}

	paths := []string{
		"/admin/x", "/acme/settings", "/admin/settings",
		"/files", "/files/a/b.css", "/missing", "/admin",
	}

	for _, path := range paths {
		tr, err := trie.Match("GET", path)
		require.NoError(t, err)
		rr, err := re.Match("GET", path)
		require.NoError(t, err)

		require.Equal(t, tr.Matched(), rr.Matched(), "path %q", path)
		assert.Equal(t, tr.Handlers, rr.Handlers, "path %q", path)
		assert.Equal(t, tr.Params.Map(), rr.Params.Map(), "path %q", path)
	}
}

func TestMatchersAgreeOnParams(t *testing.T) {
	t.Parallel()

	routes := map[string]string{
		"/posts/:id{[0-9]+}":       "post",
		"/users/:user":             "user",
		"/users/:user/posts":       "userPosts",
		"/users/:user/posts/:id":   "userPost",
		"/files/*filepath":         "files",
		"/tags/:tag/posts/:postID": "tagged",
		"/about":                   "about",
	}

	trie := NewTrie[string]()
	re := NewRegexp[string]()
	registerAll(t, trie, routes)
	registerAll(t, re, routes)

	paths := []string{
		"/posts/42", "/posts/nope", "/users/bob", "/users/bob/posts",
		"/users/bob/posts/7", "/users/bob/posts/7/extra",
		"/files", "/files/a/b/c.css", "/tags/go/posts/12", "/about",
		"/tags/go", "/missing",
	}

	f := fuzz.NewWithSeed(7).NilChance(0)
	for i := 0; i < 300; i++ {
		var user, id string
		f.Fuzz(&user)
		f.Fuzz(&id)
		user = strings.ReplaceAll(user, "/", "")
		id = strings.ReplaceAll(id, "/", "")
		if user == "" || id == "" {
			continue
		}
		paths = append(paths, "/users/"+user+"/posts/"+id, "/posts/"+id, "/files/"+user+"/"+id)
	}

	for _, path := range paths {
		tr, err := trie.Match("GET", path)
		require.NoError(t, err)
		rr, err := re.Match("GET", path)
		require.NoError(t, err)

		require.Equal(t, tr.Matched(), rr.Matched(), "path %q", path)
		assert.Equal(t, tr.Handlers, rr.Handlers, "path %q", path)
		assert.Equal(t, tr.Params.Map(), rr.Params.Map(), "path %q", path)
	}
}
