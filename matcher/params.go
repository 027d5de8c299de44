package matcher

// Params exposes the named path parameters of one match. Lookups are lazy:
// results produced by the composite-regexp strategy hold the raw submatch
// index stash and resolve a parameter against it on first access, memoizing
// the value. Repeated lookups are idempotent and cheap. A nil *Params behaves
// like an empty parameter set.
type Params struct {
	// Trie and static-table results carry already-resolved bindings.
	resolved map[string]string

	// Regexp results carry the matched path, the submatch index pairs and
	// the parameter name to absolute capture-group mapping.
	src    string
	idx    []int
	groups map[string]int

	cache map[string]string
}

func newResolvedParams(binds []binding) *Params {
	if len(binds) == 0 {
		return nil
	}
	m := make(map[string]string, len(binds))
	for _, b := range binds {
		m[b.name] = b.value
	}
	return &Params{resolved: m}
}

// newIndexedParams returns nil unless at least one capture group
// participated in the match: a wildcard matched on its bare prefix binds
// nothing, same as the trie walk.
func newIndexedParams(src string, idx []int, groups map[string]int) *Params {
	for _, g := range groups {
		if 2*g+1 < len(idx) && idx[2*g] >= 0 {
			return &Params{src: src, idx: idx, groups: groups}
		}
	}
	return nil
}

// binding is one resolved name/value pair collected during a trie walk.
type binding struct {
	name  string
	value string
}

// Get returns the value bound to name and whether the parameter is present.
// Optional parameters elided from the matched path are absent.
func (p *Params) Get(name string) (string, bool) {
	if p == nil {
		return "", false
	}

	if p.resolved != nil {
		v, ok := p.resolved[name]
		return v, ok
	}

	if v, ok := p.cache[name]; ok {
		return v, true
	}

	g, ok := p.groups[name]
	if !ok || 2*g+1 >= len(p.idx) || p.idx[2*g] < 0 {
		return "", false
	}

	v := p.src[p.idx[2*g]:p.idx[2*g+1]]
	if p.cache == nil {
		p.cache = make(map[string]string, len(p.groups))
	}
	p.cache[name] = v

	return v, true
}

// Value returns the value bound to name, or the empty string when absent.
func (p *Params) Value(name string) string {
	v, _ := p.Get(name)
	return v
}

// Map materializes every bound parameter into a fresh map. Absent optional
// parameters are omitted.
func (p *Params) Map() map[string]string {
	if p == nil {
		return nil
	}

	if p.resolved != nil {
		m := make(map[string]string, len(p.resolved))
		for k, v := range p.resolved {
			m[k] = v
		}
		return m
	}

	m := make(map[string]string, len(p.groups))
	for name := range p.groups {
		if v, ok := p.Get(name); ok {
			m[name] = v
		}
	}
	return m
}
