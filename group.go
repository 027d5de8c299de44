package exstack

import (
	"github.com/valyala/fasthttp"
)

// Group registers routes under a shared path prefix. Groups nest; each
// registration merges every enclosing prefix before reaching the Router.
type Group struct {
	router *Router
	prefix string
}

// Group returns a nested group under the given path.
func (g *Group) Group(path string) *Group {
	validatePath(path)

	if len(g.prefix) > 0 && path == "/" {
		return g
	}

	return g.router.Group(mergePath(g.prefix, path))
}

// Use registers middleware for every route under the group's prefix.
func (g *Group) Use(handlers ...Handler) {
	g.router.UsePrefix(g.prefix, handlers...)
}

// GET is a shortcut for group.Handle(fasthttp.MethodGet, path, handlers...)
func (g *Group) GET(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodGet, path, handlers...)
}

// HEAD is a shortcut for group.Handle(fasthttp.MethodHead, path, handlers...)
func (g *Group) HEAD(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodHead, path, handlers...)
}

// POST is a shortcut for group.Handle(fasthttp.MethodPost, path, handlers...)
func (g *Group) POST(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodPost, path, handlers...)
}

// PUT is a shortcut for group.Handle(fasthttp.MethodPut, path, handlers...)
func (g *Group) PUT(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodPut, path, handlers...)
}

// PATCH is a shortcut for group.Handle(fasthttp.MethodPatch, path, handlers...)
func (g *Group) PATCH(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodPatch, path, handlers...)
}

// DELETE is a shortcut for group.Handle(fasthttp.MethodDelete, path, handlers...)
func (g *Group) DELETE(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodDelete, path, handlers...)
}

// CONNECT is a shortcut for group.Handle(fasthttp.MethodConnect, path, handlers...)
func (g *Group) CONNECT(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodConnect, path, handlers...)
}

// OPTIONS is a shortcut for group.Handle(fasthttp.MethodOptions, path, handlers...)
func (g *Group) OPTIONS(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodOptions, path, handlers...)
}

// TRACE is a shortcut for group.Handle(fasthttp.MethodTrace, path, handlers...)
func (g *Group) TRACE(path string, handlers ...Handler) {
	g.Handle(fasthttp.MethodTrace, path, handlers...)
}

// ANY is a shortcut for group.Handle(router.MethodWild, path, handlers...)
//
// WARNING: Use only for routes where the request method is not important
func (g *Group) ANY(path string, handlers ...Handler) {
	g.Handle(MethodWild, path, handlers...)
}

// ServeFiles serves files from the given file system root under the group's
// prefix. See Router.ServeFiles.
func (g *Group) ServeFiles(path string, rootPath string) {
	validatePath(path)

	g.router.ServeFiles(mergePath(g.prefix, path), rootPath)
}

// Handle registers handlers with the given path and method under the group's
// prefix.
func (g *Group) Handle(method, path string, handlers ...Handler) {
	validatePath(path)
	g.router.Handle(method, mergePath(g.prefix, path), handlers...)
}
