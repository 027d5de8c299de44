// Package exstack is a fast request router for fasthttp built around an
// adaptive dual-strategy matching engine. Routes compile into either a
// composite regular expression with a static-path fast table or a
// backtracking segment trie; the first request decides which, permanently.
package exstack

import (
	"sort"
	"strings"

	"github.com/aashishpanchal/exstack/matcher"
	"github.com/savsgio/gotils/strconv"
	gstrings "github.com/savsgio/gotils/strings"
	"github.com/valyala/fasthttp"
)

// MethodWild wild HTTP method
const MethodWild = matcher.MethodWild

// Handler handles one step of a request's handler chain. Calling c.Next()
// passes control to the next handler; not calling it ends the chain. A
// returned error is passed to the Router's ErrorHandler.
type Handler func(c *Ctx) error

// Route is a registration-time record kept for introspection and mounting.
type Route struct {
	Method string
	Path   string

	handlers []Handler
}

// Router routes incoming requests to an ordered list of registered handlers.
// All routes must be registered before the first request is served; the
// matching engine freezes on first dispatch.
type Router struct {
	smart   *matcher.Smart[Handler]
	routes  []Route
	methods map[string][]string

	// NotFound is called when no route matches. Defaults to a plain 404.
	NotFound Handler

	// MethodNotAllowed is called when a route exists for another method and
	// HandleMethodNotAllowed is enabled. The Allow header is already set.
	MethodNotAllowed Handler

	// GlobalOPTIONS handles automatic OPTIONS responses when HandleOPTIONS
	// is enabled. The Allow header is already set.
	GlobalOPTIONS Handler

	// ErrorHandler receives errors returned by handlers. Defaults to a JSON
	// error envelope.
	ErrorHandler func(c *Ctx, err error)

	// PanicHandler, if set, recovers panics raised while serving a request.
	PanicHandler func(ctx *fasthttp.RequestCtx, rcv any)

	// HandleMethodNotAllowed enables 405 responses with an Allow header.
	HandleMethodNotAllowed bool

	// HandleOPTIONS enables automatic replies to OPTIONS requests.
	HandleOPTIONS bool
}

// New returns a new initialized Router with 405 and automatic OPTIONS
// handling enabled.
func New() *Router {
	return &Router{
		smart:                  matcher.NewSmart[Handler](),
		methods:                make(map[string][]string),
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
	}
}

// GET is a shortcut for router.Handle(fasthttp.MethodGet, path, handlers...)
func (r *Router) GET(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodGet, path, handlers...)
}

// HEAD is a shortcut for router.Handle(fasthttp.MethodHead, path, handlers...)
func (r *Router) HEAD(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodHead, path, handlers...)
}

// OPTIONS is a shortcut for router.Handle(fasthttp.MethodOptions, path, handlers...)
func (r *Router) OPTIONS(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodOptions, path, handlers...)
}

// POST is a shortcut for router.Handle(fasthttp.MethodPost, path, handlers...)
func (r *Router) POST(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodPost, path, handlers...)
}

// PUT is a shortcut for router.Handle(fasthttp.MethodPut, path, handlers...)
func (r *Router) PUT(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodPut, path, handlers...)
}

// PATCH is a shortcut for router.Handle(fasthttp.MethodPatch, path, handlers...)
func (r *Router) PATCH(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodPatch, path, handlers...)
}

// DELETE is a shortcut for router.Handle(fasthttp.MethodDelete, path, handlers...)
func (r *Router) DELETE(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodDelete, path, handlers...)
}

// CONNECT is a shortcut for router.Handle(fasthttp.MethodConnect, path, handlers...)
func (r *Router) CONNECT(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodConnect, path, handlers...)
}

// TRACE is a shortcut for router.Handle(fasthttp.MethodTrace, path, handlers...)
func (r *Router) TRACE(path string, handlers ...Handler) {
	r.Handle(fasthttp.MethodTrace, path, handlers...)
}

// ANY is a shortcut for router.Handle(router.MethodWild, path, handlers...)
//
// WARNING: Use only for routes where the request method is not important.
// ANY paths ending in a wildcard register as prefix middleware, not as
// terminal routes.
func (r *Router) ANY(path string, handlers ...Handler) {
	r.Handle(MethodWild, path, handlers...)
}

// Use registers middleware for every route. Equivalent to UsePrefix("/").
func (r *Router) Use(handlers ...Handler) {
	r.UsePrefix("/", handlers...)
}

// UsePrefix registers middleware for every route under the given path
// prefix. Middleware handlers run ahead of route handlers, ordered by
// registration.
func (r *Router) UsePrefix(prefix string, handlers ...Handler) {
	validatePath(prefix)
	r.Handle(MethodWild, mergePath(prefix, "/*"), handlers...)
}

// Handle registers handlers for the given path and method.
//
// For GET, POST, PUT, PATCH and DELETE requests the respective shortcut
// functions can be used.
//
// This function is intended for bulk loading and to allow the usage of less
// frequently used, non-standardized or custom methods (e.g. for internal
// communication with a proxy).
func (r *Router) Handle(method, path string, handlers ...Handler) {
	switch {
	case len(method) == 0:
		panic("method must not be empty")
	case len(path) < 1 || path[0] != '/':
		panic("path must begin with '/' in path '" + path + "'")
	case len(handlers) == 0:
		panic("at least one handler must be given")
	}

	for _, h := range handlers {
		if h == nil {
			panic("handler must not be nil")
		}
		if err := r.smart.Add(method, path, h); err != nil {
			panic(err)
		}
	}

	r.routes = append(r.routes, Route{Method: method, Path: path, handlers: handlers})
	r.methods[method] = append(r.methods[method], path)
}

// ServeFiles serves files from the given file system root. The path must end
// with "/*filepath"; files are then served from the local path
// /defined/root/dir/*filepath. For example if root is "/etc" and *filepath is
// "passwd", the local file "/etc/passwd" would be served. Internally a
// fasthttp.FSHandler is used.
// Use:
//
//	router.ServeFiles("/src/*filepath", "./")
func (r *Router) ServeFiles(path string, rootPath string) {
	suffix := "/*filepath"

	if !strings.HasSuffix(path, suffix) {
		panic("path must end with " + suffix + " in path '" + path + "'")
	}

	prefix := path[:len(path)-len(suffix)]
	fileHandler := fasthttp.FSHandler(rootPath, strings.Count(prefix, "/"))

	r.GET(path, Wrap(fileHandler))
}

// Group returns a sub-router whose registrations merge the given path prefix.
func (r *Router) Group(prefix string) *Group {
	validatePath(prefix)
	return &Group{router: r, prefix: prefix}
}

// Mount replays every route of sub onto r under the given path prefix,
// including the sub-router's middleware registrations. Mount before r serves
// its first request.
func (r *Router) Mount(prefix string, sub *Router) {
	validatePath(prefix)
	for _, rt := range sub.routes {
		r.Handle(rt.Method, mergePath(prefix, rt.Path), rt.handlers...)
	}
}

// Routes returns the registration-time route records in registration order.
func (r *Router) Routes() []Route {
	routes := make([]Route, len(r.routes))
	copy(routes, r.routes)
	return routes
}

// List returns all registered paths grouped by method.
func (r *Router) List() map[string][]string {
	return r.methods
}

func (r *Router) recv(ctx *fasthttp.RequestCtx) {
	if rcv := recover(); rcv != nil {
		r.PanicHandler(ctx, rcv)
	}
}

// allowed computes the Allow header value for a path by matching every other
// registered method against it.
func (r *Router) allowed(path, reqMethod string) (allow string) {
	allowed := make([]string, 0, 9)

	if path == "*" || path == "/*" { // server-wide
		for method := range r.methods {
			if method == fasthttp.MethodOptions || method == MethodWild {
				continue
			}
			allowed = append(allowed, method)
		}
	} else {
		for method := range r.methods {
			if method == reqMethod || method == fasthttp.MethodOptions || method == MethodWild {
				continue
			}
			if res, err := r.smart.Match(method, path); err == nil && res.Matched() {
				allowed = append(allowed, method)
			}
		}
	}

	if len(allowed) > 0 {
		if !gstrings.Include(allowed, fasthttp.MethodOptions) {
			allowed = append(allowed, fasthttp.MethodOptions)
		}
		sort.Strings(allowed)

		return strings.Join(allowed, ", ")
	}

	return
}

// Handler makes the router implement the fasthttp.RequestHandler interface.
func (r *Router) Handler(ctx *fasthttp.RequestCtx) {
	if r.PanicHandler != nil {
		defer r.recv(ctx)
	}

	path := strconv.B2S(ctx.Path())
	method := strconv.B2S(ctx.Method())

	res, err := r.smart.Match(method, path)
	if err != nil {
		// Matcher build errors surface on the first request; they are
		// configuration errors, not client errors.
		r.serveError(ctx, err)
		return
	}

	if res.Matched() {
		c := acquireCtx(r, ctx, res.Handlers, res.Params)
		if err := c.Next(); err != nil {
			r.errorHandler()(c, err)
		}
		releaseCtx(c)
		return
	}

	if r.HandleOPTIONS && method == fasthttp.MethodOptions {
		if allow := r.allowed(path, fasthttp.MethodOptions); allow != "" {
			ctx.Response.Header.Set("Allow", allow)
			if r.GlobalOPTIONS != nil {
				r.serve(ctx, r.GlobalOPTIONS)
			}
			return
		}
	} else if r.HandleMethodNotAllowed {
		if allow := r.allowed(path, method); allow != "" {
			ctx.Response.Header.Set("Allow", allow)
			if r.MethodNotAllowed != nil {
				r.serve(ctx, r.MethodNotAllowed)
			} else {
				ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
				ctx.SetBodyString(fasthttp.StatusMessage(fasthttp.StatusMethodNotAllowed))
			}
			return
		}
	}

	// Handle 404
	if r.NotFound != nil {
		r.serve(ctx, r.NotFound)
	} else {
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusNotFound), fasthttp.StatusNotFound)
	}
}

// serve runs a single configured handler outside any matched chain.
func (r *Router) serve(ctx *fasthttp.RequestCtx, h Handler) {
	c := acquireCtx(r, ctx, nil, nil)
	if err := h(c); err != nil {
		r.errorHandler()(c, err)
	}
	releaseCtx(c)
}

func (r *Router) serveError(ctx *fasthttp.RequestCtx, err error) {
	c := acquireCtx(r, ctx, nil, nil)
	r.errorHandler()(c, err)
	releaseCtx(c)
}

func (r *Router) errorHandler() func(c *Ctx, err error) {
	if r.ErrorHandler != nil {
		return r.ErrorHandler
	}
	return defaultErrorHandler
}
