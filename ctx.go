package exstack

import (
	"encoding/json"
	"sync"

	"github.com/aashishpanchal/exstack/matcher"
	"github.com/savsgio/gotils/strconv"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

var ctxPool = sync.Pool{
	New: func() any { return new(Ctx) },
}

// Ctx carries one request through its matched handler chain. It wraps the
// fasthttp request context, the resolved path parameters and the chain
// position. A Ctx is pooled and only valid for the duration of the request.
type Ctx struct {
	// RequestCtx is the underlying fasthttp request context.
	RequestCtx *fasthttp.RequestCtx

	router   *Router
	handlers []Handler
	params   *matcher.Params
	index    int
}

func acquireCtx(r *Router, ctx *fasthttp.RequestCtx, handlers []Handler, params *matcher.Params) *Ctx {
	c := ctxPool.Get().(*Ctx)
	c.RequestCtx = ctx
	c.router = r
	c.handlers = handlers
	c.params = params
	c.index = -1
	return c
}

func releaseCtx(c *Ctx) {
	c.RequestCtx = nil
	c.router = nil
	c.handlers = nil
	c.params = nil
	ctxPool.Put(c)
}

// Next runs the next handler in the chain. Handlers that do not call Next end
// the chain, which is how a response short-circuits remaining handlers.
func (c *Ctx) Next() error {
	c.index++
	if c.index < len(c.handlers) {
		return c.handlers[c.index](c)
	}
	return nil
}

// Param returns the path parameter bound to name, or "" when absent.
func (c *Ctx) Param(name string) string {
	return c.params.Value(name)
}

// ParamOK returns the path parameter bound to name and whether it is present;
// optional parameters elided from the request path are absent.
func (c *Ctx) ParamOK(name string) (string, bool) {
	return c.params.Get(name)
}

// ParamMap materializes every bound path parameter into a fresh map.
func (c *Ctx) ParamMap() map[string]string {
	return c.params.Map()
}

// Method returns the request method.
func (c *Ctx) Method() string {
	return strconv.B2S(c.RequestCtx.Method())
}

// Path returns the request path.
func (c *Ctx) Path() string {
	return strconv.B2S(c.RequestCtx.Path())
}

// Status sets the response status code. It returns c for chaining.
func (c *Ctx) Status(code int) *Ctx {
	c.RequestCtx.SetStatusCode(code)
	return c
}

// SendString writes a plain-text response body.
func (c *Ctx) SendString(body string) error {
	c.RequestCtx.SetBodyString(body)
	return nil
}

// JSON encodes v as the response body with an application/json content type.
// Encoding happens into a pooled buffer so a failed encode never leaves a
// partial body behind.
func (c *Ctx) JSON(v any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return err
	}

	c.RequestCtx.SetContentType("application/json; charset=utf-8")
	c.RequestCtx.SetBody(buf.Bytes())
	return nil
}
