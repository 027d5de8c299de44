package exstack

import "github.com/valyala/fasthttp"

// Wrap adapts a plain fasthttp handler into a chain Handler. The adapted
// handler writes the response and ends the chain; use WrapPass for handlers
// that should fall through to the next handler.
func Wrap(h fasthttp.RequestHandler) Handler {
	return func(c *Ctx) error {
		h(c.RequestCtx)
		return nil
	}
}

// WrapPass adapts a plain fasthttp handler into middleware that continues
// the chain after running it.
func WrapPass(h fasthttp.RequestHandler) Handler {
	return func(c *Ctx) error {
		h(c.RequestCtx)
		return c.Next()
	}
}

// PoweredBy returns middleware setting the X-Powered-By response header.
func PoweredBy(name string) Handler {
	return func(c *Ctx) error {
		c.RequestCtx.Response.Header.Set("X-Powered-By", name)
		return c.Next()
	}
}
