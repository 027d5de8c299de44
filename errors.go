package exstack

import (
	"errors"

	"github.com/valyala/fasthttp"
)

// HTTPError is an error carrying the HTTP status code a handler wants the
// response to have. Returning one from a handler routes it through the
// Router's ErrorHandler, which by default renders the standard error
// envelope.
type HTTPError struct {
	Code    int
	Message string
}

// NewError returns an HTTPError with the given status code. When no message
// is given, the standard status text is used.
func NewError(code int, message ...string) *HTTPError {
	e := &HTTPError{Code: code, Message: fasthttp.StatusMessage(code)}
	if len(message) > 0 {
		e.Message = message[0]
	}
	return e
}

func (e *HTTPError) Error() string {
	return e.Message
}

// errorEnvelope is the standardized error response body.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// defaultErrorHandler renders handler errors as a JSON error envelope.
// Non-HTTPError values map to a plain 500 without leaking the error text.
func defaultErrorHandler(c *Ctx, err error) {
	code := fasthttp.StatusInternalServerError
	message := fasthttp.StatusMessage(code)

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		message = httpErr.Message
	}

	var body errorEnvelope
	body.Error.Code = code
	body.Error.Message = message

	c.RequestCtx.ResetBody()
	if jsonErr := c.Status(code).JSON(body); jsonErr != nil {
		c.RequestCtx.Error(message, code)
	}
}
