// Package ez registers typed actions on gin. A handler returns a Reply with an
// explicit status, or an error. *AErr is the local tier: it already carries
// the client-facing kind and message and is written as is. Any other error is
// left on the context for the global error hook.
package ez

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "users-api/internal/transport/http/response"
	"users-api/internal/transport/http/validation"
)

type Reply[O any] struct {
	Status int // 0 means 200
	Body   O
	Header http.Header
}

func OK[O any](body O) Reply[O]      { return Reply[O]{Status: http.StatusOK, Body: body} }
func Created[O any](body O) Reply[O] { return Reply[O]{Status: http.StatusCreated, Body: body} }

func (r Reply[O]) WithHeader(key, value string) Reply[O] {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set(key, value)
	return r
}

// AErr is a failure the handler has already classified.
type AErr struct {
	Kind resp.Kind
	Msg  string
	Err  error // internal cause, logged but never sent
}

func (e *AErr) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *AErr) Unwrap() error { return e.Err }

func (e *AErr) Status() int { return e.Kind.Status() }

func Conflict(msg string, err error) error { return &AErr{Kind: resp.KindConflict, Msg: msg, Err: err} }
func NotFound(msg string, err error) error { return &AErr{Kind: resp.KindNotFound, Msg: msg, Err: err} }
func Internal(msg string, err error) error { return &AErr{Kind: resp.KindInternal, Msg: msg, Err: err} }

type Binder string

const (
	BindGuarded Binder = "guarded" // payload already decoded by validation.Guard
	BindJSON    Binder = "json"    // decode here; an empty body yields the zero value
	BindNone    Binder = "none"
)

type Action[I any, O any] struct {
	Method string
	Path   string
	// Middleware runs in order before the handler, e.g. validation.Guard.
	Middleware []gin.HandlerFunc
	Binder     Binder
	Handler    func(c *gin.Context, in *I) (Reply[O], error)
}

var errNoPayload = errors.New("ez: guarded action without a validated payload")

func Register[I any, O any](g gin.IRoutes, a Action[I, O]) {
	h := func(c *gin.Context) {
		in, ok := bind[I](c, a.Binder)
		if !ok {
			return
		}
		out, err := a.Handler(c, in)
		if err != nil {
			writeErr(c, err)
			return
		}
		for k, vs := range out.Header {
			for _, v := range vs {
				c.Writer.Header().Add(k, v)
			}
		}
		status := out.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, out.Body)
	}

	handlers := make([]gin.HandlerFunc, 0, len(a.Middleware)+1)
	handlers = append(handlers, a.Middleware...)
	g.Handle(a.Method, a.Path, append(handlers, h)...)
}

func bind[I any](c *gin.Context, b Binder) (*I, bool) {
	switch b {
	case BindGuarded:
		in, ok := validation.Payload[I](c)
		if !ok {
			_ = c.Error(errNoPayload)
			c.Abort()
			return nil, false
		}
		return in, true
	case BindJSON:
		in := new(I)
		if c.Request.ContentLength == 0 {
			return in, true
		}
		if err := c.ShouldBindJSON(in); err != nil {
			validation.Reject(c, fmt.Errorf("%w: %v", validation.ErrInvalidPayload, err))
			return nil, false
		}
		return in, true
	default:
		return new(I), true
	}
}

func writeErr(c *gin.Context, err error) {
	var ae *AErr
	if !errors.As(err, &ae) {
		_ = c.Error(err)
		c.Abort()
		return
	}
	if ae.Err != nil {
		_ = c.Error(ae.Err).SetType(gin.ErrorTypePrivate)
	}
	c.AbortWithStatusJSON(ae.Status(), resp.New(ae.Status(), ae.Msg))
}
