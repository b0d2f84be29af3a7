package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "users-api/internal/transport/http/response"
)

// NotFound is installed as the engine's NoRoute handler.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(resp.ErrRouteNotFound)
		c.Abort()
	}
}

// Recovery turns a panic into an error for ErrorHook.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered", append(requestFields(c),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)...)
				_ = c.Error(fmt.Errorf("panic: %v", rec))
				c.Abort()
			}
		}()
		c.Next()
	}
}

// Normalize maps an error that escaped the handlers to its response, given
// the status in flight when it surfaced. A nil Message means the body is the
// plain unavailability text.
func Normalize(err error, status int) (int, *resp.Message) {
	if errors.Is(err, resp.ErrRouteNotFound) {
		m := resp.New(http.StatusNotFound, resp.MsgPageNotFound)
		return http.StatusNotFound, &m
	}
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	if status == http.StatusBadRequest {
		m := resp.New(http.StatusBadRequest, resp.MsgUnprocessable)
		return status, &m
	}
	return status, nil
}

// ErrorHook is the global tier: it writes a response for any error still on
// the context once the handlers return without having written one. Errors a
// handler already answered are only logged.
func ErrorHook(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		if c.Writer.Written() {
			l.Warn("handled request error", append(requestFields(c),
				zap.Int("status", c.Writer.Status()),
				zap.String("errors", c.Errors.String()),
			)...)
			return
		}

		err := c.Errors.Last().Err
		status, body := Normalize(err, c.Writer.Status())
		fields := append(requestFields(c), zap.Int("status", status), zap.Error(err))
		if status >= http.StatusInternalServerError {
			l.Error("unhandled request error", fields...)
		} else {
			l.Debug("request rejected", fields...)
		}

		if body != nil {
			c.JSON(status, body)
			return
		}
		c.String(status, resp.MsgUnavailable)
	}
}
