package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func maskedURL(c *gin.Context) string {
	u := *c.Request.URL
	q := u.Query()
	if len(q) == 0 {
		return u.String()
	}
	for k := range q {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			q.Set(k, "****")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ResponseHook observes every completed response, including ones written by
// ErrorHook, and logs method, URL and final status. silent is the test mode
// switch. It never touches the response.
func ResponseHook(l *zap.Logger, silent bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if silent {
			return
		}
		l.Info("response",
			zap.String("method", c.Request.Method),
			zap.String("url", maskedURL(c)),
			zap.Int("status", c.Writer.Status()),
			zap.String("rid", RequestIDOf(c)),
		)
	}
}
