package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httpez "users-api/internal/transport/http/ez"
)

const helloPage = `<html lang="en">
  <head>
    <title>Users API</title>
  </head>
  <body>
    <h1>Hello World!</h1>
  </body>
</html>`

var errDemo = errors.New("error test route")

// staticModule serves fixed content: an HTML page and a route that always
// fails through the global error tier.
type staticModule struct{}

func (staticModule) Priority() int { return 1000 }

func (staticModule) MountAPI(api *gin.RouterGroup) {
	api.GET("/html", html)
	httpez.Register(api, httpez.Action[struct{}, struct{}]{
		Method:  http.MethodGet,
		Path:    "/error/test",
		Binder:  httpez.BindNone,
		Handler: errorTest,
	})
}

// html godoc
// @Summary  Static HTML page
// @Tags     static
// @Produce  html
// @Success  200  {string}  string  "OK"
// @Router   /html [get]
func html(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(helloPage))
}

// errorTest godoc
// @Summary      Trigger the unhandled error path
// @Description  Always fails and is answered by the global error handler with a plain-text 500.
// @Tags         static
// @Produce      plain
// @Failure      500  {string}  string  "Service unavailable. Please come back later."
// @Router       /error/test [get]
func errorTest(*gin.Context, *struct{}) (httpez.Reply[struct{}], error) {
	return httpez.Reply[struct{}]{}, errDemo
}
