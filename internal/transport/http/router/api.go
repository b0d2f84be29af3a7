package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"users-api/internal/domain"
	"users-api/internal/feature/user"
	_ "users-api/internal/transport/http/docs"
	mdw "users-api/internal/transport/http/middleware"
	"users-api/internal/transport/http/validation"
)

const APIPrefix = "/api"

type Deps struct {
	Log          *zap.Logger
	Users        domain.UserRepository
	Tokens       user.TokenIssuer
	Silent       bool // test mode: no per-response or access logs
	DocsPath     string
	MaxBodyBytes int64
}

// NewAPIEngine assembles the pipeline. Stage order matters: a route only gets
// the middleware registered before it, so the docs route skips access logging
// while NoRoute passes through every stage.
func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.DocsPath == "" {
		d.DocsPath = "/v1/swagger"
	}

	r := gin.New()
	r.NoRoute(mdw.NotFound())

	r.Use(mdw.Security()...)
	r.Use(mdw.MaxBodyBytes(d.MaxBodyBytes))

	r.GET(d.DocsPath+"/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("doc.json"))))

	access := d.Log
	if d.Silent {
		access = zap.NewNop()
	}
	r.Use(
		mdw.RequestID(),
		ginzap.Ginzap(access, time.RFC3339, true),
		mdw.Metrics(),
	)
	r.Use(
		mdw.ResponseHook(d.Log, d.Silent),
		mdw.ErrorHook(d.Log),
		mdw.Recovery(d.Log),
	)

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Hello!") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())

	api := r.Group(APIPrefix)
	MountAll(api,
		user.NewModule(user.NewHandler(d.Users, d.Tokens), validation.New()),
		staticModule{},
	)
	return r
}
