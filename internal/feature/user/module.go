package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpez "users-api/internal/transport/http/ez"
	resp "users-api/internal/transport/http/response"
	"users-api/internal/transport/http/validation"
)

// Module mounts the /users resource.
type Module struct {
	h *Handler
	v *validation.Validator
}

func NewModule(h *Handler, v *validation.Validator) *Module { return &Module{h: h, v: v} }

func (m *Module) Priority() int { return 10 }

func (m *Module) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/users")

	httpez.Register(g, httpez.Action[CreateRequest, Response]{
		Method:     http.MethodPost,
		Path:       "",
		Middleware: []gin.HandlerFunc{validation.Guard[CreateRequest](m.v)},
		Binder:     httpez.BindGuarded,
		Handler:    m.h.Create,
	})
	httpez.Register(g, httpez.Action[struct{}, []Response]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  httpez.BindNone,
		Handler: m.h.List,
	})
	httpez.Register(g, httpez.Action[struct{}, Response]{
		Method:  http.MethodGet,
		Path:    "/:id",
		Binder:  httpez.BindNone,
		Handler: m.h.Get,
	})
	httpez.Register(g, httpez.Action[UpdateRequest, Response]{
		Method:  http.MethodPatch,
		Path:    "/:id",
		Binder:  httpez.BindJSON,
		Handler: m.h.Update,
	})
	httpez.Register(g, httpez.Action[struct{}, resp.Message]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  httpez.BindNone,
		Handler: m.h.Delete,
	})
}
