package user

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"users-api/internal/domain"
	httpez "users-api/internal/transport/http/ez"
	resp "users-api/internal/transport/http/response"
	"users-api/pkg/utils"
)

// HeaderToken carries the token issued on account creation.
const HeaderToken = "X-Authorization"

const (
	msgSaveFailed     = "Unable to save entry to the database!"
	msgListFailed     = "Unable to retrieve items from the database!"
	msgGetFailed      = "Unable to retrieve the resource!"
	msgUpdateFailed   = "Unable to update resource!"
	msgDeleteFailed   = "Unable to delete resource!"
	msgUserIDNotFound = "User with id: %s was not found."
)

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Handler struct {
	users  domain.UserRepository
	tokens TokenIssuer
	hash   func(string) (string, error)
}

func NewHandler(users domain.UserRepository, tokens TokenIssuer) *Handler {
	return &Handler{users: users, tokens: tokens, hash: utils.HashPassword}
}

// Create godoc
// @Summary      Create a user
// @Description  Stores the user with a hashed password and returns a signed token in the X-Authorization header.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body      CreateRequest  true  "New user"
// @Success      201   {object}  Response
// @Header       201   {string}  X-Authorization  "Signed token for the new user"
// @Failure      400   {object}  resp.Message
// @Failure      422   {object}  resp.Message
// @Failure      500   {object}  resp.Message
// @Router       /users [post]
func (h *Handler) Create(c *gin.Context, in *CreateRequest) (httpez.Reply[Response], error) {
	var zero httpez.Reply[Response]

	hashed, err := h.hash(*in.Password)
	if err != nil {
		return zero, httpez.Internal(msgSaveFailed, err)
	}
	u := &domain.User{Username: *in.Username, Email: *in.Email, Password: hashed}
	if err := h.users.Create(c, u); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return zero, httpez.Conflict(resp.MsgAlreadyExists, err)
		}
		return zero, httpez.Internal(msgSaveFailed, err)
	}

	tok, err := h.tokens.Issue(u.ID)
	if err != nil {
		return zero, httpez.Internal(msgSaveFailed, fmt.Errorf("issue token for %s: %w", u.ID, err))
	}
	return httpez.Created(toResponse(u)).WithHeader(HeaderToken, tok), nil
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   Response
// @Failure      500  {object}  resp.Message
// @Router       /users [get]
func (h *Handler) List(c *gin.Context, _ *struct{}) (httpez.Reply[[]Response], error) {
	users, err := h.users.List(c)
	if err != nil {
		return httpez.Reply[[]Response]{}, httpez.Internal(msgListFailed, err)
	}
	out := make([]Response, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}
	return httpez.OK(out), nil
}

// Get godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  Response
// @Failure      404  {object}  resp.Message
// @Failure      500  {object}  resp.Message
// @Router       /users/{id} [get]
func (h *Handler) Get(c *gin.Context, _ *struct{}) (httpez.Reply[Response], error) {
	u, err := h.users.GetByID(c, c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return httpez.Reply[Response]{}, httpez.NotFound(resp.MsgNotFound, nil)
	case err != nil:
		return httpez.Reply[Response]{}, httpez.Internal(msgGetFailed, err)
	}
	return httpez.OK(toResponse(u)), nil
}

// Update godoc
// @Summary      Update a user
// @Description  Applies only the fields present in the body.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "User id"
// @Param        user  body      UpdateRequest  true  "Fields to change"
// @Success      200   {object}  Response
// @Failure      400   {object}  resp.Message
// @Failure      404   {object}  resp.Message
// @Failure      500   {object}  resp.Message
// @Router       /users/{id} [patch]
func (h *Handler) Update(c *gin.Context, in *UpdateRequest) (httpez.Reply[Response], error) {
	var zero httpez.Reply[Response]
	id := c.Param("id")

	patch := domain.UserPatch{Username: in.Username, Email: in.Email}
	if in.Password != nil {
		hashed, err := h.hash(*in.Password)
		if err != nil {
			return zero, httpez.Internal(msgUpdateFailed, err)
		}
		patch.Password = &hashed
	}

	u, err := h.users.Update(c, id, patch)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return zero, httpez.NotFound(fmt.Sprintf(msgUserIDNotFound, id), nil)
	case err != nil:
		return zero, httpez.Internal(msgUpdateFailed, err)
	}
	return httpez.OK(toResponse(u)), nil
}

// Delete looks the user up first so a missing id gets the templated message.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  resp.Message
// @Failure      404  {object}  resp.Message
// @Failure      500  {object}  resp.Message
// @Router       /users/{id} [delete]
func (h *Handler) Delete(c *gin.Context, _ *struct{}) (httpez.Reply[resp.Message], error) {
	var zero httpez.Reply[resp.Message]
	id := c.Param("id")
	notFound := httpez.NotFound(fmt.Sprintf(msgUserIDNotFound, id), nil)

	if _, err := h.users.GetByID(c, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return zero, notFound
		}
		return zero, httpez.Internal(msgDeleteFailed, err)
	}
	if err := h.users.Delete(c, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return zero, notFound
		}
		return zero, httpez.Internal(msgDeleteFailed, err)
	}
	return httpez.OK(resp.New(200, resp.MsgDeleted)), nil
}
