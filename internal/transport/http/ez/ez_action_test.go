package ez

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"users-api/internal/transport/http/validation"
)

func init() { gin.SetMode(gin.TestMode) }

type named struct {
	Name *string `json:"name" validate:"required"`
}

type captured struct{ errs []*gin.Error }

func engine(rec *captured) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		rec.errs = c.Errors
	})
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_ExplicitStatusAndHeader(t *testing.T) {
	var rec captured
	r := engine(&rec)
	Register(r, Action[named, gin.H]{
		Method:     http.MethodPost,
		Path:       "/things",
		Middleware: []gin.HandlerFunc{validation.Guard[named](validation.New())},
		Binder:     BindGuarded,
		Handler: func(c *gin.Context, in *named) (Reply[gin.H], error) {
			return Created(gin.H{"name": *in.Name}).WithHeader("X-Thing", "yes"), nil
		},
	})

	w := do(r, http.MethodPost, "/things", `{"name":"a"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "yes", w.Header().Get("X-Thing"))
	assert.JSONEq(t, `{"name":"a"}`, w.Body.String())
}

func TestRegister_ZeroStatusDefaultsTo200(t *testing.T) {
	var rec captured
	r := engine(&rec)
	Register(r, Action[struct{}, []int]{
		Method: http.MethodGet, Path: "/list", Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (Reply[[]int], error) {
			return Reply[[]int]{Body: []int{1}}, nil
		},
	})

	w := do(r, http.MethodGet, "/list", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[1]`, w.Body.String())
}

func TestRegister_LocalErrorWrittenWithCauseHidden(t *testing.T) {
	var rec captured
	r := engine(&rec)
	cause := errors.New("pq: duplicate key value violates unique constraint")
	Register(r, Action[struct{}, gin.H]{
		Method: http.MethodGet, Path: "/x", Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (Reply[gin.H], error) {
			return Reply[gin.H]{}, Conflict("Resource already exists!", cause)
		},
	})

	w := do(r, http.MethodGet, "/x", "")
	assert.Equal(t, 422, w.Code)
	assert.JSONEq(t, `{"message":"Resource already exists!","status":422}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "pq:")
	require.Len(t, rec.errs, 1)
	assert.Equal(t, cause, rec.errs[0].Err)
}

func TestRegister_UnclassifiedErrorLeftForGlobalHook(t *testing.T) {
	var rec captured
	r := engine(&rec)
	boom := errors.New("boom")
	Register(r, Action[struct{}, gin.H]{
		Method: http.MethodGet, Path: "/x", Binder: BindNone,
		Handler: func(*gin.Context, *struct{}) (Reply[gin.H], error) { return Reply[gin.H]{}, boom },
	})

	w := do(r, http.MethodGet, "/x", "")
	assert.Empty(t, w.Body.String())
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0].Err, boom)
}

func TestRegister_BindJSON(t *testing.T) {
	var rec captured
	r := engine(&rec)
	var got *named
	Register(r, Action[named, gin.H]{
		Method: http.MethodPatch, Path: "/x", Binder: BindJSON,
		Handler: func(_ *gin.Context, in *named) (Reply[gin.H], error) {
			got = in
			return OK(gin.H{}), nil
		},
	})

	w := do(r, http.MethodPatch, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Nil(t, got.Name)

	w = do(r, http.MethodPatch, "/x", `{"name":"z"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "z", *got.Name)

	got = nil
	w = do(r, http.MethodPatch, "/x", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, got)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0].Err, validation.ErrInvalidPayload)
}

func TestRegister_GuardedWithoutGuardIsUnhandled(t *testing.T) {
	var rec captured
	r := engine(&rec)
	Register(r, Action[named, gin.H]{
		Method: http.MethodPost, Path: "/x", Binder: BindGuarded,
		Handler: func(*gin.Context, *named) (Reply[gin.H], error) { return OK(gin.H{}), nil },
	})

	do(r, http.MethodPost, "/x", `{"name":"a"}`)
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0].Err, errNoPayload)
}

func TestAErr(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("Unable to update resource!", cause)

	var ae *AErr
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 500, ae.Status())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "Unable to update resource!")
	assert.Equal(t, 404, NotFound("x", nil).(*AErr).Status())
}
