package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username *string `json:"username" validate:"required"`
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

func init() { gin.SetMode(gin.TestMode) }

func guarded(t *testing.T, reached *bool) *gin.Engine {
	t.Helper()
	r := gin.New()
	r.POST("/users", Guard[signup](New()), func(c *gin.Context) {
		*reached = true
		in, ok := Payload[signup](c)
		require.True(t, ok)
		c.JSON(http.StatusCreated, gin.H{"username": *in.Username})
	})
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestGuard_ValidPayloadReachesHandler(t *testing.T) {
	var reached bool
	w := post(guarded(t, &reached), `{"username":"BruceWayne","email":"bruce.wayne@gotham.com","password":"batm4n"}`)

	assert.True(t, reached)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"username":"BruceWayne"}`, w.Body.String())
}

func TestGuard_EmptyStringsArePresent(t *testing.T) {
	var reached bool
	post(guarded(t, &reached), `{"username":"","email":"","password":""}`)
	assert.True(t, reached)
}

func TestGuard_RejectsBeforeHandler(t *testing.T) {
	cases := map[string]string{
		"missing fields": `{"username":"JamesBond"}`,
		"wrong type":     `{"username":"a","email":"b","password":7}`,
		"not json":       `username=a`,
		"empty body":     ``,
		"null":           `null`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var reached bool
			var recorded []*gin.Error
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Next()
				recorded = c.Errors
			})
			r.POST("/users", Guard[signup](New()), func(c *gin.Context) { reached = true })

			w := post(r, body)
			assert.False(t, reached)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.Len(t, recorded, 1)
			assert.ErrorIs(t, recorded[0].Err, ErrInvalidPayload)
		})
	}
}

func TestValidator_CheckNamesFields(t *testing.T) {
	err := New().Check(&signup{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Contains(t, err.Error(), "Username(required)")
	assert.Contains(t, err.Error(), "Password(required)")
}

func TestPayload_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := Payload[signup](c)
	assert.False(t, ok)
}
