// Package validation guards routes with a structural schema check that runs
// before the handler. A Go struct is the schema: JSON decoding enforces the
// primitive types, `validate` tags enforce presence. Business rules such as
// uniqueness are left to the repository.
package validation

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const PayloadKey = "validation.payload"

var ErrInvalidPayload = errors.New("invalid payload")

type Validator struct{ v *validator.Validate }

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Check returns nil or an error wrapping ErrInvalidPayload that names every
// failing field.
func (v *Validator) Check(payload any) error {
	err := v.v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %v", ErrInvalidPayload, fields)
	}
	return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
}

// Guard decodes the JSON body into T and validates it. On failure the status
// is set to 400 before the error is recorded and the chain aborted, which is
// what the global error hook keys the validation response on. On success the
// payload is available to the handler through Payload.
func Guard[T any](v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := new(T)
		if err := c.ShouldBindBodyWith(in, binding.JSON); err != nil {
			Reject(c, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
			return
		}
		if err := v.Check(in); err != nil {
			Reject(c, err)
			return
		}
		c.Set(PayloadKey, in)
		c.Next()
	}
}

// Reject marks the request as a validation failure for the global error hook.
func Reject(c *gin.Context, err error) {
	c.Status(400)
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.Abort()
}

func Payload[T any](c *gin.Context) (*T, bool) {
	v, ok := c.Get(PayloadKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*T)
	return p, ok
}
