package validation

import (
	"github.com/go-playground/validator/v10"
)

// Validator adapts validator.Validate to echo.Validator and shares the
// instance with controllers.
type Validator struct {
	v *validator.Validate
}

func New(v *validator.Validate) *Validator {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Validator{v: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

func (v *Validator) Engine() *validator.Validate { return v.v }
