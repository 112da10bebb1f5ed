package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates structs using `validate` tags.
type Validator interface {
	Validate(interface{}) error
}

type playgroundValidator struct {
	v *validator.Validate
}

func New() Validator {
	return &playgroundValidator{v: validator.New()}
}

func (p *playgroundValidator) Validate(obj interface{}) error {
	err := p.v.Struct(obj)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return fmt.Errorf("field %s failed validation on %s", fe.Field(), fe.Tag())
	}
	return err
}
