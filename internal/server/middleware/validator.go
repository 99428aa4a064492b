package middleware

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

// NewValidator reports field names the way clients send them.
func NewValidator() *Validator {
	validate := validator.New()

	tagNames := []string{"json", "param", "query", "header"}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range tagNames {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})

	return &Validator{validate: validate}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
