package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct returns nil when s is valid, otherwise a map of json field
// name to the failed rule (e.g. "username": "min").
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// FieldErrors is returned by Validate and rendered as a 400 by ErrorHandler.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return "validation failed"
}

// Validate is ValidateStruct for handlers that return errors instead of
// writing the response themselves.
func Validate(s interface{}) error {
	if fields := ValidateStruct(s); fields != nil {
		return FieldErrors(fields)
	}
	return nil
}
