package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type FieldError struct {
	Field string
	Tag   string
	Param string
}

var validate = validator.New()

func init() {
	// uuid.UUID zero value passes "required", so check against uuid.Nil explicitly
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
}

func ValidateStruct(data interface{}) []FieldError {
	var fieldErrors []FieldError
	if err := validate.Struct(data); err != nil {
		for _, ve := range err.(validator.ValidationErrors) {
			fieldErrors = append(fieldErrors, FieldError{
				Field: ve.StructNamespace(),
				Tag:   ve.Tag(),
				Param: ve.Param(),
			})
		}
	}
	return fieldErrors
}

// FormatErrors renders validation failures into a single message for error responses.
func FormatErrors(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("field '%s' failed on '%s'", e.Field, e.Tag))
	}
	return strings.Join(parts, "; ")
}
