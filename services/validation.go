package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldErrors checks v's struct tags and returns messages keyed by json field
// name, or nil when v is valid.
func FieldErrors(v any) (map[string]string, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, err
	}
	fields := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		key := fe.Field()
		if _, seen := fields[key]; !seen {
			fields[key] = fieldMessage(fe)
		}
	}
	return fields, nil
}

// validateStruct is FieldErrors as a validation *Error.
func validateStruct(v any) error {
	fields, err := FieldErrors(v)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return validationError("Validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s may contain at most %s items", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", label)
}

func mergeFields(dst map[string]string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindValidation {
		for k, v := range e.Fields {
			if _, seen := dst[k]; !seen {
				dst[k] = v
			}
		}
		return nil
	}
	return err
}
