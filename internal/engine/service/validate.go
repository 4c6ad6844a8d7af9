package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct 将校验失败转换为 Validation 错误
func validateStruct(v any) error {
	return toValidationErr(validate.Struct(v), "")
}

func validateVar(field string, value any, tag string) error {
	return toValidationErr(validate.Var(value, tag), field)
}

func toValidationErr(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.Validation, err, "invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		msgs = append(msgs, fieldMessage(name, fe))
	}
	return errs.New(errs.Validation, "%s", strings.Join(msgs, "; "))
}

func fieldMessage(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "http_url":
		return fmt.Sprintf("%s must be a valid http(s) url", name)
	case "excludesall":
		return fmt.Sprintf("%s contains invalid characters", name)
	default:
		return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}
