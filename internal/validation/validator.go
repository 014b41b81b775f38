// Package validation проверяет формы через validator/v10
// и превращает ошибки полей в ошибки из common.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"needbook.app/telegram-bot/internal/common"
)

// Validator — обёртка над validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New создаёт валидатор. Имена полей в ошибках берутся из тега `label`.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("label"); name != "" {
			return name
		}
		return fld.Name
	})

	// notblank: строка не пустая после TrimSpace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{v: v}
}

// FieldError — ошибка одного поля, оборачивает sentinel из common.
type FieldError struct {
	Field   string
	Message string
	kind    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return e.kind
}

// Validate проверяет структуру и возвращает первую ошибку поля.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	return &FieldError{
		Field:   e.Field(),
		Message: friendlyMessage(e),
		kind:    kindOf(e),
	}
}

func kindOf(e validator.FieldError) error {
	switch e.Tag() {
	case "required", "notblank":
		return common.ErrFieldRequired
	case "max":
		return common.ErrFieldTooLong
	default:
		return common.ErrFieldInvalid
	}
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}
