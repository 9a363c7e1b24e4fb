package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest runs struct tags and reports the first failure as a
// ValidationError naming the JSON field.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Validation(err.Error())
	}
	fe := verrs[0]
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return apperrors.Validation(fmt.Sprintf("%s is required", field))
	case "min":
		return apperrors.Validation(fmt.Sprintf("%s must contain at least %s entries", field, fe.Param()))
	case "max":
		return apperrors.Validation(fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	default:
		return apperrors.Validation(fmt.Sprintf("%s is invalid (%s=%s)", field, fe.Tag(), fe.Param()))
	}
}

// fieldPath drops the struct name: "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
