package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/neurodesk/helpdesk-service/pkg/util"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and maps failures onto the standard
// VALIDATION_FAILED error shape, keyed by the offending field.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	details := map[string]any{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field())] = "failed on '" + fe.Tag() + "' rule"
		}
	}
	return util.NewValidationError("request validation failed", details)
}
