// Package validation checks input structs with go-playground/validator and reports
// failures as apperror validation errors.
package validation

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"

	"szafa/internal/core/apperror"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates v. Field failures come back as one apperror with a
// "fields" detail mapping each failing field to the violated tag.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.NewValidation(err.Error())
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return apperror.NewValidation("invalid input").WithDetail("fields", fields)
}
