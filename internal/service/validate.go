// Package service contains the business logic layer: validation, business
// rules, and orchestration between the HTTP handlers and the repositories.
// Services accept primitives and input structs, never HTTP types, and
// return typed domain errors that the handler layer translates to status
// codes.
package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/amadou/nexus-connect/internal/apperror"
)

// validate is shared by all services; validator.Validate caches struct
// metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput runs struct-tag validation and translates the first failure
// into a typed validation error carrying the offending field. Validation
// always happens before anything is persisted.
func checkInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperror.ValidationFailed(fe.Field(),
			fmt.Sprintf("field %s failed validation (%s)", fe.Field(), fe.Tag()))
	}

	return apperror.ValidationFailed("", "invalid input")
}
