package invoice

import (
	ierr "github.com/flexprice/proratemate/internal/errors"
)

// NewValidationError returns a validation error for a single invoice field.
func NewValidationError(field, message string) error {
	return ierr.NewErrorf("invoice validation failed for field %s", field).
		WithHintf("%s %s", field, message).
		WithReportableDetails(map[string]any{
			"field": field,
		}).
		Mark(ierr.ErrValidation)
}
