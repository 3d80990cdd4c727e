package errors

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not_found", err: NewError("missing").Mark(ErrNotFound), expected: http.StatusNotFound},
		{name: "validation", err: NewError("bad input").WithHint("Bad input").Mark(ErrValidation), expected: http.StatusBadRequest},
		{name: "invariant", err: NewError("loop").Mark(ErrInvariantViolation), expected: http.StatusInternalServerError},
		{name: "system", err: WithError(errors.New("io")).Mark(ErrSystem), expected: http.StatusInternalServerError},
		{name: "unmarked", err: errors.New("plain"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatusFromErr(tt.err))
		})
	}
}

func TestIsInvariantViolation(t *testing.T) {
	err := NewError("walk exceeded").Mark(ErrInvariantViolation)
	assert.True(t, IsInvariantViolation(err))
	assert.False(t, IsValidation(err))
}
