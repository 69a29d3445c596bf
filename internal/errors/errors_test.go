package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "validation error with code",
			err:      NewValidationError("missing_url", "no url given"),
			expected: "[missing_url] no url given",
		},
		{
			name:     "delivery error with status",
			err:      NewDeliveryError(404, "tracking request rejected"),
			expected: "[delivery_failed] tracking request rejected (status 404)",
		},
		{
			name:     "transport delivery error without status",
			err:      NewDeliveryError(0, "dial failed"),
			expected: "[delivery_failed] dial failed",
		},
		{
			name:     "error with cause",
			err:      NewIOError("spool_read", "cannot read spool file").WithCause(fmt.Errorf("permission denied")),
			expected: "[spool_read] cannot read spool file: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := NewValidationError("missing_url", "no url given")

	assert.True(t, stderrors.Is(err, &Error{Kind: KindValidation}))
	assert.True(t, stderrors.Is(err, &Error{Kind: KindValidation, Code: "missing_url"}))
	assert.False(t, stderrors.Is(err, &Error{Kind: KindValidation, Code: "other"}))
	assert.False(t, stderrors.Is(err, &Error{Kind: KindDelivery}))
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewDeliveryError(0, "request failed").WithCause(cause)

	assert.Equal(t, cause, stderrors.Unwrap(err))
	assert.True(t, stderrors.Is(err, cause))
}

func TestIsKind(t *testing.T) {
	wrapped := fmt.Errorf("track: %w", NewDeliveryError(500, "server error"))

	assert.True(t, IsKind(wrapped, KindDelivery))
	assert.False(t, IsKind(wrapped, KindValidation))
	assert.False(t, IsKind(fmt.Errorf("plain"), KindDelivery))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 404, StatusCode(NewDeliveryError(404, "not found")))
	assert.Equal(t, 0, StatusCode(NewDeliveryError(0, "transport")))
	assert.Equal(t, 0, StatusCode(fmt.Errorf("plain")))
}
