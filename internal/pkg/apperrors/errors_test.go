// internal/pkg/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("quantity must be positive"), KindValidation},
		{"not found", NotFound("coupon %d not found", 7), KindNotFound},
		{"conflict", Conflict("insufficient stock"), KindConflict},
		{"unauthorized", Unauthorized("invalid token"), KindUnauthorized},
		{"internal", Internal(errors.New("db down")), KindInternal},
		{"plain error", errors.New("something"), KindInternal},
		{"wrapped", fmt.Errorf("checkout: %w", Conflict("coupon exhausted")), KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "cart line not found", MessageOf(NotFound("cart line not found")))

	// internal causes never leak
	assert.Equal(t, "internal server error", MessageOf(Internal(errors.New("pq: connection refused"))))
	assert.Equal(t, "internal server error", MessageOf(errors.New("raw failure")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("duplicate key value violates unique constraint")
	err := Wrap(KindConflict, cause, "coupon already redeemed")

	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), "coupon already redeemed")
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("missing")))
	assert.False(t, IsNotFound(Conflict("busy")))
	assert.True(t, IsValidation(Validation("bad")))
	assert.False(t, IsConflict(nil))
}
