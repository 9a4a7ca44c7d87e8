// internal/domain/user/card_service_test.go
package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectBrand(t *testing.T) {
	tests := []struct {
		number string
		want   string
	}{
		{"4111111111111111", "visa"},
		{"5500005555555559", "mastercard"},
		{"2221000000000009", "mastercard"},
		{"340000000000009", "amex"},
		{"370000000000002", "amex"},
		{"6011000000000004", "discover"},
		{"9999999999999999", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, detectBrand(tt.number), tt.number)
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, isDigits("4111111111111111"))
	assert.False(t, isDigits("4111 1111"))
	assert.False(t, isDigits(""))
	assert.False(t, isDigits("41a1"))
}

func TestCardIsExpired(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, (&Card{ExpMonth: 5, ExpYear: 2026}).IsExpired(now))
	assert.False(t, (&Card{ExpMonth: 6, ExpYear: 2026}).IsExpired(now))
	assert.False(t, (&Card{ExpMonth: 1, ExpYear: 2027}).IsExpired(now))
	assert.True(t, (&Card{ExpMonth: 12, ExpYear: 2025}).IsExpired(now))
}

func TestCardMaskedNumber(t *testing.T) {
	card := &Card{Last4: "4242"}
	assert.Equal(t, "**** **** **** 4242", card.MaskedNumber())
}

func TestUserGetDisplayName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace", u.GetDisplayName())

	u = &User{Email: "ada@example.com"}
	assert.Equal(t, "ada@example.com", u.GetDisplayName())
}
