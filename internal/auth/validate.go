// server/internal/auth/validate.go
package auth

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted on provisioning.
const MinPasswordLength = 6

var validate = validator.New()

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail returns an auth/invalid-email error for malformed addresses.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return NewError(CodeInvalidEmail)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return NewError(CodeWeakPassword)
	}
	return nil
}
