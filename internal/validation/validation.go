package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,12}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Username: 1-12 chars, letters, digits and underscore only.
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register username validation: %v", err))
	}

	return v
}

// Struct validates a struct using its validate tags.
func Struct(s any) error {
	return validate.Struct(s)
}

// NormalizeUsername lowercases a username for storage and lookup.
// Validation happens against the raw input; persistence is always
// lowercase so lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidUsername reports whether the raw username satisfies the account
// naming rules.
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidPassword reports whether the password length is acceptable.
func ValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 20
}
