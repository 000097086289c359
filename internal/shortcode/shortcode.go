package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length is the number of characters in a generated short code.
const Length = 7

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// New returns a uniformly random alphanumeric short code. Codes drawn
// independently can collide; callers rely on the storage layer's unique
// constraint and retry on violation.
func New() (string, error) {
	code, err := gonanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate short code: %w", err)
	}
	return code, nil
}
