package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length bounds accepted by Generate.
const (
	MinLength = 6
	MaxLength = 50
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numbers   = "0123456789"
	symbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Options controls password composition. Lowercase letters are always
// included.
type Options struct {
	Length           int
	IncludeUppercase bool
	IncludeNumbers   bool
	IncludeSymbols   bool
}

// DefaultOptions matches the defaults clients get when they send an
// empty request body.
func DefaultOptions() Options {
	return Options{
		Length:           16,
		IncludeUppercase: true,
		IncludeNumbers:   true,
		IncludeSymbols:   true,
	}
}

// Generate produces a random password from the assembled charset using
// crypto/rand.
func Generate(opts Options) (string, error) {
	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", fmt.Errorf("password length must be between %d and %d", MinLength, MaxLength)
	}

	charset := lowercase
	if opts.IncludeUppercase {
		charset += uppercase
	}
	if opts.IncludeNumbers {
		charset += numbers
	}
	if opts.IncludeSymbols {
		charset += symbols
	}

	max := big.NewInt(int64(len(charset)))
	out := make([]byte, opts.Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		out[i] = charset[n.Int64()]
	}

	return string(out), nil
}
