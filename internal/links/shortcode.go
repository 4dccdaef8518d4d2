// Package links generates and validates the short codes that back each
// link's short URL.
package links

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// ShortCodeLength is the length of generated short codes.
const ShortCodeLength = 7

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	// ErrShortCodeEmpty is returned when a short code is empty.
	ErrShortCodeEmpty = errors.New("short code must not be empty")

	// ErrShortCodeFormat is returned when a short code contains characters
	// outside [A-Za-z0-9] or is longer than 32 characters.
	ErrShortCodeFormat = errors.New("short code must be 1 to 32 alphanumeric characters")

	shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{1,32}$`)
)

// GenerateShortCode returns a random alphanumeric code of the given length.
// Uniqueness is enforced by the store, which reports a collision so the
// caller can draw again.
func GenerateShortCode(length int) (string, error) {
	if length <= 0 {
		length = ShortCodeLength
	}
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// ValidateShortCode checks the format of code. It does NOT check uniqueness.
func ValidateShortCode(code string) error {
	if code == "" {
		return ErrShortCodeEmpty
	}
	if !shortCodePattern.MatchString(code) {
		return ErrShortCodeFormat
	}
	return nil
}
