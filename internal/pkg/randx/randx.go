/*
Package randx generates the random identifiers the relay hands out:
fallback-name suffixes for colliding usernames and opaque connection IDs.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base36Chars is the character set used for name suffixes (0-9, a-z).
	Base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

	// Base36Len is the size of the Base36 character set.
	Base36Len = int64(len(Base36Chars))

	// NameSuffixLength is the fixed length of a fallback-name suffix.
	NameSuffixLength = 3
)

// NameSuffix generates a NameSuffixLength-character Base36 string using
// crypto/rand. It is appended to a contested username to synthesize a
// fallback name; uniqueness of the result is probabilistic, not guaranteed.
func NameSuffix() (string, error) {
	result := make([]byte, NameSuffixLength)

	for i := 0; i < NameSuffixLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base36Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for name suffix: %v", err)
		}

		result[i] = Base36Chars[num.Int64()]
	}

	return string(result), nil
}

// ConnectionID generates a UUID v4 string identifying one live connection.
func ConnectionID() string {
	return uuid.New().String()
}
