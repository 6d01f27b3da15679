// Package keygen generates API keys in the shape the key checker accepts.
package keygen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Accepted key length bounds; must match the request key checker.
const (
	MinLength     = 20
	MaxLength     = 50
	DefaultLength = 32
)

// Generate returns a cryptographically random alphanumeric key of the given
// length. Lengths outside [MinLength, MaxLength] are rejected: such a key
// would never pass the request key check.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", fmt.Errorf("key length must be between %d and %d, got %d", MinLength, MaxLength, length)
	}

	key := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		key[i] = alphabet[n.Int64()]
	}
	return string(key), nil
}

// Prefix returns the loggable 8-character prefix of a key.
func Prefix(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}
