package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// DefaultCodeLength is the length of generated short codes.
const DefaultCodeLength = 8

// Alphabet is the URL-safe character set codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// NewCodeGenerator returns a cryptographically random generator of codes of the given length.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, fmt.Errorf("create code generator: %w", err)
	}

	return gen, nil
}

// HashURL computes the hex-encoded SHA-256 of the exact long URL bytes.
func HashURL(longURL string) URLHash {
	h := sha256.Sum256([]byte(longURL))

	return URLHash(hex.EncodeToString(h[:]))
}
