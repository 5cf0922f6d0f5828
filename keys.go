package saltedtoken

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes embedded in every token.
	SaltSize = 16

	// signingKeySize matches the HMAC-SHA256 block output.
	signingKeySize = sha256.Size
)

// deriveSigningKey stretches the secret with PBKDF2-HMAC-SHA256 into a
// single-use HMAC key. The same (secret, salt, iterations) always yields the
// same key, which is what lets a verifier rebuild it from the embedded salt.
func deriveSigningKey(secret string, salt []byte, iterations int) []byte {
	start := time.Now()
	key := pbkdf2.Key([]byte(secret), salt, iterations, signingKeySize, sha256.New)
	keyDerivationDuration.Observe(time.Since(start).Seconds())
	return key
}

// newSalt reads a fresh salt from the entropy source.
func newSalt(entropy io.Reader) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(entropy, salt); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEntropyUnavailable, err)
	}
	return salt, nil
}
