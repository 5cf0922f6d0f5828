package saltedtoken

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

const (
	// NoExpiry makes every issued token carry the exp = -1 sentinel.
	NoExpiry time.Duration = -1

	// DefaultIterations is the PBKDF2 iteration count used when none is configured.
	DefaultIterations = 100000

	// Algorithm is the only supported signing algorithm.
	Algorithm = "HS256"
)

// SaltedTokenConfig holds the construction-time configuration of a SaltedMaker.
//
// Fields:
//   - Secret: Shared secret, used as the PBKDF2 password
//   - TTL: Lifetime of issued tokens measured from issuance, or NoExpiry
//   - Iterations: PBKDF2 iteration count used for every key derivation
//
// The config is copied into the maker and never mutated afterwards.
type SaltedTokenConfig struct {
	Secret     string
	TTL        time.Duration
	Iterations int
}

// NewSaltedTokenConfig creates a SaltedTokenConfig with every setting explicit.
//
// Example:
//
//	config := NewSaltedTokenConfig(
//	    "shared-secret",
//	    30*time.Minute, // tokens expire 30 minutes after issuance
//	    DefaultIterations,
//	)
func NewSaltedTokenConfig(secret string, ttl time.Duration, iterations int) SaltedTokenConfig {
	return SaltedTokenConfig{
		Secret:     secret,
		TTL:        ttl,
		Iterations: iterations,
	}
}

// DefaultSaltedTokenConfig returns a config for non-expiring tokens derived
// with DefaultIterations.
func DefaultSaltedTokenConfig(secret string) SaltedTokenConfig {
	return SaltedTokenConfig{
		Secret:     secret,
		TTL:        NoExpiry,
		Iterations: DefaultIterations,
	}
}

// validateConfig validates the configuration.
func validateConfig(config *SaltedTokenConfig) error {
	if config.Secret == "" {
		return fmt.Errorf("secret is required")
	}
	if config.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", config.Iterations)
	}
	if config.TTL != NoExpiry && config.TTL < time.Second {
		return fmt.Errorf("ttl must be at least 1s or NoExpiry, got %s", config.TTL)
	}
	return nil
}

// Option customizes a SaltedMaker at construction time.
type Option func(*SaltedMaker)

// WithLogger sets the logger used for diagnostics. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(maker *SaltedMaker) {
		if logger != nil {
			maker.logger = logger
		}
	}
}

// WithClock replaces time.Now as the source of issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(maker *SaltedMaker) {
		if now != nil {
			maker.now = now
		}
	}
}

// WithEntropy replaces crypto/rand as the salt source.
func WithEntropy(r io.Reader) Option {
	return func(maker *SaltedMaker) {
		if r != nil {
			maker.entropy = r
		}
	}
}
