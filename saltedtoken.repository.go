// File: saltedtoken.repository.go

package saltedtoken

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TokenDenylist records individual tokens that must be refused before their
// natural expiry, e.g. after logout. The codec never consults it; HTTP
// middleware does, after a token has verified.
type TokenDenylist interface {
	// Deny stores the token hash for ttl
	Deny(ctx context.Context, token string, ttl time.Duration) error

	// IsDenied reports whether the token hash is currently stored
	IsDenied(ctx context.Context, token string) (bool, error)

	// CleanupExpired removes entries whose ttl has elapsed
	CleanupExpired(ctx context.Context) error
}

// hashToken returns the hex SHA-256 of a token so raw tokens are never stored.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// DenyTTL returns how long a verified token should stay denied: the time left
// until exp, or fallback for tokens carrying the -1 sentinel. A zero result
// means the token is already past its expiry and needs no entry.
func DenyTTL(claims Claims, now time.Time, fallback time.Duration) time.Duration {
	expiresAt, ok, never := claims.ExpiresAt()
	if !ok {
		return 0
	}
	if never {
		return fallback
	}

	// exp is inclusive, so the token stays acceptable through that whole second.
	remaining := expiresAt.Add(time.Second).Sub(now)
	if remaining <= 0 {
		return 0
	}
	return remaining
}
