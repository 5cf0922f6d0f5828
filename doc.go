// Package saltedtoken issues and verifies self-contained bearer tokens signed
// with a per-token key.
//
// # Overview
//
// A token is four dot-separated base64url segments:
//
//	header.payload.signature.salt
//
// The header is always {"alg":"HS256","typ":"JWT"}. The payload is the
// caller's flat claim mapping plus iat (issuance, Unix seconds) and exp
// (expiry, Unix seconds, or -1 for a token that never expires). The salt is
// 16 random bytes drawn for every Sign call. The signing key is derived from
// the shared secret and that salt with PBKDF2-HMAC-SHA256 (100,000 iterations
// by default), and the signature is HMAC-SHA256 over the raw
// "header.payload" text.
//
// No session store is involved: a verifier rebuilds the key from the salt in
// the token and its own copy of the secret.
//
// # Usage Example
//
//	maker, err := saltedtoken.NewSaltedTokenMaker(
//	    saltedtoken.NewSaltedTokenConfig("shared-secret", time.Hour, saltedtoken.DefaultIterations),
//	)
//	if err != nil {
//	    log.Fatal("Failed to create token maker:", err)
//	}
//
//	token, err := maker.Sign(saltedtoken.Claims{"sub": "user-42", "role": "admin"})
//	if err != nil {
//	    log.Fatal("Failed to sign token:", err)
//	}
//
//	result, err := maker.Verify(token)
//	if err != nil {
//	    log.Fatal("Hashing backend failed:", err)
//	}
//	if !result.Valid {
//	    // refused: malformed, forged or expired, deliberately indistinguishable
//	}
//
// # Expiry
//
// SaltedTokenConfig.TTL is a duration from issuance; exp is stamped as
// iat + TTL. NoExpiry stamps exp = -1. A token is valid through its exp
// second and expired one second later. A payload lacking iat or exp is always
// expired.
//
// # Errors
//
// Verify never reports why a token was refused. Its error is reserved for
// failures of the hashing primitive. Sign fails only when claims cannot be
// encoded as JSON or when the entropy source cannot supply a salt.
//
// # Denylist
//
// TokenDenylist (in-memory or Redis) lets HTTP middleware refuse individual
// tokens before they expire, e.g. after logout. The maker itself stays
// stateless and never reads it.
//
// # Dependencies
//
// - github.com/golang-jwt/jwt/v5 - HMAC primitive and segment encoding
// - golang.org/x/crypto/pbkdf2 - key derivation
// - github.com/redis/go-redis/v9 - Redis denylist (optional)
// - go.uber.org/zap - logging
// - github.com/prometheus/client_golang - metrics
package saltedtoken
