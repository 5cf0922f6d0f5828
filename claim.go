package saltedtoken

import (
	"encoding/json"
	"time"
)

const (
	// ClaimIssuedAt is stamped with the issuance Unix time on every token.
	ClaimIssuedAt = "iat"
	// ClaimExpiresAt is stamped with the expiry Unix time, or -1.
	ClaimExpiresAt = "exp"

	neverExpires int64 = -1
)

// Claims is a flat mapping of claim name to JSON-compatible value.
type Claims map[string]any

// Header is the fixed token header. Field order gives {"alg":..,"typ":..}.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

var tokenHeader = Header{Alg: Algorithm, Typ: "JWT"}

// VerifyResult is the outcome of Verify.
//
// Header and Payload are populated whenever both segments could be decoded,
// even if Valid is false. Their contents must not be trusted unless Valid is
// true.
type VerifyResult struct {
	Valid   bool           `json:"valid"`
	Header  map[string]any `json:"header,omitempty"`
	Payload Claims         `json:"payload,omitempty"`
}

// stampClaims copies claims and injects iat and exp for the given issuance time.
func stampClaims(claims Claims, issuedAt time.Time, ttl time.Duration) Claims {
	stamped := make(Claims, len(claims)+2)
	for name, value := range claims {
		stamped[name] = value
	}

	iat := issuedAt.Unix()
	stamped[ClaimIssuedAt] = iat
	if ttl == NoExpiry {
		stamped[ClaimExpiresAt] = neverExpires
	} else {
		stamped[ClaimExpiresAt] = iat + int64(ttl/time.Second)
	}
	return stamped
}

// numericClaim reads a claim as a number. Decoded JSON yields float64; freshly
// stamped claims hold int64.
func numericClaim(claims Claims, name string) (float64, bool) {
	switch v := claims[name].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// IssuedAt returns the iat claim as a time, if present and numeric.
func (c Claims) IssuedAt() (time.Time, bool) {
	iat, ok := numericClaim(c, ClaimIssuedAt)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(iat), 0), true
}

// ExpiresAt returns the exp claim as a time. The second result is false when
// exp is missing or non-numeric; the third is true for the -1 sentinel.
func (c Claims) ExpiresAt() (expiresAt time.Time, ok bool, never bool) {
	exp, ok := numericClaim(c, ClaimExpiresAt)
	if !ok {
		return time.Time{}, false, false
	}
	if exp == float64(neverExpires) {
		return time.Time{}, true, true
	}
	return time.Unix(int64(exp), 0), true, false
}
