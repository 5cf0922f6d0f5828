package saltedtoken

import "time"

// HaveExpired reports whether claims are expired at now.
//
// A payload without a usable iat or exp is always expired. An exp of -1 never
// expires. Otherwise the token is still valid at the exact exp second and
// expired one second later.
func HaveExpired(claims Claims, now time.Time) bool {
	iat, ok := numericClaim(claims, ClaimIssuedAt)
	if !ok || iat == 0 {
		return true
	}
	exp, ok := numericClaim(claims, ClaimExpiresAt)
	if !ok || exp == 0 {
		return true
	}

	if exp == float64(neverExpires) {
		return false
	}

	return float64(now.Unix()) > exp
}
