package saltedtoken

import "errors"

// Verification reasons never leave Verify. They only label logs and metrics
// so that callers cannot learn why a token was refused.
var (
	// ErrMalformedToken marks a token with a bad segment count, encoding or JSON.
	ErrMalformedToken = errors.New("malformed token")
	// ErrSignatureMismatch marks a token whose signature does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")
	// ErrTokenExpired marks a token rejected by HaveExpired.
	ErrTokenExpired = errors.New("token has expired")
)

// ErrEntropyUnavailable is returned by Sign when no salt can be read.
var ErrEntropyUnavailable = errors.New("entropy source unavailable")
