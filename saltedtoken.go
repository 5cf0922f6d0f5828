// saltedtoken.go

package saltedtoken

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// tokenSegments is the number of dot-separated segments: header.payload.signature.salt.
const tokenSegments = 4

// SaltedTokenMaker defines the operations collaborators may use.
type SaltedTokenMaker interface {
	// Sign stamps claims with iat and exp and returns a signed token string
	Sign(claims Claims) (string, error)

	// Verify checks a token string. Rejected tokens yield Valid=false and a nil error
	Verify(token string) (*VerifyResult, error)
}

// SaltedMaker implements SaltedTokenMaker with a per-token PBKDF2-derived HMAC key.
type SaltedMaker struct {
	config        SaltedTokenConfig
	signingMethod *jwt.SigningMethodHMAC
	parser        *jwt.Parser
	logger        *zap.Logger
	now           func() time.Time
	entropy       io.Reader
}

var _ SaltedTokenMaker = (*SaltedMaker)(nil)

// NewSaltedTokenMaker creates a new token maker from the provided configuration.
//
// The configuration is validated and copied; the maker holds no other mutable
// state and is safe for concurrent use by multiple goroutines. Every Sign and
// Verify derives its own key, nothing is cached between calls.
//
// Example:
//
//	maker, err := NewSaltedTokenMaker(
//	    NewSaltedTokenConfig("shared-secret", time.Hour, DefaultIterations),
//	    WithLogger(logger),
//	)
func NewSaltedTokenMaker(config SaltedTokenConfig, opts ...Option) (*SaltedMaker, error) {
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	maker := &SaltedMaker{
		config:        config,
		signingMethod: jwt.SigningMethodHS256,
		parser:        jwt.NewParser(jwt.WithStrictDecoding()),
		logger:        zap.NewNop(),
		now:           time.Now,
		entropy:       rand.Reader,
	}
	for _, opt := range opts {
		opt(maker)
	}

	return maker, nil
}

// DefaultSaltedTokenMaker creates a maker for non-expiring tokens using
// DefaultSaltedTokenConfig.
func DefaultSaltedTokenMaker(secret string, opts ...Option) (*SaltedMaker, error) {
	return NewSaltedTokenMaker(DefaultSaltedTokenConfig(secret), opts...)
}

// Sign stamps a copy of claims with iat and exp and signs it under a fresh salt.
// Two calls with identical claims always produce different tokens.
// The only errors are unencodable claims and an unavailable entropy source.
func (maker *SaltedMaker) Sign(claims Claims) (string, error) {
	token, err := maker.sign(claims)
	if err != nil {
		signTotal.WithLabelValues("error").Inc()
		maker.logger.Error("failed to sign token", zap.Error(err))
		return "", err
	}

	signTotal.WithLabelValues("ok").Inc()
	return token, nil
}

func (maker *SaltedMaker) sign(claims Claims) (string, error) {
	stamped := stampClaims(claims, maker.now(), maker.config.TTL)

	headerJSON, err := json.Marshal(tokenHeader)
	if err != nil {
		return "", fmt.Errorf("failed to encode header: %w", err)
	}

	payloadJSON, err := json.Marshal(stamped)
	if err != nil {
		return "", fmt.Errorf("failed to encode claims: %w", err)
	}

	encodedHeader := encodeSegment(headerJSON)
	encodedPayload := encodeSegment(payloadJSON)
	signingInput := encodedHeader + "." + encodedPayload

	salt, err := newSalt(maker.entropy)
	if err != nil {
		return "", err
	}

	key := deriveSigningKey(maker.config.Secret, salt, maker.config.Iterations)

	signature, err := maker.signingMethod.Sign(signingInput, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return strings.Join([]string{
		encodedHeader,
		encodedPayload,
		encodeSegment(signature),
		encodeSegment(salt),
	}, "."), nil
}

// Verify checks the token signature under the key re-derived from its embedded
// salt, then applies HaveExpired.
//
// Malformed, forged and expired tokens all produce Valid=false with a nil
// error; the reason is not reported. Header and Payload are filled in whenever
// both parse as JSON objects, even if the signature or salt has the wrong
// size. A non-nil error means the hashing primitive itself failed.
func (maker *SaltedMaker) Verify(token string) (*VerifyResult, error) {
	result, reason, err := maker.verify(token)
	if err != nil {
		verifyTotal.WithLabelValues(outcomeError).Inc()
		maker.logger.Error("failed to verify token", zap.Error(err))
		return nil, err
	}

	verifyTotal.WithLabelValues(verifyOutcome(reason)).Inc()
	if reason != nil {
		maker.logger.Debug("token rejected", zap.String("reason", reason.Error()))
	}

	return result, nil
}

// verify returns the result, the rejection reason if any, and an operational error.
func (maker *SaltedMaker) verify(token string) (*VerifyResult, error, error) {
	parts := strings.Split(token, ".")
	if len(parts) != tokenSegments {
		return &VerifyResult{}, ErrMalformedToken, nil
	}
	encodedHeader, encodedPayload := parts[0], parts[1]

	segments := make([][]byte, tokenSegments)
	for i, part := range parts {
		decoded, err := maker.decodeSegment(part)
		if err != nil {
			return &VerifyResult{}, ErrMalformedToken, nil
		}
		segments[i] = decoded
	}
	headerJSON, payloadJSON, signature, salt := segments[0], segments[1], segments[2], segments[3]

	var header map[string]any
	if err := json.Unmarshal(headerJSON, &header); err != nil || header == nil {
		return &VerifyResult{}, ErrMalformedToken, nil
	}
	var payload Claims
	if err := json.Unmarshal(payloadJSON, &payload); err != nil || payload == nil {
		return &VerifyResult{}, ErrMalformedToken, nil
	}

	result := &VerifyResult{Header: header, Payload: payload}

	if len(signature) != signingKeySize || len(salt) != SaltSize {
		return result, ErrMalformedToken, nil
	}

	key := deriveSigningKey(maker.config.Secret, salt, maker.config.Iterations)

	err := maker.signingMethod.Verify(encodedHeader+"."+encodedPayload, signature, key)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return result, ErrSignatureMismatch, nil
	default:
		return nil, nil, fmt.Errorf("failed to verify signature: %w", err)
	}

	if HaveExpired(payload, maker.now()) {
		return result, ErrTokenExpired, nil
	}

	result.Valid = true
	return result, nil, nil
}

// decodeSegment decodes seg and requires it to be the canonical encoding of
// its bytes. base64 skips CR and LF, so without the round trip two distinct
// strings could verify as the same token.
func (maker *SaltedMaker) decodeSegment(seg string) ([]byte, error) {
	decoded, err := maker.parser.DecodeSegment(seg)
	if err != nil {
		return nil, err
	}
	if encodeSegment(decoded) != seg {
		return nil, ErrMalformedToken
	}
	return decoded, nil
}

// encodeSegment applies the unpadded base64url encoding used by every segment.
func encodeSegment(seg []byte) string {
	return (*jwt.Token)(nil).EncodeSegment(seg)
}
