package saltedtoken

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeValid     = "valid"
	outcomeMalformed = "malformed"
	outcomeSignature = "signature"
	outcomeExpired   = "expired"
	outcomeError     = "error"
)

var (
	signTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saltedtoken_sign_total",
		Help: "Total number of sign operations",
	}, []string{"status"})

	verifyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saltedtoken_verify_total",
		Help: "Total number of verify operations by outcome",
	}, []string{"outcome"})

	keyDerivationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "saltedtoken_key_derivation_seconds",
		Help:    "Time spent deriving per-token signing keys",
		Buckets: prometheus.ExponentialBuckets(0.001, 2.0, 10), // 1ms to ~0.5s
	})
)

// verifyOutcome maps a verification reason to its metric label.
func verifyOutcome(reason error) string {
	switch reason {
	case nil:
		return outcomeValid
	case ErrMalformedToken:
		return outcomeMalformed
	case ErrSignatureMismatch:
		return outcomeSignature
	case ErrTokenExpired:
		return outcomeExpired
	default:
		return outcomeError
	}
}
