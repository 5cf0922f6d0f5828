// tests_helpers_test.go

package saltedtoken

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// Test Helper Functions

const (
	testSecret = "test-secret-32-bytes-long-1234567890"

	// testIterations keeps key derivation cheap; the default count has its own test.
	testIterations = 1000
)

var testEpoch = time.Unix(1700000000, 0)

// testClock is a settable clock shared between a maker and its test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func createTestMaker(t testing.TB, ttl time.Duration, opts ...Option) *SaltedMaker {
	t.Helper()

	maker, err := NewSaltedTokenMaker(NewSaltedTokenConfig(testSecret, ttl, testIterations), opts...)
	require.NoError(t, err)
	return maker
}

// signRaw builds a token around arbitrary header and payload JSON, signed
// correctly for secret and salt. It lets tests exercise payloads Sign would
// never produce.
func signRaw(t *testing.T, secret string, headerJSON, payloadJSON string, salt []byte) string {
	t.Helper()

	encodedHeader := encodeSegment([]byte(headerJSON))
	encodedPayload := encodeSegment([]byte(payloadJSON))

	key := deriveSigningKey(secret, salt, testIterations)
	signature, err := jwt.SigningMethodHS256.Sign(encodedHeader+"."+encodedPayload, key)
	require.NoError(t, err)

	return strings.Join([]string{encodedHeader, encodedPayload, encodeSegment(signature), encodeSegment(salt)}, ".")
}

func testSalt() []byte {
	return []byte("0123456789abcdef")
}

// decodePayload reads the payload segment of a token without verifying it.
func decodePayload(t *testing.T, token string) map[string]any {
	t.Helper()

	parts := strings.Split(token, ".")
	require.Len(t, parts, tokenSegments)

	raw, err := jwt.NewParser().DecodeSegment(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func testRedisDenylist(t *testing.T) (*RedisTokenDenylist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	denylist, err := NewRedisTokenDenylist(context.Background(), client, nil)
	require.NoError(t, err)

	return denylist, mr
}
