// File: saltedtoken_denylist_test.go

package saltedtoken

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenDenylist(t *testing.T) {
	ctx := context.Background()

	newDenylist := func(t *testing.T) (*MemoryTokenDenylist, *testClock) {
		t.Helper()
		clock := newTestClock(testEpoch)
		denylist := NewMemoryTokenDenylist(time.Hour)
		denylist.now = clock.Now
		t.Cleanup(func() { _ = denylist.Close() })
		return denylist, clock
	}

	t.Run("Deny and check", func(t *testing.T) {
		denylist, _ := newDenylist(t)

		denied, err := denylist.IsDenied(ctx, "token-a")
		require.NoError(t, err)
		assert.False(t, denied)

		require.NoError(t, denylist.Deny(ctx, "token-a", time.Minute))

		denied, err = denylist.IsDenied(ctx, "token-a")
		require.NoError(t, err)
		assert.True(t, denied)

		denied, err = denylist.IsDenied(ctx, "token-b")
		require.NoError(t, err)
		assert.False(t, denied)
	})

	t.Run("Entries lapse after ttl", func(t *testing.T) {
		denylist, clock := newDenylist(t)
		require.NoError(t, denylist.Deny(ctx, "token-a", time.Minute))

		clock.Set(testEpoch.Add(time.Minute))
		denied, err := denylist.IsDenied(ctx, "token-a")
		require.NoError(t, err)
		assert.True(t, denied, "still denied at the boundary")

		clock.Set(testEpoch.Add(time.Minute + time.Second))
		denied, err = denylist.IsDenied(ctx, "token-a")
		require.NoError(t, err)
		assert.False(t, denied)
	})

	t.Run("Cleanup removes lapsed entries only", func(t *testing.T) {
		denylist, clock := newDenylist(t)
		require.NoError(t, denylist.Deny(ctx, "short", time.Minute))
		require.NoError(t, denylist.Deny(ctx, "long", time.Hour))
		assert.Equal(t, 2, denylist.Len())

		clock.Set(testEpoch.Add(10 * time.Minute))
		require.NoError(t, denylist.CleanupExpired(ctx))
		assert.Equal(t, 1, denylist.Len())

		denied, err := denylist.IsDenied(ctx, "long")
		require.NoError(t, err)
		assert.True(t, denied)
	})

	t.Run("Invalid input", func(t *testing.T) {
		denylist, _ := newDenylist(t)

		assert.EqualError(t, denylist.Deny(ctx, "", time.Minute), "token cannot be empty")
		assert.EqualError(t, denylist.Deny(ctx, "token-a", 0), "ttl must be positive")

		_, err := denylist.IsDenied(ctx, "")
		assert.EqualError(t, err, "token cannot be empty")
	})

	t.Run("Close is idempotent", func(t *testing.T) {
		denylist, _ := newDenylist(t)
		assert.NoError(t, denylist.Close())
		assert.NoError(t, denylist.Close())
	})
}

func TestRedisTokenDenylist(t *testing.T) {
	ctx := context.Background()

	t.Run("Nil client", func(t *testing.T) {
		_, err := NewRedisTokenDenylist(ctx, nil, nil)
		assert.EqualError(t, err, "redis client cannot be nil")
	})

	t.Run("Deny and check", func(t *testing.T) {
		denylist, mr := testRedisDenylist(t)

		require.NoError(t, denylist.Deny(ctx, "token-a", time.Minute))

		denied, err := denylist.IsDenied(ctx, "token-a")
		require.NoError(t, err)
		assert.True(t, denied)

		denied, err = denylist.IsDenied(ctx, "token-b")
		require.NoError(t, err)
		assert.False(t, denied)

		key := deniedPrefix + hashToken("token-a")
		assert.True(t, mr.Exists(key), "raw token is never used as a key")
		assert.Equal(t, time.Minute, mr.TTL(key))
	})

	t.Run("Entries lapse after ttl", func(t *testing.T) {
		denylist, mr := testRedisDenylist(t)
		require.NoError(t, denylist.Deny(ctx, "token-a", time.Minute))

		mr.FastForward(time.Minute + time.Second)

		denied, err := denylist.IsDenied(ctx, "token-a")
		require.NoError(t, err)
		assert.False(t, denied)
	})

	t.Run("Cleanup removes keys without ttl", func(t *testing.T) {
		denylist, mr := testRedisDenylist(t)
		require.NoError(t, denylist.Deny(ctx, "token-a", time.Hour))

		persisted := deniedPrefix + hashToken("token-b")
		require.NoError(t, mr.Set(persisted, "1"))
		require.NoError(t, mr.Set("unrelated", "1"))

		require.NoError(t, denylist.CleanupExpired(ctx))

		assert.False(t, mr.Exists(persisted))
		assert.True(t, mr.Exists(deniedPrefix+hashToken("token-a")))
		assert.True(t, mr.Exists("unrelated"))
	})

	t.Run("Invalid input", func(t *testing.T) {
		denylist, _ := testRedisDenylist(t)

		assert.EqualError(t, denylist.Deny(ctx, "", time.Minute), "token cannot be empty")
		assert.EqualError(t, denylist.Deny(ctx, "token-a", -time.Second), "ttl must be positive")
	})

	t.Run("Canceled context", func(t *testing.T) {
		denylist, _ := testRedisDenylist(t)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		assert.Error(t, denylist.CleanupExpired(canceled))
	})
}

func TestDeniedTokenHasNoAcceptedVariants(t *testing.T) {
	ctx := context.Background()
	maker := createTestMaker(t, time.Hour)
	denylist := NewMemoryTokenDenylist(time.Hour)
	defer denylist.Close()

	token, err := maker.Sign(Claims{"sub": "user-1"})
	require.NoError(t, err)
	require.NoError(t, denylist.Deny(ctx, token, time.Hour))

	parts := strings.Split(token, ".")
	variants := []string{
		strings.Join([]string{parts[0], parts[1], parts[2][:5] + "\n" + parts[2][5:], parts[3]}, "."),
		strings.Join([]string{parts[0], parts[1], parts[2], "\r" + parts[3]}, "."),
		strings.Join([]string{parts[0] + "\r\n", parts[1], parts[2], parts[3]}, "."),
	}

	for _, variant := range variants {
		denied, err := denylist.IsDenied(ctx, variant)
		require.NoError(t, err)
		require.False(t, denied, "variant hashes differently")

		result, err := maker.Verify(variant)
		require.NoError(t, err)
		assert.False(t, result.Valid, "a string other than the issued token must not verify")
	}
}

func TestDenyTTL(t *testing.T) {
	fallback := 24 * time.Hour

	tests := []struct {
		name   string
		claims Claims
		now    time.Time
		want   time.Duration
	}{
		{
			name:   "Remaining lifetime",
			claims: Claims{"exp": float64(testEpoch.Unix() + 60)},
			now:    testEpoch,
			want:   61 * time.Second,
		},
		{
			name:   "Last acceptable second",
			claims: Claims{"exp": float64(testEpoch.Unix())},
			now:    testEpoch,
			want:   time.Second,
		},
		{
			name:   "Already expired",
			claims: Claims{"exp": float64(testEpoch.Unix() - 5)},
			now:    testEpoch,
			want:   0,
		},
		{
			name:   "Never expiring",
			claims: Claims{"exp": float64(-1)},
			now:    testEpoch,
			want:   fallback,
		},
		{
			name:   "Missing exp",
			claims: Claims{},
			now:    testEpoch,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DenyTTL(tt.claims, tt.now, fallback))
		})
	}
}
