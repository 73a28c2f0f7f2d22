package rate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func drain(t *testing.T, l Limiter, key string) int {
	var allowed int
	for i := 0; i < 100; i++ {
		ok, err := l.Allow(key)
		require.NoError(t, err)
		if !ok {
			break
		}
		allowed++
	}
	return allowed
}

func TestNoLimiter(t *testing.T) {
	assert.Equal(t, 100, drain(t, &NoLimiter{}, "anything"))
}

func TestKeyed(t *testing.T) {
	l := NewLocalRateLimiter(rate.Limit(5), map[string]rate.Limit{
		"requestAirdrop": rate.Limit(0.5),
		"getSlot":        rate.Limit(2),
	})

	for _, tc := range []struct {
		key   string
		burst int
	}{
		{"getAccountInfo", 5},
		{"sendTransaction", 5},
		{"getSlot", 2},
		// fractional limits still admit a single request
		{"requestAirdrop", 1},
	} {
		assert.Equal(t, tc.burst, drain(t, l, tc.key), tc.key)
	}
}
