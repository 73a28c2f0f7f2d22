package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrategies(t *testing.T) {
	for _, tc := range []struct {
		name     string
		strategy Strategy
		expected []time.Duration
	}{
		{
			name:     "constant",
			strategy: Constant(250 * time.Millisecond),
			expected: []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
		},
		{
			name:     "exponential",
			strategy: Exponential(2*time.Second, 3),
			expected: []time.Duration{2 * time.Second, 6 * time.Second, 18 * time.Second, 54 * time.Second},
		},
		{
			name:     "binary exponential",
			strategy: BinaryExponential(time.Second),
			expected: []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			for i, expected := range tc.expected {
				assert.Equal(t, expected, tc.strategy(uint(i+1)), "attempt %d", i+1)
			}
		})
	}
}

func TestExponential_Saturates(t *testing.T) {
	s := BinaryExponential(time.Second)
	assert.EqualValues(t, math.MaxInt64, s(200))
	assert.Equal(t, time.Second, s(0))
}
