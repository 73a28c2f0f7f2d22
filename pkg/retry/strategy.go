package retry

import (
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/code-echo/pkg/retry/backoff"
)

// Strategy decides whether another attempt should be made after the given
// number of failed attempts. Strategies may block, which is how delays are
// introduced.
type Strategy func(attempts uint, err error) bool

var (
	sleep  = time.Sleep
	jitter = rand.Float64
)

// Limit allows at most maxAttempts attempts in total, including the first.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of targets via errors.Is.
func RetriableErrors(targets ...error) Strategy {
	return func(_ uint, err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// Backoff sleeps for the delay produced by strategy, capped at maxBackoff.
func Backoff(strategy backoff.Strategy, maxBackoff time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxBackoff, 0)
}

// BackoffWithJitter is Backoff with the capped delay randomly scaled by up to
// +/- fraction. A fraction of 0.1 turns a 100ms delay into 90ms-110ms.
func BackoffWithJitter(strategy backoff.Strategy, maxBackoff time.Duration, fraction float64) Strategy {
	return func(attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxBackoff {
			delay = maxBackoff
		}

		if fraction > 0 {
			scale := 1 + fraction*(2*jitter()-1)
			delay = time.Duration(float64(delay) * scale)
		}

		sleep(delay)
		return true
	}
}
