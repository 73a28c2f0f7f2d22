// Package retry runs actions repeatedly until they succeed or a strategy
// gives up. The solana RPC client uses it for rate limiting and signature
// polling.
package retry

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type strategies []Strategy

// NewRetrier returns a Retrier bound to the provided strategies. Without any
// strategies the action is retried until it succeeds.
func NewRetrier(s ...Strategy) Retrier {
	return strategies(s)
}

func (s strategies) Retry(action Action) (uint, error) {
	return Retry(action, s...)
}

// Retry executes action until it succeeds or one of the strategies declines
// another attempt, returning the number of attempts made and the last error.
//
// Strategies run in order and stop at the first refusal, so strategies that
// sleep belong at the end.
func Retry(action Action, s ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil || !shouldRetry(s, attempts, err) {
			return attempts, err
		}
	}
}

func shouldRetry(s []Strategy, attempts uint, err error) bool {
	for _, strategy := range s {
		if !strategy(attempts, err) {
			return false
		}
	}
	return true
}
