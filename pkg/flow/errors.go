package flow

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/echo"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNetwork            = errors.New("network error")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrEncodingOverflow   = errors.New("encoding overflow")
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrAccountNotFound    = errors.New("account not found")
)

// taggedError attaches one of the package sentinels to an underlying cause, so
// callers can match on the sentinel while keeping the cause chain intact.
type taggedError struct {
	tag   error
	cause error
}

func tag(sentinel, cause error) error {
	if cause == nil {
		return nil
	}

	// Avoid stacking sentinels when an already classified error passes through
	// another step.
	var existing *taggedError
	if errors.As(cause, &existing) {
		return cause
	}

	return &taggedError{tag: sentinel, cause: cause}
}

func (e *taggedError) Error() string {
	return fmt.Sprintf("%s: %s", e.tag, e.cause)
}

func (e *taggedError) Is(target error) bool {
	return target == e.tag
}

func (e *taggedError) Unwrap() error {
	return e.cause
}

func (e *taggedError) Cause() error {
	return e.cause
}

// classifySubmitError maps errors from building and sending a transaction.
func classifySubmitError(err error) error {
	if err == nil {
		return nil
	}

	var txErr *solana.TransactionError
	var rpcErr *jsonrpc.RPCError
	switch {
	case solana.IsTransient(err):
		return tag(ErrNetwork, err)
	case errors.As(err, &txErr), errors.As(err, &rpcErr):
		return tag(ErrSubmissionRejected, err)
	case errors.Is(err, solana.ErrTransactionTooLarge), errors.Is(err, echo.ErrEncodingOverflow):
		return tag(ErrEncodingOverflow, err)
	default:
		return tag(ErrNetwork, err)
	}
}

// classifyAirdropError maps errors from requesting an airdrop. Faucets refuse
// with a JSON-RPC error or a 429 once a wallet or IP hits its limit; node
// outages and everything else are transport.
func classifyAirdropError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *jsonrpc.RPCError
	switch {
	case errors.Is(err, solana.ErrRateLimited):
		return tag(ErrInsufficientFunds, err)
	case errors.Is(err, solana.ErrServiceUnavailable):
		return tag(ErrNetwork, err)
	case errors.As(err, &rpcErr):
		return tag(ErrInsufficientFunds, err)
	default:
		return tag(ErrNetwork, err)
	}
}
