package flow

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/echo"
)

func TestTag(t *testing.T) {
	cause := errors.New("boom")

	err := tag(ErrNetwork, errors.Wrap(cause, "context"))
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.False(t, errors.Is(err, ErrSubmissionRejected))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, errors.Cause(err))
	assert.Equal(t, "network error: context: boom", err.Error())

	// Already classified errors keep their original tag.
	retagged := tag(ErrSubmissionRejected, errors.Wrap(err, "outer"))
	assert.True(t, errors.Is(retagged, ErrNetwork))
	assert.False(t, errors.Is(retagged, ErrSubmissionRejected))

	assert.NoError(t, tag(ErrNetwork, nil))
}

func TestClassifySubmitError(t *testing.T) {
	for _, tc := range []struct {
		err      error
		expected error
	}{
		{solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee), ErrSubmissionRejected},
		{errors.Wrap(&jsonrpc.RPCError{Code: -32002, Message: "rejected"}, "sendTransaction() rejected"), ErrSubmissionRejected},
		{errors.Wrap(solana.ErrTransactionTooLarge, "size 2000"), ErrEncodingOverflow},
		{echo.ErrEncodingOverflow, ErrEncodingOverflow},
		{errors.New("connection reset"), ErrNetwork},
		{errors.Wrap(solana.ErrRateLimited, "sendTransaction() failed to send request"), ErrNetwork},
	} {
		assert.True(t, errors.Is(classifySubmitError(tc.err), tc.expected), tc.err.Error())
	}

	assert.NoError(t, classifySubmitError(nil))
}

func TestClassifyAirdropError(t *testing.T) {
	rpcErr := errors.Wrap(&jsonrpc.RPCError{Code: -32603, Message: "airdrop request limit reached"}, "requestAirdrop() failed")
	assert.True(t, errors.Is(classifyAirdropError(rpcErr), ErrInsufficientFunds))
	assert.True(t, errors.Is(classifyAirdropError(errors.New("dial tcp: connection refused")), ErrNetwork))
	assert.True(t, errors.Is(classifyAirdropError(errors.Wrap(solana.ErrRateLimited, "requestAirdrop() failed")), ErrInsufficientFunds))
	assert.True(t, errors.Is(classifyAirdropError(errors.Wrap(solana.ErrServiceUnavailable, "requestAirdrop() failed")), ErrNetwork))
}

func TestState_String(t *testing.T) {
	for state, expected := range map[State]string{
		StateIdle:           "idle",
		StateFunded:         "funded",
		StateAddressDerived: "address_derived",
		StateSubmitted:      "submitted",
		StateConfirmed:      "confirmed",
		State(99):           "unknown",
	} {
		assert.Equal(t, expected, state.String())
	}
}
