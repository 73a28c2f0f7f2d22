package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana"
)

// AssertInstructionError verifies that txErr failed at the instruction index
// with the provided error key.
func AssertInstructionError(t *testing.T, txErr *solana.TransactionError, index int, key solana.InstructionErrorKey) {
	require.NotNil(t, txErr)
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, index, txErr.InstructionError().Index)
	assert.Equal(t, key, txErr.InstructionError().ErrorKey())
}

// AssertCustomError verifies that txErr failed at the instruction index with
// the provided program error.
func AssertCustomError(t *testing.T, txErr *solana.TransactionError, index int, code solana.CustomError) {
	AssertInstructionError(t, txErr, index, solana.InstructionErrorCustom)
	require.NotNil(t, txErr.InstructionError().CustomError())
	assert.Equal(t, code, *txErr.InstructionError().CustomError())
}
