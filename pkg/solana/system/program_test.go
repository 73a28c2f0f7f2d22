package system

import (
	"encoding/binary"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/testutil"
)

func TestCreateAccount_Layout(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	funder, address, owner := keys[0], keys[1], keys[2]

	ix := CreateAccount(funder, address, owner, 1_461_600, 82)
	assert.EqualValues(t, ProgramKey[:], ix.Program)

	require.Len(t, ix.Data, 52)
	assert.EqualValues(t, commandCreateAccount, binary.LittleEndian.Uint32(ix.Data))
	assert.EqualValues(t, 1_461_600, binary.LittleEndian.Uint64(ix.Data[4:]))
	assert.EqualValues(t, 82, binary.LittleEndian.Uint64(ix.Data[12:]))
	assert.EqualValues(t, owner, ix.Data[20:])

	require.Len(t, ix.Accounts, 2)
	assert.EqualValues(t, funder, ix.Accounts[0].PublicKey)
	assert.EqualValues(t, address, ix.Accounts[1].PublicKey)
	for _, meta := range ix.Accounts {
		assert.True(t, meta.IsSigner && meta.IsWritable)
	}
}

func TestCreateAccount_Decompile(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	tx := solana.NewLegacyTransaction(keys[0], CreateAccount(keys[0], keys[1], keys[2], 10, 20))

	var decoded solana.Transaction
	require.NoError(t, decoded.Unmarshal(tx.Marshal()))

	actual, err := DecompileCreateAccount(decoded.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, &DecompiledCreateAccount{
		Funder:   keys[0],
		Address:  keys[1],
		Lamports: 10,
		Size:     20,
		Owner:    keys[2],
	}, actual)
}

func TestCreateAccount_DecompileInvalid(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)

	for _, tc := range []struct {
		name     string
		mutate   func(ix *solana.Instruction)
		index    int
		expected error
	}{
		{
			name: "wrong command",
			mutate: func(ix *solana.Instruction) {
				binary.LittleEndian.PutUint32(ix.Data, commandAllocate)
			},
			expected: solana.ErrIncorrectInstruction,
		},
		{
			name:     "short data",
			mutate:   func(ix *solana.Instruction) { ix.Data = ix.Data[:3] },
			expected: solana.ErrIncorrectInstruction,
		},
		{
			name:     "other program",
			mutate:   func(ix *solana.Instruction) { ix.Program = keys[3] },
			expected: solana.ErrIncorrectProgram,
		},
		{
			name:     "out of range",
			mutate:   func(ix *solana.Instruction) {},
			index:    1,
			expected: solana.ErrIncorrectInstruction,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ix := CreateAccount(keys[0], keys[1], keys[2], 10, 20)
			tc.mutate(&ix)

			_, err := DecompileCreateAccount(solana.NewLegacyTransaction(keys[0], ix).Message, tc.index)
			assert.Equal(t, tc.expected, err)
		})
	}

	ix := CreateAccount(keys[0], keys[1], keys[2], 10, 20)
	ix.Accounts = ix.Accounts[:1]
	_, err := DecompileCreateAccount(solana.NewLegacyTransaction(keys[0], ix).Message, 0)
	assert.ErrorContains(t, err, "invalid number of accounts")
}

func TestWellKnownKeys(t *testing.T) {
	assert.EqualValues(t, ProgramKey[:], SystemAccount)
	assert.Equal(t, "SysvarRent111111111111111111111111111111111", base58.Encode(RentSysVar))
}
