package token

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana"
)

func TestGetCommand(t *testing.T) {
	keys := generateKeys(t, 3)
	message := func(ix solana.Instruction) solana.Message {
		return solana.NewLegacyTransaction(keys[0], ix).Message
	}

	cmd, err := GetCommand(message(MintTo(keys[1], keys[2], keys[0], 1)), 0)
	require.NoError(t, err)
	assert.Equal(t, CommandMintTo, cmd)

	cmd, err = GetCommand(message(solana.NewInstruction(keys[1], []byte{1})), 0)
	assert.Equal(t, CommandUnknown, cmd)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	cmd, err = GetCommand(message(solana.NewInstruction(ProgramKey, nil)), 0)
	assert.Equal(t, CommandUnknown, cmd)
	assert.ErrorContains(t, err, "missing data")

	_, err = GetCommand(message(solana.NewInstruction(ProgramKey, nil)), 1)
	assert.ErrorContains(t, err, "doesn't exist")
}

func TestInitializeMint2(t *testing.T) {
	keys := generateKeys(t, 3)
	mint, authority, freeze := keys[0], keys[1], keys[2]

	for _, tc := range []struct {
		name   string
		freeze ed25519.PublicKey
		size   int
		tag    byte
	}{
		{"with freeze authority", freeze, 67, 1},
		{"without freeze authority", nil, 35, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ix := InitializeMint2(mint, authority, tc.freeze, 6)

			require.Len(t, ix.Data, tc.size)
			assert.Equal(t, byte(CommandInitializeMint2), ix.Data[0])
			assert.EqualValues(t, 6, ix.Data[1])
			assert.Equal(t, []byte(authority), ix.Data[2:34])
			assert.Equal(t, tc.tag, ix.Data[34])

			require.Len(t, ix.Accounts, 1)
			assert.Equal(t, mint, ix.Accounts[0].PublicKey)
			assert.True(t, ix.Accounts[0].IsWritable)
			assert.False(t, ix.Accounts[0].IsSigner)

			decompiled, err := DecompileInitializeMint2(solana.NewLegacyTransaction(authority, ix).Message, 0)
			require.NoError(t, err)
			assert.Equal(t, &DecompiledInitializeMint2{
				Mint:            mint,
				Decimals:        6,
				MintAuthority:   authority,
				FreezeAuthority: tc.freeze,
			}, decompiled)
		})
	}
}

func TestDecompileInitializeMint2_Invalid(t *testing.T) {
	keys := generateKeys(t, 3)

	for _, tc := range []struct {
		name   string
		mutate func(ix *solana.Instruction)
		err    string
	}{
		{"wrong command", func(ix *solana.Instruction) { ix.Data[0] = byte(CommandMintTo) }, solana.ErrIncorrectInstruction.Error()},
		{"truncated", func(ix *solana.Instruction) { ix.Data = ix.Data[:20] }, "invalid instruction data size"},
		{"missing freeze authority", func(ix *solana.Instruction) { ix.Data = ix.Data[:40] }, "missing freeze authority"},
		{"bad option tag", func(ix *solana.Instruction) { ix.Data[34] = 2 }, "invalid instruction data size"},
		{"no accounts", func(ix *solana.Instruction) { ix.Accounts = nil }, "invalid number of accounts"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ix := InitializeMint2(keys[0], keys[1], keys[2], 0)
			tc.mutate(&ix)

			_, err := DecompileInitializeMint2(solana.NewLegacyTransaction(keys[1], ix).Message, 0)
			assert.ErrorContains(t, err, tc.err)
		})
	}
}

func TestMintTo(t *testing.T) {
	keys := generateKeys(t, 4)
	mint, dest, authority := keys[0], keys[1], keys[2]

	ix := MintTo(mint, dest, authority, 1_000_000_000)
	assert.Equal(t, byte(CommandMintTo), ix.Data[0])
	assert.EqualValues(t, 1_000_000_000, binary.LittleEndian.Uint64(ix.Data[1:]))
	assert.Len(t, ix.Data, 9)

	require.Len(t, ix.Accounts, 3)
	for i, expected := range []solana.AccountMeta{
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	} {
		assert.Equal(t, expected, ix.Accounts[i], "account %d", i)
	}

	decompiled, err := DecompileMintTo(solana.NewLegacyTransaction(authority, ix).Message, 0)
	require.NoError(t, err)
	assert.Equal(t, &DecompiledMintTo{
		Mint:        mint,
		Destination: dest,
		Authority:   authority,
		Amount:      1_000_000_000,
	}, decompiled)

	short := ix
	short.Accounts = ix.Accounts[:2]
	_, err = DecompileMintTo(solana.NewLegacyTransaction(authority, short).Message, 0)
	assert.ErrorContains(t, err, "invalid number of accounts")

	transfer := MintTo(mint, dest, authority, 1)
	transfer.Data[0] = byte(CommandTransfer)
	_, err = DecompileMintTo(solana.NewLegacyTransaction(authority, transfer).Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	other := MintTo(mint, dest, authority, 1)
	other.Program = keys[3]
	_, err = DecompileMintTo(solana.NewLegacyTransaction(authority, other).Message, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}
	return keys
}
