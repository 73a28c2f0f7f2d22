package token

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
)

func TestGetAssociatedAccount_KnownVector(t *testing.T) {
	decode := func(s string) ed25519.PublicKey {
		raw, err := base58.Decode(s)
		require.NoError(t, err)
		return raw
	}

	actual, err := GetAssociatedAccount(
		decode("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM"),
		decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh"),
	)
	require.NoError(t, err)
	assert.Equal(t, "H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ", base58.Encode(actual))
}

func TestCreateAssociatedTokenAccount_Variants(t *testing.T) {
	type builder func(subsidizer, wallet, mint ed25519.PublicKey) (solana.Instruction, ed25519.PublicKey, error)
	type decompiler func(m solana.Message, index int) (*DecompiledCreateAssociatedAccount, error)

	for _, tc := range []struct {
		name      string
		command   byte
		build     builder
		decompile decompiler
		otherwise decompiler
	}{
		{"create", commandCreate, CreateAssociatedTokenAccount, DecompileCreateAssociatedAccount, DecompileCreateAssociatedAccountIdempotent},
		{"idempotent", commandCreateIdempotent, CreateAssociatedTokenAccountIdempotent, DecompileCreateAssociatedAccountIdempotent, DecompileCreateAssociatedAccount},
	} {
		t.Run(tc.name, func(t *testing.T) {
			keys := generateKeys(t, 3)
			subsidizer, wallet, mint := keys[0], keys[1], keys[2]

			ix, addr, err := tc.build(subsidizer, wallet, mint)
			require.NoError(t, err)

			expectedAddr, err := GetAssociatedAccount(wallet, mint)
			require.NoError(t, err)
			assert.Equal(t, expectedAddr, addr)

			assert.Equal(t, []byte{tc.command}, ix.Data)

			expectedKeys := []ed25519.PublicKey{subsidizer, addr, wallet, mint, system.ProgramKey[:], ProgramKey, system.RentSysVar}
			require.Len(t, ix.Accounts, len(expectedKeys))
			for i, meta := range ix.Accounts {
				assert.EqualValues(t, expectedKeys[i], meta.PublicKey, "account %d", i)
				assert.Equal(t, i == 0, meta.IsSigner, "account %d", i)
				assert.Equal(t, i <= 1, meta.IsWritable, "account %d", i)
			}

			msg := solana.NewLegacyTransaction(subsidizer, ix).Message
			decompiled, err := tc.decompile(msg, 0)
			require.NoError(t, err)
			assert.Equal(t, &DecompiledCreateAssociatedAccount{
				Subsidizer: subsidizer,
				Address:    addr,
				Owner:      wallet,
				Mint:       mint,
			}, decompiled)

			_, err = tc.otherwise(msg, 0)
			assert.Equal(t, solana.ErrIncorrectInstruction, err)
		})
	}
}

func TestDecompileCreateAssociatedAccount_EmptyData(t *testing.T) {
	keys := generateKeys(t, 3)

	ix, _, err := CreateAssociatedTokenAccount(keys[0], keys[1], keys[2])
	require.NoError(t, err)
	ix.Data = nil

	msg := solana.NewLegacyTransaction(keys[0], ix).Message

	decompiled, err := DecompileCreateAssociatedAccount(msg, 0)
	require.NoError(t, err)
	assert.Equal(t, keys[1], decompiled.Owner)

	_, err = DecompileCreateAssociatedAccountIdempotent(msg, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}
