package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
)

type AuthorizedEchoInstructionArgs struct {
	Data []byte
}

type AuthorizedEchoInstructionAccounts struct {
	Buffer    ed25519.PublicKey
	Authority ed25519.PublicKey
}

// NewAuthorizedEchoInstruction overwrites the authority's buffer with Data,
// truncating to the buffer size and zero filling the remainder.
//
// Accounts:
//  0. [writable] buffer
//  1. [signer] authority
func NewAuthorizedEchoInstruction(
	program ed25519.PublicKey,
	accounts *AuthorizedEchoInstructionAccounts,
	args *AuthorizedEchoInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeEcho(OpcodeAuthorizedEcho, args.Data)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(accounts.Buffer, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, true),
	), nil
}

func DecompileAuthorizedEcho(m solana.Message, index int, program ed25519.PublicKey) (*AuthorizedEchoInstructionArgs, *AuthorizedEchoInstructionAccounts, error) {
	i, err := m.InstructionAt(index, program, 2)
	if err != nil {
		return nil, nil, err
	}

	text, err := decodeEcho(OpcodeAuthorizedEcho, i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &AuthorizedEchoInstructionArgs{Data: text}, &AuthorizedEchoInstructionAccounts{
		Buffer:    m.Accounts[i.Accounts[0]],
		Authority: m.Accounts[i.Accounts[1]],
	}, nil
}
