package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
)

type InitializeAuthorizedEchoInstructionArgs struct {
	BufferSeed uint64
	BufferSize uint64
}

type InitializeAuthorizedEchoInstructionAccounts struct {
	Buffer    ed25519.PublicKey
	Authority ed25519.PublicKey
}

// NewInitializeAuthorizedEchoInstruction allocates the authority's buffer with
// room for BufferSize bytes after the header.
//
// Accounts:
//  0. [writable] buffer
//  1. [signer] authority
//  2. [] system program
func NewInitializeAuthorizedEchoInstruction(
	program ed25519.PublicKey,
	accounts *InitializeAuthorizedEchoInstructionAccounts,
	args *InitializeAuthorizedEchoInstructionArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		encodeInitialize(OpcodeInitializeAuthorizedEcho, args.BufferSeed, args.BufferSize),
		solana.NewAccountMeta(accounts.Buffer, false),
		solana.NewReadonlyAccountMeta(accounts.Authority, true),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
	)
}

func DecompileInitializeAuthorizedEcho(m solana.Message, index int, program ed25519.PublicKey) (*InitializeAuthorizedEchoInstructionArgs, *InitializeAuthorizedEchoInstructionAccounts, error) {
	i, err := m.InstructionAt(index, program, 3)
	if err != nil {
		return nil, nil, err
	}

	seed, size, err := decodeInitialize(OpcodeInitializeAuthorizedEcho, i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &InitializeAuthorizedEchoInstructionArgs{
			BufferSeed: seed,
			BufferSize: size,
		}, &InitializeAuthorizedEchoInstructionAccounts{
			Buffer:    m.Accounts[i.Accounts[0]],
			Authority: m.Accounts[i.Accounts[1]],
		}, nil
}
