package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
)

type InitializeVendingMachineEchoInstructionArgs struct {
	Price      uint64
	BufferSize uint64
}

type InitializeVendingMachineEchoInstructionAccounts struct {
	Buffer ed25519.PublicKey
	Mint   ed25519.PublicKey
	Payer  ed25519.PublicKey
}

// NewInitializeVendingMachineEchoInstruction allocates the buffer for a
// (mint, price) pair, paid for by Payer.
//
// Accounts:
//  0. [writable] buffer
//  1. [] mint
//  2. [signer] payer
//  3. [] system program
func NewInitializeVendingMachineEchoInstruction(
	program ed25519.PublicKey,
	accounts *InitializeVendingMachineEchoInstructionAccounts,
	args *InitializeVendingMachineEchoInstructionArgs,
) solana.Instruction {
	return solana.NewInstruction(
		program,
		encodeInitialize(OpcodeInitializeVendingMachineEcho, args.Price, args.BufferSize),
		solana.NewAccountMeta(accounts.Buffer, false),
		solana.NewReadonlyAccountMeta(accounts.Mint, false),
		solana.NewReadonlyAccountMeta(accounts.Payer, true),
		solana.NewReadonlyAccountMeta(system.ProgramKey[:], false),
	)
}

func DecompileInitializeVendingMachineEcho(m solana.Message, index int, program ed25519.PublicKey) (*InitializeVendingMachineEchoInstructionArgs, *InitializeVendingMachineEchoInstructionAccounts, error) {
	i, err := m.InstructionAt(index, program, 4)
	if err != nil {
		return nil, nil, err
	}

	price, size, err := decodeInitialize(OpcodeInitializeVendingMachineEcho, i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &InitializeVendingMachineEchoInstructionArgs{
			Price:      price,
			BufferSize: size,
		}, &InitializeVendingMachineEchoInstructionAccounts{
			Buffer: m.Accounts[i.Accounts[0]],
			Mint:   m.Accounts[i.Accounts[1]],
			Payer:  m.Accounts[i.Accounts[2]],
		}, nil
}
