package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/token"
)

type VendingMachineEchoInstructionArgs struct {
	Data []byte
}

type VendingMachineEchoInstructionAccounts struct {
	Buffer            ed25519.PublicKey
	Payer             ed25519.PublicKey
	PayerTokenAccount ed25519.PublicKey
	Mint              ed25519.PublicKey
}

// NewVendingMachineEchoInstruction burns the buffer's price from the payer's
// token account and overwrites the buffer with Data.
//
// Accounts:
//  0. [writable] buffer
//  1. [signer] payer
//  2. [writable] payer token account
//  3. [writable] mint
//  4. [] token program
func NewVendingMachineEchoInstruction(
	program ed25519.PublicKey,
	accounts *VendingMachineEchoInstructionAccounts,
	args *VendingMachineEchoInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeEcho(OpcodeVendingMachineEcho, args.Data)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(accounts.Buffer, false),
		solana.NewReadonlyAccountMeta(accounts.Payer, true),
		solana.NewAccountMeta(accounts.PayerTokenAccount, false),
		solana.NewAccountMeta(accounts.Mint, false),
		solana.NewReadonlyAccountMeta(token.ProgramKey, false),
	), nil
}

func DecompileVendingMachineEcho(m solana.Message, index int, program ed25519.PublicKey) (*VendingMachineEchoInstructionArgs, *VendingMachineEchoInstructionAccounts, error) {
	i, err := m.InstructionAt(index, program, 5)
	if err != nil {
		return nil, nil, err
	}

	text, err := decodeEcho(OpcodeVendingMachineEcho, i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &VendingMachineEchoInstructionArgs{Data: text}, &VendingMachineEchoInstructionAccounts{
		Buffer:            m.Accounts[i.Accounts[0]],
		Payer:             m.Accounts[i.Accounts[1]],
		PayerTokenAccount: m.Accounts[i.Accounts[2]],
		Mint:              m.Accounts[i.Accounts[3]],
	}, nil
}
