package echo

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
)

type EchoInstructionArgs struct {
	Data []byte
}

type EchoInstructionAccounts struct {
	Buffer ed25519.PublicKey
}

// NewEchoInstruction writes data into a pre-allocated, zeroed buffer owned by
// program. Data beyond the buffer's length is dropped on chain.
func NewEchoInstruction(
	program ed25519.PublicKey,
	accounts *EchoInstructionAccounts,
	args *EchoInstructionArgs,
) (solana.Instruction, error) {
	data, err := encodeEcho(OpcodeEcho, args.Data)
	if err != nil {
		return solana.Instruction{}, err
	}

	return solana.NewInstruction(
		program,
		data,
		solana.NewAccountMeta(accounts.Buffer, false),
	), nil
}

func DecompileEcho(m solana.Message, index int, program ed25519.PublicKey) (*EchoInstructionArgs, *EchoInstructionAccounts, error) {
	i, err := m.InstructionAt(index, program, 1)
	if err != nil {
		return nil, nil, err
	}

	text, err := decodeEcho(OpcodeEcho, i.Data)
	if err != nil {
		return nil, nil, err
	}

	return &EchoInstructionArgs{Data: text}, &EchoInstructionAccounts{
		Buffer: m.Accounts[i.Accounts[0]],
	}, nil
}
