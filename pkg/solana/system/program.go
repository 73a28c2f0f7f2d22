// Package system builds and decodes system program instructions.
package system

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana"
)

// ProgramKey is the all-zero system program address.
var ProgramKey [32]byte

// Instruction discriminators are u32 little endian.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs
const (
	commandCreateAccount uint32 = 0
	commandAllocate      uint32 = 8
)

// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L20-L43
const (
	ErrorAccountAlreadyInUse solana.CustomError = iota
	ErrorResultWithNegativeLamports
	ErrorInvalidProgramId
	ErrorInvalidAccountDataLength
)

// MaxPermittedDataLength is the largest account a single CreateAccount may
// allocate.
const MaxPermittedDataLength = 10 * 1024 * 1024

// createAccountSize is the discriminator, lamports, space and owner.
const createAccountSize = 4 + 8 + 8 + ed25519.PublicKeySize

// CreateAccount funds and allocates address, assigning it to owner. Both the
// funder and the new account must sign.
func CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) solana.Instruction {
	data := binary.LittleEndian.AppendUint32(make([]byte, 0, createAccountSize), commandCreateAccount)
	data = binary.LittleEndian.AppendUint64(data, lamports)
	data = binary.LittleEndian.AppendUint64(data, size)
	data = append(data, owner...)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(address, true),
	)
}

type DecompiledCreateAccount struct {
	Funder  ed25519.PublicKey
	Address ed25519.PublicKey

	Lamports uint64
	Size     uint64
	Owner    ed25519.PublicKey
}

func DecompileCreateAccount(m solana.Message, index int) (*DecompiledCreateAccount, error) {
	i, err := m.InstructionAt(index, ProgramKey[:], 0)
	if err != nil {
		return nil, err
	}
	if len(i.Data) < 4 || binary.LittleEndian.Uint32(i.Data) != commandCreateAccount {
		return nil, solana.ErrIncorrectInstruction
	}
	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}
	if len(i.Data) != createAccountSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(i.Data))
	}

	body := i.Data[4:]
	return &DecompiledCreateAccount{
		Funder:   m.Accounts[i.Accounts[0]],
		Address:  m.Accounts[i.Accounts[1]],
		Lamports: binary.LittleEndian.Uint64(body),
		Size:     binary.LittleEndian.Uint64(body[8:]),
		Owner:    append(ed25519.PublicKey(nil), body[16:]...),
	}, nil
}
