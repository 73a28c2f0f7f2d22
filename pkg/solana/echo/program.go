package echo

import (
	"crypto/ed25519"
	"errors"

	"github.com/code-payments/code-echo/pkg/solana"
)

var (
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrEncodingOverflow       = errors.New("value exceeds encoded field width")
)

// Opcode is the leading byte of every echo program instruction.
type Opcode uint8

const (
	OpcodeEcho Opcode = iota
	OpcodeInitializeAuthorizedEcho
	OpcodeAuthorizedEcho
	OpcodeInitializeVendingMachineEcho
	OpcodeVendingMachineEcho

	OpcodeUnknown Opcode = 0xff
)

func (o Opcode) String() string {
	switch o {
	case OpcodeEcho:
		return "Echo"
	case OpcodeInitializeAuthorizedEcho:
		return "InitializeAuthorizedEcho"
	case OpcodeAuthorizedEcho:
		return "AuthorizedEcho"
	case OpcodeInitializeVendingMachineEcho:
		return "InitializeVendingMachineEcho"
	case OpcodeVendingMachineEcho:
		return "VendingMachineEcho"
	}
	return "Unknown"
}

// GetOpcode returns the opcode of the instruction at index, provided it
// targets program.
func GetOpcode(m solana.Message, index int, program ed25519.PublicKey) (Opcode, error) {
	i, err := m.InstructionAt(index, program, 0)
	if err != nil {
		return OpcodeUnknown, err
	}
	if len(i.Data) == 0 {
		return OpcodeUnknown, ErrInvalidInstructionData
	}
	if Opcode(i.Data[0]) > OpcodeVendingMachineEcho {
		return OpcodeUnknown, ErrInvalidInstructionData
	}

	return Opcode(i.Data[0]), nil
}
