package echo

import (
	"math"

	"github.com/code-payments/code-echo/pkg/solana/binary"
)

const (
	// opcode + u64 + u64
	initializeInstructionSize = 1 + 8 + 8

	// opcode + u32 length prefix
	echoInstructionHeaderSize = 1 + 4
)

func putOpcode(dst []byte, v Opcode, offset *int) {
	binary.PutUint8(dst[*offset:], uint8(v), offset)
}

func encodeInitialize(op Opcode, first, size uint64) []byte {
	data := make([]byte, initializeInstructionSize)

	var offset int
	putOpcode(data, op, &offset)
	binary.PutUint64(data[offset:], first, &offset)
	binary.PutUint64(data[offset:], size, &offset)

	return data
}

func decodeInitialize(op Opcode, data []byte) (first, size uint64, err error) {
	if len(data) != initializeInstructionSize || Opcode(data[0]) != op {
		return 0, 0, ErrInvalidInstructionData
	}

	offset := 1
	binary.GetUint64(data[offset:], &first, &offset)
	binary.GetUint64(data[offset:], &size, &offset)

	return first, size, nil
}

// CheckEchoLength reports whether a payload of n bytes fits the u32 length
// prefix used by the echo instructions.
func CheckEchoLength(n uint64) error {
	if n > math.MaxUint32 {
		return ErrEncodingOverflow
	}
	return nil
}

func encodeEcho(op Opcode, text []byte) ([]byte, error) {
	if err := CheckEchoLength(uint64(len(text))); err != nil {
		return nil, err
	}

	data := make([]byte, echoInstructionHeaderSize+len(text))

	var offset int
	putOpcode(data, op, &offset)
	binary.PutBytes32(data[offset:], text, &offset)

	return data, nil
}

func decodeEcho(op Opcode, data []byte) ([]byte, error) {
	if len(data) < echoInstructionHeaderSize || Opcode(data[0]) != op {
		return nil, ErrInvalidInstructionData
	}

	var size uint32
	offset := 1
	binary.GetUint32(data[offset:], &size, &offset)
	if uint64(len(data)-echoInstructionHeaderSize) != uint64(size) {
		return nil, ErrInvalidInstructionData
	}

	var text []byte
	offset = 1
	binary.GetBytes32(data[offset:], &text, &offset)

	return text, nil
}
