package echo

import (
	"fmt"

	"github.com/code-payments/code-echo/pkg/solana/binary"
)

const BufferHeaderSize = (1 + // bump
	8) // seed or price

// BufferAccount is the state of an authorized or vending machine echo buffer.
type BufferAccount struct {
	Bump uint8
	// Seed holds the buffer seed for authorized buffers and the price for
	// vending machine buffers.
	Seed uint64
	Data []byte
}

// GetBufferAccountSize is the on chain size of a buffer holding size bytes.
func GetBufferAccountSize(size uint64) uint64 {
	return BufferHeaderSize + size
}

func (obj *BufferAccount) Marshal() []byte {
	data := make([]byte, BufferHeaderSize+len(obj.Data))

	var offset int
	binary.PutUint8(data[offset:], obj.Bump, &offset)
	binary.PutUint64(data[offset:], obj.Seed, &offset)
	copy(data[offset:], obj.Data)

	return data
}

func (obj *BufferAccount) Unmarshal(data []byte) error {
	if len(data) < BufferHeaderSize {
		return ErrInvalidAccountData
	}

	var offset int
	binary.GetUint8(data[offset:], &obj.Bump, &offset)
	binary.GetUint64(data[offset:], &obj.Seed, &offset)

	obj.Data = make([]byte, len(data)-offset)
	copy(obj.Data, data[offset:])

	return nil
}

// Text returns the buffer contents as written, including any zero padding.
func (obj *BufferAccount) Text() string {
	return string(obj.Data)
}

func (obj *BufferAccount) String() string {
	return fmt.Sprintf(
		"BufferAccount{bump=%d,seed=%d,size=%d}",
		obj.Bump,
		obj.Seed,
		len(obj.Data),
	)
}
