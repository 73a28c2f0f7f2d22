// Package shortvec implements the compact-u16 length prefix used throughout
// the Solana wire format.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/short_vec.rs
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxEncodedSize is the largest number of bytes a compact-u16 may occupy.
const MaxEncodedSize = 3

var (
	ErrLengthTooLarge = errors.Errorf("length exceeds %d", math.MaxUint16)
	ErrNonCanonical   = errors.New("non-canonical compact-u16 encoding")
)

// EncodedSize returns the number of bytes EncodeLen writes for n.
func EncodedSize(n int) int {
	size := 1
	for n >>= 7; n > 0; n >>= 7 {
		size++
	}
	return size
}

// EncodeLen writes n as a compact-u16 and returns the number of bytes
// written.
func EncodeLen(w io.ByteWriter, n int) (int, error) {
	if n < 0 || n > math.MaxUint16 {
		return 0, errors.Wrapf(ErrLengthTooLarge, "got %d", n)
	}

	var written int
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		if n == 0 {
			return written, nil
		}
	}
}

// DecodeLen reads a compact-u16. Encodings longer than necessary, or that
// overflow 16 bits, are rejected the same way the runtime rejects them.
func DecodeLen(r io.ByteReader) (int, error) {
	var n int
	for i := 0; i < MaxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		// A trailing zero continuation is an alias of a shorter encoding.
		if i > 0 && b == 0 {
			return 0, ErrNonCanonical
		}

		n |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if n > math.MaxUint16 {
				return 0, ErrLengthTooLarge
			}
			return n, nil
		}
	}

	return 0, errors.Wrapf(ErrNonCanonical, "more than %d bytes", MaxEncodedSize)
}
