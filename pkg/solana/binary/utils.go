// Package binary reads and writes the little endian, offset tracked layouts
// used by on-chain account state and instruction data.
//
// Every helper operates on dst/src starting at index 0 and advances *offset
// by the number of bytes the field occupies, so callers slice at the offset:
//
//	PutUint64(b[offset:], v, &offset)
package binary

import (
	"crypto/ed25519"
	"encoding/binary"
)

const (
	keySize = ed25519.PublicKeySize
	u64Size = 8
	u32Size = 4
)

func advance(offset *int, n int) {
	*offset += n
}

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[0] = v
	advance(offset, 1)
}

func GetUint8(src []byte, dst *uint8, offset *int) {
	*dst = src[0]
	advance(offset, 1)
}

func PutBool(dst []byte, v bool, offset *int) {
	var b uint8
	if v {
		b = 1
	}
	PutUint8(dst, b, offset)
}

func GetBool(src []byte, dst *bool, offset *int) {
	*dst = src[0] != 0
	advance(offset, 1)
}

func GetUint32(src []byte, dst *uint32, offset *int) {
	*dst = binary.LittleEndian.Uint32(src)
	advance(offset, u32Size)
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst, v)
	advance(offset, u64Size)
}

func GetUint64(src []byte, dst *uint64, offset *int) {
	*dst = binary.LittleEndian.Uint64(src)
	advance(offset, u64Size)
}

func PutKey32(dst []byte, src []byte, offset *int) {
	copy(dst[:keySize], src)
	advance(offset, keySize)
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) {
	*dst = append(ed25519.PublicKey(nil), src[:keySize]...)
	advance(offset, keySize)
}

// Optional fields are a tag of tagSize bytes, 1 when present, followed by the
// value. Absent values still occupy their full width.

func PutOptionalKey32(dst []byte, src []byte, offset *int, tagSize int) {
	if len(src) > 0 {
		dst[0] = 1
		copy(dst[tagSize:tagSize+keySize], src)
	}
	advance(offset, tagSize+keySize)
}

func GetOptionalKey32(src []byte, dst *ed25519.PublicKey, offset *int, tagSize int) {
	if src[0] == 1 {
		*dst = append(ed25519.PublicKey(nil), src[tagSize:tagSize+keySize]...)
	}
	advance(offset, tagSize+keySize)
}

func PutOptionalUint64(dst []byte, v *uint64, offset *int, tagSize int) {
	if v != nil {
		dst[0] = 1
		binary.LittleEndian.PutUint64(dst[tagSize:], *v)
	}
	advance(offset, tagSize+u64Size)
}

func GetOptionalUint64(src []byte, dst **uint64, offset *int, tagSize int) {
	if src[0] == 1 {
		v := binary.LittleEndian.Uint64(src[tagSize:])
		*dst = &v
	}
	advance(offset, tagSize+u64Size)
}

// PutBytes32 writes v behind a u32 length prefix.
func PutBytes32(dst []byte, v []byte, offset *int) {
	binary.LittleEndian.PutUint32(dst, uint32(len(v)))
	copy(dst[u32Size:], v)
	advance(offset, u32Size+len(v))
}

// GetBytes32 reads a u32 length prefixed byte string. The caller bounds checks
// src against the decoded length.
func GetBytes32(src []byte, dst *[]byte, offset *int) {
	n := int(binary.LittleEndian.Uint32(src))
	*dst = append([]byte{}, src[u32Size:u32Size+n]...)
	advance(offset, u32Size+n)
}
