package echo

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/code-echo/pkg/solana"
)

var (
	authorityPrefix      = []byte("authority")
	vendingMachinePrefix = []byte("vending_machine")
)

type GetAuthorizedBufferAddressArgs struct {
	Program   ed25519.PublicKey
	Authority ed25519.PublicKey
	Seed      uint64
}

type GetVendingMachineBufferAddressArgs struct {
	Program ed25519.PublicKey
	Mint    ed25519.PublicKey
	Price   uint64
}

// GetAuthorizedBufferAddress derives the buffer written by AuthorizedEcho,
// seeded by ["authority", authority, seed as u64le].
func GetAuthorizedBufferAddress(args *GetAuthorizedBufferAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		authorityPrefix,
		args.Authority,
		putSeed(args.Seed),
	)
}

// GetVendingMachineBufferAddress derives the buffer written by
// VendingMachineEcho, seeded by ["vending_machine", mint, price as u64le].
func GetVendingMachineBufferAddress(args *GetVendingMachineBufferAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		args.Program,
		vendingMachinePrefix,
		args.Mint,
		putSeed(args.Price),
	)
}

// CreateAuthorizedBufferAddress recomputes an authorized buffer address from
// a known bump, as stored in the buffer header.
func CreateAuthorizedBufferAddress(args *GetAuthorizedBufferAddressArgs, bump uint8) (ed25519.PublicKey, error) {
	return solana.CreateProgramAddress(
		args.Program,
		authorityPrefix,
		args.Authority,
		putSeed(args.Seed),
		[]byte{bump},
	)
}

// CreateVendingMachineBufferAddress recomputes a vending machine buffer address
// from a known bump, as stored in the buffer header.
func CreateVendingMachineBufferAddress(args *GetVendingMachineBufferAddressArgs, bump uint8) (ed25519.PublicKey, error) {
	return solana.CreateProgramAddress(
		args.Program,
		vendingMachinePrefix,
		args.Mint,
		putSeed(args.Price),
		[]byte{bump},
	)
}

func putSeed(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
