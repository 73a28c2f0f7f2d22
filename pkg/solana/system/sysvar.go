package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58/base58"
)

var (
	// SystemAccount is the base58 form of ProgramKey, kept for callers that
	// compare against decoded addresses.
	SystemAccount = mustDecodeKey("11111111111111111111111111111111")

	// RentSysVar is still required by the legacy associated token account
	// create instruction.
	//
	// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/sysvar/rent.rs#L11
	RentSysVar = mustDecodeKey("SysvarRent111111111111111111111111111111111")
)

func mustDecodeKey(s string) ed25519.PublicKey {
	raw, err := base58.Decode(s)
	if err != nil {
		panic(err)
	}
	if len(raw) != ed25519.PublicKeySize {
		panic("invalid key length for " + s)
	}
	return raw
}
