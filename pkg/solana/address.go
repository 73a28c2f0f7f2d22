package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrNoViableBumpSeed      = errors.New("unable to find a viable program address bump seed")

	// ErrInvalidPublicKey is returned when a derived address lands on the
	// curve and therefore may have a private key.
	ErrInvalidPublicKey = errors.New("invalid public key")
)

// programAddressDigest is replaced in tests to force on-curve results.
var programAddressDigest = sha256.Sum256

// PublicKeyFromBase58 decodes a base58 address and checks its length.
func PublicKeyFromBase58(encoded string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base58 address %q", encoded)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid address size: %d (expected %d)", len(decoded), ed25519.PublicKeySize)
	}
	return decoded, nil
}

// CreateProgramAddress hashes seeds, program and the PDA marker into an
// address, failing with ErrInvalidPublicKey if the result is a valid curve
// point.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	var preimage []byte
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		preimage = append(preimage, s...)
	}
	preimage = append(preimage, program...)
	preimage = append(preimage, programAddressMarker...)

	digest := programAddressDigest(preimage)
	if isOnCurve(&digest) {
		return nil, ErrInvalidPublicKey
	}

	return digest[:], nil
}

// isOnCurve reports whether b decodes as a compressed Edwards point. The
// standard library keeps point decoding internal.
func isOnCurve(b *[32]byte) bool {
	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(b)
}

// FindProgramAddressAndBump searches bump seeds from 255 downwards and returns
// the first off-curve address with its bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	// The bump occupies the last seed slot.
	if len(seeds) >= maxSeeds {
		return nil, 0, ErrTooManySeeds
	}

	bump := []byte{0}
	withBump := append(append(make([][]byte, 0, len(seeds)+1), seeds...), bump)

	for b := math.MaxUint8; b > 0; b-- {
		bump[0] = uint8(b)

		pub, err := CreateProgramAddress(program, withBump...)
		switch err {
		case nil:
			return pub, bump[0], nil
		case ErrInvalidPublicKey:
		default:
			return nil, 0, err
		}
	}

	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump seed.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}
