package flow

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/echo"
)

// ReadBuffer fetches and decodes the echo buffer at address. A missing,
// foreign or uninitialized account is reported as ErrAccountNotFound.
func ReadBuffer(sc solana.Client, program, address ed25519.PublicKey, commitment solana.Commitment) (*echo.BufferAccount, error) {
	info, err := sc.GetAccountInfo(address, commitment)
	if err == solana.ErrNoAccountInfo {
		return nil, tag(ErrAccountNotFound, errors.Wrapf(err, "buffer %s", base58.Encode(address)))
	} else if err != nil {
		return nil, tag(ErrNetwork, errors.Wrap(err, "failed to get buffer account"))
	}

	if !bytes.Equal(info.Owner, program) {
		return nil, tag(ErrAccountNotFound, errors.Errorf("buffer %s is not owned by the echo program", base58.Encode(address)))
	}

	var buffer echo.BufferAccount
	if err := buffer.Unmarshal(info.Data); err != nil {
		return nil, tag(ErrAccountNotFound, errors.Wrapf(err, "buffer %s has %d bytes", base58.Encode(address), len(info.Data)))
	}

	return &buffer, nil
}
