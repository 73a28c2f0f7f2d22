package token

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana/binary"
)

type AccountState byte

const (
	AccountStateUninitialized AccountState = iota
	AccountStateInitialized
	AccountStateFrozen
)

// Packed sizes of the SPL token state.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/11b1e3eefdd4e523768d63f7c70a7aa391ea0d02/token/program/src/state.rs
const (
	AccountSize = 165
	MintSize    = 82
)

// COption tags are u32 little endian.
const optionSize = 4

// Account is a token account. Delegate, IsNative and CloseAuthority are
// optional and nil when absent.
type Account struct {
	Mint            ed25519.PublicKey
	Owner           ed25519.PublicKey
	Amount          uint64
	Delegate        ed25519.PublicKey
	State           AccountState
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  ed25519.PublicKey
}

func (a *Account) Marshal() []byte {
	b := make([]byte, AccountSize)

	var off int
	binary.PutKey32(b[off:], a.Mint, &off)
	binary.PutKey32(b[off:], a.Owner, &off)
	binary.PutUint64(b[off:], a.Amount, &off)
	binary.PutOptionalKey32(b[off:], a.Delegate, &off, optionSize)
	binary.PutUint8(b[off:], uint8(a.State), &off)
	binary.PutOptionalUint64(b[off:], a.IsNative, &off, optionSize)
	binary.PutUint64(b[off:], a.DelegatedAmount, &off)
	binary.PutOptionalKey32(b[off:], a.CloseAuthority, &off, optionSize)

	return b
}

func (a *Account) Unmarshal(b []byte) bool {
	if len(b) != AccountSize {
		return false
	}
	*a = Account{}

	var off int
	var state uint8
	binary.GetKey32(b[off:], &a.Mint, &off)
	binary.GetKey32(b[off:], &a.Owner, &off)
	binary.GetUint64(b[off:], &a.Amount, &off)
	binary.GetOptionalKey32(b[off:], &a.Delegate, &off, optionSize)
	binary.GetUint8(b[off:], &state, &off)
	binary.GetOptionalUint64(b[off:], &a.IsNative, &off, optionSize)
	binary.GetUint64(b[off:], &a.DelegatedAmount, &off)
	binary.GetOptionalKey32(b[off:], &a.CloseAuthority, &off, optionSize)
	a.State = AccountState(state)

	return true
}

// Mint is a token mint. A nil MintAuthority means the supply is fixed.
type Mint struct {
	MintAuthority   ed25519.PublicKey
	Supply          uint64
	Decimals        byte
	IsInitialized   bool
	FreezeAuthority ed25519.PublicKey
}

func (m *Mint) Marshal() []byte {
	b := make([]byte, MintSize)

	var off int
	binary.PutOptionalKey32(b[off:], m.MintAuthority, &off, optionSize)
	binary.PutUint64(b[off:], m.Supply, &off)
	binary.PutUint8(b[off:], m.Decimals, &off)
	binary.PutBool(b[off:], m.IsInitialized, &off)
	binary.PutOptionalKey32(b[off:], m.FreezeAuthority, &off, optionSize)

	return b
}

func (m *Mint) Unmarshal(b []byte) bool {
	if len(b) != MintSize {
		return false
	}
	*m = Mint{}

	var off int
	binary.GetOptionalKey32(b[off:], &m.MintAuthority, &off, optionSize)
	binary.GetUint64(b[off:], &m.Supply, &off)
	binary.GetUint8(b[off:], &m.Decimals, &off)
	binary.GetBool(b[off:], &m.IsInitialized, &off)
	binary.GetOptionalKey32(b[off:], &m.FreezeAuthority, &off, optionSize)

	return true
}
