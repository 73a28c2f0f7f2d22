package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana"
)

// ProgramKey is the SPL token program.
//
// Current key: TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA
var ProgramKey = ed25519.PublicKey{6, 221, 246, 225, 215, 101, 161, 147, 217, 203, 225, 70, 206, 235, 121, 172, 28, 180, 133, 237, 95, 91, 55, 145, 58, 140, 245, 133, 126, 255, 0, 169}

// Command is the leading instruction data byte. Only the commands the echo
// flows issue are named.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/instruction.rs
type Command byte

const (
	CommandTransfer        Command = 3
	CommandMintTo          Command = 7
	CommandInitializeMint2 Command = 20

	CommandUnknown = Command(math.MaxUint8)
)

// Token program errors, by their on-chain code.
//
// Reference: https://github.com/solana-labs/solana-program-library/blob/b011698251981b5a12088acba18fad1d41c3719a/token/program/src/error.rs
const (
	ErrorNotRentExempt      solana.CustomError = 0
	ErrorInsufficientFunds  solana.CustomError = 1
	ErrorMintMismatch       solana.CustomError = 3
	ErrorOwnerMismatch      solana.CustomError = 4
	ErrorFixedSupply        solana.CustomError = 5
	ErrorAlreadyInUse       solana.CustomError = 6
	ErrorUninitializedState solana.CustomError = 9
	ErrorOverflow           solana.CustomError = 14
)

const (
	mintToDataSize = 1 + 8

	// command, decimals, authority and the option tag
	initializeMintBaseSize = 1 + 1 + ed25519.PublicKeySize + 1
)

// GetCommand returns the command of the token instruction at index.
func GetCommand(m solana.Message, index int) (Command, error) {
	if index < 0 || index >= len(m.Instructions) {
		return CommandUnknown, errors.Errorf("instruction doesn't exist at %d", index)
	}

	ix := m.Instructions[index]
	if int(ix.ProgramIndex) >= len(m.Accounts) || !bytes.Equal(m.Accounts[ix.ProgramIndex], ProgramKey) {
		return CommandUnknown, solana.ErrIncorrectProgram
	}
	if len(ix.Data) == 0 {
		return CommandUnknown, errors.New("token instruction missing data")
	}
	return Command(ix.Data[0]), nil
}

// InitializeMint2 initializes a mint that was already allocated with MintSize
// bytes and assigned to the token program. It does not need the rent sysvar.
//
// Accounts:
//
//  0. [writable] mint
func InitializeMint2(mint, mintAuthority, freezeAuthority ed25519.PublicKey, decimals byte) solana.Instruction {
	data := make([]byte, 0, initializeMintBaseSize+ed25519.PublicKeySize)
	data = append(data, byte(CommandInitializeMint2), decimals)
	data = append(data, mintAuthority...)
	if len(freezeAuthority) == 0 {
		data = append(data, 0)
	} else {
		data = append(data, 1)
		data = append(data, freezeAuthority...)
	}

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
	)
}

type DecompiledInitializeMint2 struct {
	Mint            ed25519.PublicKey
	Decimals        byte
	MintAuthority   ed25519.PublicKey
	FreezeAuthority ed25519.PublicKey
}

func DecompileInitializeMint2(m solana.Message, index int) (*DecompiledInitializeMint2, error) {
	ix, err := decompile(m, index, CommandInitializeMint2, 1)
	if err != nil {
		return nil, err
	}

	data := ix.Data
	if len(data) < initializeMintBaseSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(data))
	}

	authorityEnd := 2 + ed25519.PublicKeySize
	result := &DecompiledInitializeMint2{
		Mint:          m.Accounts[ix.Accounts[0]],
		Decimals:      data[1],
		MintAuthority: copyKey(data[2:authorityEnd]),
	}

	switch tag, rest := data[authorityEnd], data[authorityEnd+1:]; {
	case tag == 0 && len(rest) == 0:
	case tag == 1 && len(rest) == ed25519.PublicKeySize:
		result.FreezeAuthority = copyKey(rest)
	case tag == 1:
		return nil, errors.New("missing freeze authority")
	default:
		return nil, errors.Errorf("invalid instruction data size: %d", len(data))
	}

	return result, nil
}

// MintTo mints amount tokens into dest using a single mint authority.
//
// Accounts:
//
//  0. [writable] mint
//  1. [writable] destination token account
//  2. [signer] mint authority
func MintTo(mint, dest, authority ed25519.PublicKey, amount uint64) solana.Instruction {
	data := binary.LittleEndian.AppendUint64([]byte{byte(CommandMintTo)}, amount)

	return solana.NewInstruction(
		ProgramKey,
		data,
		solana.NewAccountMeta(mint, false),
		solana.NewAccountMeta(dest, false),
		solana.NewReadonlyAccountMeta(authority, true),
	)
}

type DecompiledMintTo struct {
	Mint        ed25519.PublicKey
	Destination ed25519.PublicKey
	Authority   ed25519.PublicKey
	Amount      uint64
}

func DecompileMintTo(m solana.Message, index int) (*DecompiledMintTo, error) {
	// Multisig authorities append their signers, so only a minimum is enforced.
	ix, err := decompile(m, index, CommandMintTo, 3)
	if err != nil {
		return nil, err
	}
	if len(ix.Data) != mintToDataSize {
		return nil, errors.Errorf("invalid instruction data size: %d", len(ix.Data))
	}

	return &DecompiledMintTo{
		Mint:        m.Accounts[ix.Accounts[0]],
		Destination: m.Accounts[ix.Accounts[1]],
		Authority:   m.Accounts[ix.Accounts[2]],
		Amount:      binary.LittleEndian.Uint64(ix.Data[1:]),
	}, nil
}

func decompile(m solana.Message, index int, command Command, minAccounts int) (solana.CompiledInstruction, error) {
	ix, err := m.InstructionAt(index, ProgramKey, 0)
	if err != nil {
		return ix, err
	}
	if len(ix.Data) == 0 || Command(ix.Data[0]) != command {
		return ix, solana.ErrIncorrectInstruction
	}
	if len(ix.Accounts) < minAccounts {
		return ix, errors.Errorf("invalid number of accounts: %d", len(ix.Accounts))
	}
	return ix, nil
}

func copyKey(b []byte) ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), b...)
}
