package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/echo"
)

// ProcessEcho executes the echo program. Register it with RegisterProgram
// under the address the program is deployed at.
func ProcessEcho(ctx *Context, program ed25519.PublicKey, index int) error {
	opcode, err := echo.GetOpcode(ctx.Message(), index, program)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	switch opcode {
	case echo.OpcodeEcho:
		args, accounts, err := echo.DecompileEcho(ctx.Message(), index, program)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return processPlainEcho(ctx, program, args, accounts)
	case echo.OpcodeInitializeAuthorizedEcho:
		args, accounts, err := echo.DecompileInitializeAuthorizedEcho(ctx.Message(), index, program)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return processInitializeAuthorizedEcho(ctx, program, args, accounts)
	case echo.OpcodeAuthorizedEcho:
		args, accounts, err := echo.DecompileAuthorizedEcho(ctx.Message(), index, program)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return processAuthorizedEcho(ctx, program, args, accounts)
	case echo.OpcodeInitializeVendingMachineEcho:
		args, accounts, err := echo.DecompileInitializeVendingMachineEcho(ctx.Message(), index, program)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return processInitializeVendingMachineEcho(ctx, program, args, accounts)
	case echo.OpcodeVendingMachineEcho:
		args, accounts, err := echo.DecompileVendingMachineEcho(ctx.Message(), index, program)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return processVendingMachineEcho(ctx, program, args, accounts)
	}

	return instructionError(solana.InstructionErrorInvalidInstructionData)
}

// A plain echo writes into a zeroed, program owned buffer that is never
// rewritten.
func processPlainEcho(ctx *Context, program ed25519.PublicKey, args *echo.EchoInstructionArgs, accounts *echo.EchoInstructionAccounts) error {
	info, ok := ctx.Account(accounts.Buffer)
	if !ok || !bytes.Equal(info.Owner, program) {
		return instructionError(solana.InstructionErrorIncorrectProgramID)
	}
	if len(info.Data) == 0 {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}
	for _, b := range info.Data {
		if b != 0 {
			return instructionError(solana.InstructionErrorAccountAlreadyInitialized)
		}
	}

	copy(info.Data, args.Data)
	return ctx.SetAccount(accounts.Buffer, info)
}

func processInitializeAuthorizedEcho(ctx *Context, program ed25519.PublicKey, args *echo.InitializeAuthorizedEchoInstructionArgs, accounts *echo.InitializeAuthorizedEchoInstructionAccounts) error {
	if !ctx.IsSigner(accounts.Authority) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	address, bump, err := echo.GetAuthorizedBufferAddress(&echo.GetAuthorizedBufferAddressArgs{
		Program:   program,
		Authority: accounts.Authority,
		Seed:      args.BufferSeed,
	})
	if err != nil || !bytes.Equal(address, accounts.Buffer) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	return initializeBuffer(ctx, program, accounts.Authority, accounts.Buffer, bump, args.BufferSeed, args.BufferSize)
}

func processAuthorizedEcho(ctx *Context, program ed25519.PublicKey, args *echo.AuthorizedEchoInstructionArgs, accounts *echo.AuthorizedEchoInstructionAccounts) error {
	info, buffer, err := loadBuffer(ctx, program, accounts.Buffer)
	if err != nil {
		return err
	}

	if !ctx.IsSigner(accounts.Authority) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	address, err := echo.CreateAuthorizedBufferAddress(&echo.GetAuthorizedBufferAddressArgs{
		Program:   program,
		Authority: accounts.Authority,
		Seed:      buffer.Seed,
	}, buffer.Bump)
	if err != nil || !bytes.Equal(address, accounts.Buffer) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	return writeBuffer(ctx, accounts.Buffer, info, buffer, args.Data)
}

func processInitializeVendingMachineEcho(ctx *Context, program ed25519.PublicKey, args *echo.InitializeVendingMachineEchoInstructionArgs, accounts *echo.InitializeVendingMachineEchoInstructionAccounts) error {
	if !ctx.IsSigner(accounts.Payer) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	address, bump, err := echo.GetVendingMachineBufferAddress(&echo.GetVendingMachineBufferAddressArgs{
		Program: program,
		Mint:    accounts.Mint,
		Price:   args.Price,
	})
	if err != nil || !bytes.Equal(address, accounts.Buffer) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	return initializeBuffer(ctx, program, accounts.Payer, accounts.Buffer, bump, args.Price, args.BufferSize)
}

func processVendingMachineEcho(ctx *Context, program ed25519.PublicKey, args *echo.VendingMachineEchoInstructionArgs, accounts *echo.VendingMachineEchoInstructionAccounts) error {
	info, buffer, err := loadBuffer(ctx, program, accounts.Buffer)
	if err != nil {
		return err
	}

	_, tokenAccount, err := loadTokenAccount(ctx, accounts.PayerTokenAccount)
	if err != nil {
		return err
	}
	if !bytes.Equal(tokenAccount.Mint, accounts.Mint) {
		return instructionError(solana.InstructionErrorInvalidAccountData)
	}
	if !bytes.Equal(tokenAccount.Owner, accounts.Payer) {
		return instructionError(solana.InstructionErrorInvalidAccountData)
	}
	if tokenAccount.Amount < buffer.Seed {
		return instructionError(solana.InstructionErrorInsufficientFunds)
	}

	address, err := echo.CreateVendingMachineBufferAddress(&echo.GetVendingMachineBufferAddressArgs{
		Program: program,
		Mint:    accounts.Mint,
		Price:   buffer.Seed,
	}, buffer.Bump)
	if err != nil || !bytes.Equal(address, accounts.Buffer) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	if err := burn(ctx, accounts.PayerTokenAccount, accounts.Mint, accounts.Payer, buffer.Seed); err != nil {
		return err
	}

	return writeBuffer(ctx, accounts.Buffer, info, buffer, args.Data)
}

func initializeBuffer(ctx *Context, program, funder, address ed25519.PublicKey, bump uint8, seed, size uint64) error {
	accountSize := echo.GetBufferAccountSize(size)
	if err := ctx.CreateAccount(funder, address, program, RentExemptBalance(accountSize), accountSize); err != nil {
		return err
	}

	info, _ := ctx.Account(address)
	buffer := echo.BufferAccount{
		Bump: bump,
		Seed: seed,
		Data: make([]byte, size),
	}
	info.Data = buffer.Marshal()

	return ctx.SetAccount(address, info)
}

func loadBuffer(ctx *Context, program, address ed25519.PublicKey) (solana.AccountInfo, *echo.BufferAccount, error) {
	info, ok := ctx.Account(address)
	if !ok || !bytes.Equal(info.Owner, program) {
		return info, nil, instructionError(solana.InstructionErrorIncorrectProgramID)
	}

	var buffer echo.BufferAccount
	if err := buffer.Unmarshal(info.Data); err != nil {
		return info, nil, instructionError(solana.InstructionErrorInvalidAccountData)
	}

	return info, &buffer, nil
}

// writeBuffer copies as much of data as fits and zeroes the remainder.
func writeBuffer(ctx *Context, address ed25519.PublicKey, info solana.AccountInfo, buffer *echo.BufferAccount, data []byte) error {
	n := copy(buffer.Data, data)
	for i := n; i < len(buffer.Data); i++ {
		buffer.Data[i] = 0
	}

	info.Data = buffer.Marshal()
	return ctx.SetAccount(address, info)
}
