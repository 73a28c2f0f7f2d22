package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/token"
)

func processToken(ctx *Context, _ ed25519.PublicKey, index int) error {
	command, err := token.GetCommand(ctx.Message(), index)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	switch command {
	case token.CommandInitializeMint2:
		ix, err := token.DecompileInitializeMint2(ctx.Message(), index)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return initializeMint(ctx, ix)
	case token.CommandMintTo:
		ix, err := token.DecompileMintTo(ctx.Message(), index)
		if err != nil {
			return instructionError(solana.InstructionErrorInvalidInstructionData)
		}
		return mintTo(ctx, ix)
	default:
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}
}

func initializeMint(ctx *Context, ix *token.DecompiledInitializeMint2) error {
	info, _ := ctx.Account(ix.Mint)
	if !bytes.Equal(info.Owner, token.ProgramKey) {
		return instructionError(solana.InstructionErrorIncorrectProgramID)
	}
	if len(info.Data) != token.MintSize {
		return instructionError(solana.InstructionErrorInvalidAccountData)
	}

	var mint token.Mint
	if mint.Unmarshal(info.Data) && mint.IsInitialized {
		return token.ErrorAlreadyInUse
	}
	if info.Lamports < RentExemptBalance(token.MintSize) {
		return token.ErrorNotRentExempt
	}

	mint = token.Mint{
		MintAuthority:   ix.MintAuthority,
		Decimals:        ix.Decimals,
		IsInitialized:   true,
		FreezeAuthority: ix.FreezeAuthority,
	}
	info.Data = mint.Marshal()

	return ctx.SetAccount(ix.Mint, info)
}

func mintTo(ctx *Context, ix *token.DecompiledMintTo) error {
	mintInfo, mint, err := loadMint(ctx, ix.Mint)
	if err != nil {
		return err
	}
	if len(mint.MintAuthority) == 0 {
		return token.ErrorFixedSupply
	}
	if !bytes.Equal(mint.MintAuthority, ix.Authority) {
		return token.ErrorOwnerMismatch
	}
	if !ctx.IsSigner(ix.Authority) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	destInfo, dest, err := loadTokenAccount(ctx, ix.Destination)
	if err != nil {
		return err
	}
	if !bytes.Equal(dest.Mint, ix.Mint) {
		return token.ErrorMintMismatch
	}
	if dest.Amount+ix.Amount < dest.Amount || mint.Supply+ix.Amount < mint.Supply {
		return token.ErrorOverflow
	}

	dest.Amount += ix.Amount
	mint.Supply += ix.Amount

	destInfo.Data = dest.Marshal()
	mintInfo.Data = mint.Marshal()

	if err := ctx.SetAccount(ix.Destination, destInfo); err != nil {
		return err
	}
	return ctx.SetAccount(ix.Mint, mintInfo)
}

// burn removes amount tokens from account, which must be owned by owner, and
// reduces the mint's supply accordingly.
func burn(ctx *Context, account, mintAddress, owner ed25519.PublicKey, amount uint64) error {
	mintInfo, mint, err := loadMint(ctx, mintAddress)
	if err != nil {
		return err
	}

	accountInfo, tokenAccount, err := loadTokenAccount(ctx, account)
	if err != nil {
		return err
	}
	if !bytes.Equal(tokenAccount.Mint, mintAddress) {
		return token.ErrorMintMismatch
	}
	if !bytes.Equal(tokenAccount.Owner, owner) {
		return token.ErrorOwnerMismatch
	}
	if !ctx.IsSigner(owner) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}
	if tokenAccount.Amount < amount {
		return token.ErrorInsufficientFunds
	}

	tokenAccount.Amount -= amount
	mint.Supply -= amount

	accountInfo.Data = tokenAccount.Marshal()
	mintInfo.Data = mint.Marshal()

	if err := ctx.SetAccount(account, accountInfo); err != nil {
		return err
	}
	return ctx.SetAccount(mintAddress, mintInfo)
}

func loadMint(ctx *Context, address ed25519.PublicKey) (solana.AccountInfo, *token.Mint, error) {
	info, ok := ctx.Account(address)
	if !ok || !bytes.Equal(info.Owner, token.ProgramKey) {
		return info, nil, instructionError(solana.InstructionErrorIncorrectProgramID)
	}

	var mint token.Mint
	if !mint.Unmarshal(info.Data) {
		return info, nil, instructionError(solana.InstructionErrorInvalidAccountData)
	}
	if !mint.IsInitialized {
		return info, nil, token.ErrorUninitializedState
	}

	return info, &mint, nil
}

func loadTokenAccount(ctx *Context, address ed25519.PublicKey) (solana.AccountInfo, *token.Account, error) {
	info, ok := ctx.Account(address)
	if !ok || !bytes.Equal(info.Owner, token.ProgramKey) {
		return info, nil, instructionError(solana.InstructionErrorIncorrectProgramID)
	}

	var account token.Account
	if !account.Unmarshal(info.Data) {
		return info, nil, instructionError(solana.InstructionErrorInvalidAccountData)
	}
	if account.State == token.AccountStateUninitialized {
		return info, nil, token.ErrorUninitializedState
	}

	return info, &account, nil
}
