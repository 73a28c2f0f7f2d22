package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/token"
)

func processAssociatedTokenAccount(ctx *Context, _ ed25519.PublicKey, index int) error {
	idempotent := true
	ix, err := token.DecompileCreateAssociatedAccountIdempotent(ctx.Message(), index)
	if err != nil {
		idempotent = false
		ix, err = token.DecompileCreateAssociatedAccount(ctx.Message(), index)
	}
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	expected, err := token.GetAssociatedAccount(ix.Owner, ix.Mint)
	if err != nil || !bytes.Equal(expected, ix.Address) {
		return instructionError(solana.InstructionErrorInvalidSeeds)
	}

	if existing, ok := ctx.Account(ix.Address); ok && len(existing.Data) > 0 {
		if !idempotent {
			return instructionError(solana.InstructionErrorAccountAlreadyInitialized)
		}

		_, account, err := loadTokenAccount(ctx, ix.Address)
		if err != nil {
			return err
		}
		if !bytes.Equal(account.Owner, ix.Owner) || !bytes.Equal(account.Mint, ix.Mint) {
			return instructionError(solana.InstructionErrorInvalidAccountData)
		}
		return nil
	}

	if _, _, err := loadMint(ctx, ix.Mint); err != nil {
		return err
	}
	if !ctx.IsSigner(ix.Subsidizer) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}

	if err := ctx.CreateAccount(ix.Subsidizer, ix.Address, token.ProgramKey, RentExemptBalance(token.AccountSize), token.AccountSize); err != nil {
		return err
	}

	info, _ := ctx.Account(ix.Address)
	account := token.Account{
		Mint:  ix.Mint,
		Owner: ix.Owner,
		State: token.AccountStateInitialized,
	}
	info.Data = account.Marshal()

	return ctx.SetAccount(ix.Address, info)
}
