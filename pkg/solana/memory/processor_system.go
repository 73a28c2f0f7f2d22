package memory

import (
	"crypto/ed25519"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
)

// processSystem supports CreateAccount only.
func processSystem(ctx *Context, _ ed25519.PublicKey, index int) error {
	ix, err := system.DecompileCreateAccount(ctx.Message(), index)
	if err != nil {
		return instructionError(solana.InstructionErrorInvalidInstructionData)
	}

	if !ctx.IsSigner(ix.Funder) || !ctx.IsSigner(ix.Address) {
		return instructionError(solana.InstructionErrorMissingRequiredSignature)
	}
	if ix.Size > system.MaxPermittedDataLength {
		return system.ErrorInvalidAccountDataLength
	}

	return ctx.CreateAccount(ix.Funder, ix.Address, ix.Owner, ix.Lamports, ix.Size)
}
