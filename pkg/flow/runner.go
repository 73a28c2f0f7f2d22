package flow

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/echo"
)

// Result describes a completed run.
type Result struct {
	// RunID tags every log line of the run.
	RunID string

	Identity     ed25519.PublicKey
	TokenAccount *TokenAccount

	Buffer    ed25519.PublicKey
	Bump      uint8
	Signature solana.Signature
	Account   *echo.BufferAccount
}

// Runner executes one echo flow end to end: fund, derive, submit, read back.
type Runner struct {
	log       *logrus.Entry
	kind      Kind
	sc        solana.Client
	config    *Config
	out       io.Writer
	funder    *Funder
	submitter *Submitter

	state State
}

func NewRunner(kind Kind, sc solana.Client, config *Config, out io.Writer) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	submitter := NewSubmitter(sc, config.commitment())

	return &Runner{
		log:       logrus.StandardLogger().WithField("type", "flow/runner").WithField("flow", kind.String()),
		kind:      kind,
		sc:        sc,
		config:    config,
		out:       out,
		funder:    NewFunder(sc, submitter, config.AirdropLamports, config.airdropCommitment()),
		submitter: submitter,
		state:     StateIdle,
	}, nil
}

// State returns the furthest state the last run reached.
func (r *Runner) State() State {
	return r.state
}

// Run executes the flow for args with a freshly generated identity. The
// context is checked between steps; an in flight RPC is bounded by the
// client's own timeout.
func (r *Runner) Run(ctx context.Context, args *Args) (*Result, error) {
	r.state = StateIdle

	identityKey, identity, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate identity")
	}

	runID := uuid.NewString()
	log := r.log.WithFields(logrus.Fields{
		"run":      runID,
		"identity": base58.Encode(identityKey),
		"program":  base58.Encode(args.Program),
	})

	result := &Result{RunID: runID, Identity: identityKey}

	r.printf("Requesting Airdrop of %s SOL...\n", formatSol(r.config.AirdropLamports))
	airdropSig, err := r.funder.Airdrop(ctx, identityKey)
	if err != nil {
		return nil, err
	}
	if r.kind == KindVendingMachine {
		r.printf("%s\n", airdropSig)
	}
	r.printf("Airdrop received\n")

	if r.kind == KindVendingMachine {
		r.printf("payer: %s\n", base58.Encode(identityKey))

		result.TokenAccount, err = r.funder.CreateFundedTokenAccount(ctx, identity, r.config.MintAmount)
		if err != nil {
			return nil, err
		}
	}
	r.transition(log, StateFunded)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Buffer, result.Bump, err = r.deriveBuffer(identityKey, result.TokenAccount, args)
	if err != nil {
		return nil, err
	}
	log = log.WithField("buffer", base58.Encode(result.Buffer))
	r.transition(log, StateAddressDerived)

	instructions, err := r.buildInstructions(identityKey, result, args)
	if err != nil {
		return nil, err
	}

	result.Signature, err = r.submitter.Send(ctx, identity, instructions)
	if err != nil {
		return nil, err
	}
	log = log.WithField("signature", result.Signature.String())
	r.transition(log, StateSubmitted)

	if r.kind == KindVendingMachine {
		r.printf("%s\n", solana.ExplorerURL(result.Signature, solana.Environment(r.config.SolanaRPCEndpoint)))
	}

	if err := r.submitter.Confirm(ctx, result.Signature); err != nil {
		return nil, err
	}
	r.transition(log, StateConfirmed)

	result.Account, err = ReadBuffer(r.sc, args.Program, result.Buffer, r.submitter.commitment)
	if err != nil {
		return nil, err
	}

	r.printf("%s data: %s\n", r.kind.BufferLabel(), result.Account.Text())
	r.printf("Success\n")

	return result, nil
}

func (r *Runner) deriveBuffer(identity ed25519.PublicKey, tokenAccount *TokenAccount, args *Args) (ed25519.PublicKey, uint8, error) {
	var address ed25519.PublicKey
	var bump uint8
	var err error

	switch r.kind {
	case KindAuthority:
		address, bump, err = echo.GetAuthorizedBufferAddress(&echo.GetAuthorizedBufferAddressArgs{
			Program:   args.Program,
			Authority: identity,
			Seed:      args.Value,
		})
	case KindVendingMachine:
		address, bump, err = echo.GetVendingMachineBufferAddress(&echo.GetVendingMachineBufferAddressArgs{
			Program: args.Program,
			Mint:    tokenAccount.Mint,
			Price:   args.Value,
		})
	default:
		return nil, 0, errors.Errorf("unsupported flow %d", r.kind)
	}

	if err != nil {
		return nil, 0, tag(ErrInvalidArgument, errors.Wrap(err, "failed to derive buffer address"))
	}
	return address, bump, nil
}

// buildInstructions returns the initialize instruction followed by the echo
// instruction, both addressing the derived buffer.
func (r *Runner) buildInstructions(identity ed25519.PublicKey, result *Result, args *Args) ([]solana.Instruction, error) {
	data := []byte(args.Text)
	size := uint64(len(data))

	var initialize, write solana.Instruction
	var err error

	switch r.kind {
	case KindAuthority:
		initialize = echo.NewInitializeAuthorizedEchoInstruction(
			args.Program,
			&echo.InitializeAuthorizedEchoInstructionAccounts{
				Buffer:    result.Buffer,
				Authority: identity,
			},
			&echo.InitializeAuthorizedEchoInstructionArgs{
				BufferSeed: args.Value,
				BufferSize: size,
			},
		)
		write, err = echo.NewAuthorizedEchoInstruction(
			args.Program,
			&echo.AuthorizedEchoInstructionAccounts{
				Buffer:    result.Buffer,
				Authority: identity,
			},
			&echo.AuthorizedEchoInstructionArgs{
				Data: data,
			},
		)
	case KindVendingMachine:
		initialize = echo.NewInitializeVendingMachineEchoInstruction(
			args.Program,
			&echo.InitializeVendingMachineEchoInstructionAccounts{
				Buffer: result.Buffer,
				Mint:   result.TokenAccount.Mint,
				Payer:  identity,
			},
			&echo.InitializeVendingMachineEchoInstructionArgs{
				Price:      args.Value,
				BufferSize: size,
			},
		)
		write, err = echo.NewVendingMachineEchoInstruction(
			args.Program,
			&echo.VendingMachineEchoInstructionAccounts{
				Buffer:            result.Buffer,
				Payer:             identity,
				PayerTokenAccount: result.TokenAccount.Address,
				Mint:              result.TokenAccount.Mint,
			},
			&echo.VendingMachineEchoInstructionArgs{
				Data: data,
			},
		)
	default:
		return nil, errors.Errorf("unsupported flow %d", r.kind)
	}

	if err != nil {
		return nil, classifySubmitError(errors.Wrap(err, "failed to build echo instruction"))
	}

	return []solana.Instruction{initialize, write}, nil
}

func (r *Runner) transition(log *logrus.Entry, next State) {
	log.WithFields(logrus.Fields{
		"from": r.state.String(),
		"to":   next.String(),
	}).Info("state transition")
	r.state = next
}

func (r *Runner) printf(format string, args ...interface{}) {
	if r.out == nil {
		return
	}
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func formatSol(lamports uint64) string {
	return strconv.FormatFloat(float64(lamports)/lamportsPerSol, 'f', -1, 64)
}
