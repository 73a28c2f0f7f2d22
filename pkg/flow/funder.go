package flow

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
	"github.com/code-payments/code-echo/pkg/solana/token"
)

// Funder provisions lamports and tokens for an ephemeral identity.
type Funder struct {
	log        *logrus.Entry
	sc         solana.Client
	submitter  *Submitter
	lamports   uint64
	commitment solana.Commitment
}

// NewFunder returns a Funder that airdrops lamports and waits for the airdrop
// to reach commitment.
func NewFunder(sc solana.Client, submitter *Submitter, lamports uint64, commitment solana.Commitment) *Funder {
	return &Funder{
		log:        logrus.StandardLogger().WithField("type", "flow/funder"),
		sc:         sc,
		submitter:  submitter,
		lamports:   lamports,
		commitment: commitment,
	}
}

// Airdrop requests the configured amount for account and waits for it to land.
func (f *Funder) Airdrop(ctx context.Context, account ed25519.PublicKey) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	log := f.log.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"account":  base58.Encode(account),
		"lamports": f.lamports,
	})

	sig, err := f.sc.RequestAirdrop(account, f.lamports, f.commitment)
	if err != nil {
		log.WithError(err).Debug("airdrop request failed")
		return sig, classifyAirdropError(err)
	}

	status, err := f.sc.GetSignatureStatus(sig, f.commitment)
	if err != nil {
		log.WithError(err).Debug("airdrop was not confirmed")
		return sig, tag(ErrNetwork, errors.Wrap(err, "failed to confirm airdrop"))
	}
	if status.ErrorResult != nil {
		log.WithError(status.ErrorResult).Debug("airdrop failed")
		return sig, tag(ErrInsufficientFunds, status.ErrorResult)
	}

	log.WithField("signature", sig.String()).Debug("airdrop received")
	return sig, nil
}

// TokenAccount is a funded associated token account.
type TokenAccount struct {
	Mint    ed25519.PublicKey
	Address ed25519.PublicKey
	Amount  uint64
}

// CreateFundedTokenAccount creates a new mint controlled by payer, the payer's
// associated token account for it, and mints amount base units into it. Each
// step is a separate confirmed transaction.
func (f *Funder) CreateFundedTokenAccount(ctx context.Context, payer ed25519.PrivateKey, amount uint64) (*TokenAccount, error) {
	payerKey := payer.Public().(ed25519.PublicKey)

	mintKey, mint, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate mint")
	}

	log := f.log.WithFields(logrus.Fields{
		"method": "CreateFundedTokenAccount",
		"payer":  base58.Encode(payerKey),
		"mint":   base58.Encode(mintKey),
	})

	rent, err := f.sc.GetMinimumBalanceForRentExemption(token.MintSize)
	if err != nil {
		return nil, tag(ErrNetwork, errors.Wrap(err, "failed to get mint rent exemption"))
	}

	_, err = f.submitter.Submit(
		ctx,
		payer,
		[]solana.Instruction{
			system.CreateAccount(payerKey, mintKey, token.ProgramKey, rent, token.MintSize),
			token.InitializeMint2(mintKey, payerKey, payerKey, MintDecimals),
		},
		mint,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mint")
	}
	log.Debug("mint created")

	create, ata, err := token.CreateAssociatedTokenAccountIdempotent(payerKey, payerKey, mintKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive associated token account")
	}

	if _, err := f.submitter.Submit(ctx, payer, []solana.Instruction{create}); err != nil {
		return nil, errors.Wrap(err, "failed to create associated token account")
	}
	log.WithField("token_account", base58.Encode(ata)).Debug("associated token account created")

	mintTo := token.MintTo(mintKey, ata, payerKey, amount)
	if _, err := f.submitter.Submit(ctx, payer, []solana.Instruction{mintTo}); err != nil {
		return nil, errors.Wrap(err, "failed to mint tokens")
	}

	account, err := token.NewClient(f.sc, mintKey).GetAccount(ata, f.submitter.commitment)
	switch {
	case err == token.ErrAccountNotFound, err == token.ErrInvalidTokenAccount:
		return nil, tag(ErrAccountNotFound, errors.Wrapf(err, "token account %s", base58.Encode(ata)))
	case err != nil:
		return nil, tag(ErrNetwork, err)
	}
	log.WithField("amount", account.Amount).Debug("tokens minted")

	return &TokenAccount{
		Mint:    mintKey,
		Address: ata,
		Amount:  account.Amount,
	}, nil
}
