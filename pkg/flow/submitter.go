package flow

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-echo/pkg/solana"
)

// Submitter signs, sends and confirms transactions on behalf of a fee payer.
type Submitter struct {
	log        *logrus.Entry
	sc         solana.Client
	commitment solana.Commitment
}

func NewSubmitter(sc solana.Client, commitment solana.Commitment) *Submitter {
	return &Submitter{
		log:        logrus.StandardLogger().WithField("type", "flow/submitter"),
		sc:         sc,
		commitment: commitment,
	}
}

// Send compiles the instructions, in order, into a single transaction paid for
// and signed by payer, then sends it without waiting for confirmation.
// Additional signers are required when an instruction creates a keypair
// account.
func (s *Submitter) Send(ctx context.Context, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error) {
	if err := ctx.Err(); err != nil {
		return solana.Signature{}, err
	}

	txn := solana.NewLegacyTransaction(payer.Public().(ed25519.PublicKey), instructions...)

	bh, err := s.sc.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, tag(ErrNetwork, errors.Wrap(err, "failed to get latest blockhash"))
	}
	txn.SetBlockhash(bh)

	if err := txn.Sign(append([]ed25519.PrivateKey{payer}, signers...)...); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}

	log := s.log.WithFields(logrus.Fields{
		"method":       "Send",
		"signature":    txn.Signature().String(),
		"instructions": len(instructions),
	})

	sig, err := s.sc.SubmitTransaction(txn, s.commitment)
	if err != nil {
		log.WithError(err).Debug("transaction submission failed")
		return sig, classifySubmitError(err)
	}

	log.Debug("transaction submitted")
	return sig, nil
}

// Confirm waits until sig reaches the submitter's commitment. A transaction
// that landed with an error is a rejection.
func (s *Submitter) Confirm(ctx context.Context, sig solana.Signature) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := s.log.WithFields(logrus.Fields{
		"method":     "Confirm",
		"signature":  sig.String(),
		"commitment": s.commitment.Commitment,
	})

	status, err := s.sc.GetSignatureStatus(sig, s.commitment)
	if err != nil {
		log.WithError(err).Debug("failed to confirm transaction")
		return tag(ErrNetwork, errors.Wrap(err, "failed to confirm transaction"))
	}

	if status.ErrorResult != nil {
		log.WithError(status.ErrorResult).Debug("transaction failed")
		return tag(ErrSubmissionRejected, status.ErrorResult)
	}

	if !status.Reached(s.commitment) {
		return tag(ErrNetwork, errors.Wrapf(solana.ErrConfirmationTimeout, "status %q", status.ConfirmationStatus))
	}

	log.Debug("transaction confirmed")
	return nil
}

// Submit sends the transaction and waits for it to be confirmed.
func (s *Submitter) Submit(ctx context.Context, payer ed25519.PrivateKey, instructions []solana.Instruction, signers ...ed25519.PrivateKey) (solana.Signature, error) {
	sig, err := s.Send(ctx, payer, instructions, signers...)
	if err != nil {
		return sig, err
	}

	return sig, s.Confirm(ctx, sig)
}
