// Package memory provides an in memory solana.Client that executes a small set
// of programs locally. It is intended for tests that need ledger semantics
// without a validator.
package memory

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
	"github.com/code-payments/code-echo/pkg/solana/token"
)

const (
	// LamportsPerSignature is the fee charged to the payer per signature.
	LamportsPerSignature = 5000

	// Rent exemption is two years at 3480 lamports per byte year, including
	// the 128 byte account overhead.
	rentLamportsPerByte = 3480 * 2
	rentAccountOverhead = 128
)

// Processor executes the instruction at index of the context's message.
type Processor func(ctx *Context, program ed25519.PublicKey, index int) error

// Client is an in memory ledger implementing solana.Client.
type Client struct {
	log *logrus.Entry

	mu        sync.Mutex
	slot      uint64
	accounts  map[string]solana.AccountInfo
	statuses  map[solana.Signature]*solana.SignatureStatus
	programs  map[string]Processor
	requests  []string
	airdropFn func(ed25519.PublicKey, uint64) error
	callErr   error
}

// New returns a ledger with the system, token and associated token account
// programs installed.
func New() *Client {
	c := &Client{
		log:      logrus.StandardLogger().WithField("type", "solana/memory"),
		accounts: make(map[string]solana.AccountInfo),
		statuses: make(map[solana.Signature]*solana.SignatureStatus),
		programs: make(map[string]Processor),
	}

	c.programs[string(system.ProgramKey[:])] = processSystem
	c.programs[string(token.ProgramKey)] = processToken
	c.programs[string(token.AssociatedTokenAccountProgramKey)] = processAssociatedTokenAccount

	return c
}

// RegisterProgram installs a processor for program.
func (c *Client) RegisterProgram(program ed25519.PublicKey, p Processor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.programs[string(program)] = p
}

// SetAccount overwrites the account at address.
func (c *Client) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts[string(address)] = cloneAccount(info)
}

// Account returns the account at address, if it exists.
func (c *Client) Account(address ed25519.PublicKey) (solana.AccountInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.accounts[string(address)]
	return cloneAccount(info), ok
}

// Requests returns the RPC methods invoked so far, in order.
func (c *Client) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.requests...)
}

// SetAirdropHandler intercepts airdrop requests. A non-nil error from fn fails
// the request without crediting the account.
func (c *Client) SetAirdropHandler(fn func(account ed25519.PublicKey, lamports uint64) error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.airdropFn = fn
}

// SetUnavailable makes every subsequent call fail with err. A nil err restores
// service.
func (c *Client) SetUnavailable(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.callErr = err
}

// RentExemptBalance returns the minimum balance for an account of size bytes.
func RentExemptBalance(size uint64) uint64 {
	return (rentAccountOverhead + size) * rentLamportsPerByte
}

func (c *Client) begin(method string) error {
	c.requests = append(c.requests, method)
	return c.callErr
}

func (c *Client) GetAccountInfo(address ed25519.PublicKey, _ solana.Commitment) (solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("getAccountInfo"); err != nil {
		return solana.AccountInfo{}, err
	}

	info, ok := c.accounts[string(address)]
	if !ok {
		return solana.AccountInfo{}, solana.ErrNoAccountInfo
	}

	return cloneAccount(info), nil
}

func (c *Client) GetBalance(address ed25519.PublicKey) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("getBalance"); err != nil {
		return 0, err
	}

	return c.accounts[string(address)].Lamports, nil
}

func (c *Client) GetLatestBlockhash() (solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("getLatestBlockhash"); err != nil {
		return solana.Blockhash{}, err
	}

	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], c.slot)
	return sha256.Sum256(append([]byte("blockhash"), slot[:]...)), nil
}

func (c *Client) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("getMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}

	return RentExemptBalance(size), nil
}

// GetSignatureStatus returns immediately; every processed transaction is
// considered finalized.
func (c *Client) GetSignatureStatus(sig solana.Signature, _ solana.Commitment) (*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("getSignatureStatuses"); err != nil {
		return nil, err
	}

	s, ok := c.statuses[sig]
	if !ok {
		return nil, errors.Wrap(solana.ErrConfirmationTimeout, solana.ErrSignatureNotFound.Error())
	}

	cloned := *s
	return &cloned, nil
}

func (c *Client) GetSignatureStatuses(sigs []solana.Signature) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("getSignatureStatuses"); err != nil {
		return nil, err
	}

	statuses := make([]*solana.SignatureStatus, len(sigs))
	for i, sig := range sigs {
		if s, ok := c.statuses[sig]; ok {
			cloned := *s
			statuses[i] = &cloned
		}
	}

	return statuses, nil
}

func (c *Client) RequestAirdrop(address ed25519.PublicKey, lamports uint64, _ solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("requestAirdrop"); err != nil {
		return solana.Signature{}, err
	}

	if c.airdropFn != nil {
		if err := c.airdropFn(address, lamports); err != nil {
			return solana.Signature{}, errors.Wrap(err, "requestAirdrop() failed to send request")
		}
	}

	c.slot++

	info := c.accounts[string(address)]
	if info.Owner == nil {
		info.Owner = system.ProgramKey[:]
	}
	info.Lamports += lamports
	c.accounts[string(address)] = info

	var slot [8]byte
	binary.LittleEndian.PutUint64(slot[:], c.slot)
	h := deriveSignature(append(append([]byte("airdrop"), address...), slot[:]...))

	c.statuses[h] = &solana.SignatureStatus{
		Slot:               c.slot,
		ConfirmationStatus: "finalized",
	}

	c.log.WithFields(logrus.Fields{
		"account":  base58.Encode(address),
		"lamports": lamports,
	}).Debug("airdrop credited")

	return h, nil
}

// SubmitTransaction verifies signatures, charges fees and executes the
// transaction atomically. Instruction failures are recorded on the signature
// status rather than returned, mirroring submission with preflight disabled.
func (c *Client) SubmitTransaction(txn solana.Transaction, _ solana.Commitment) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin("sendTransaction"); err != nil {
		return solana.Signature{}, err
	}

	sig := txn.Signature()
	if len(txn.Marshal()) > solana.MaxTransactionSize {
		return sig, errors.Wrapf(solana.ErrTransactionTooLarge, "size %d", len(txn.Marshal()))
	}

	if err := verifySignatures(txn); err != nil {
		return sig, err
	}

	if _, ok := c.statuses[sig]; ok {
		return sig, solana.NewTransactionError("AlreadyProcessed")
	}

	payer := txn.Message.Accounts[0]
	fee := uint64(LamportsPerSignature * len(txn.Signatures))
	payerInfo, ok := c.accounts[string(payer)]
	if !ok || payerInfo.Lamports < fee {
		return sig, solana.NewTransactionError(solana.TransactionErrorInsufficientFundsForFee)
	}

	c.slot++
	payerInfo.Lamports -= fee
	c.accounts[string(payer)] = payerInfo

	status := &solana.SignatureStatus{
		Slot:               c.slot,
		ConfirmationStatus: "finalized",
	}
	c.statuses[sig] = status

	ctx := newContext(txn.Message, c.accounts)
	for i, ix := range txn.Message.Instructions {
		program := txn.Message.Accounts[ix.ProgramIndex]

		processor, ok := c.programs[string(program)]
		if !ok {
			status.ErrorResult = solana.NewTransactionError(solana.TransactionErrorProgramAccountNotFound)
			return sig, nil
		}

		if err := processor(ctx, program, i); err != nil {
			c.log.WithError(err).WithField("index", i).Debug("instruction failed")
			status.ErrorResult = solana.NewInstructionTransactionError(i, err)
			return sig, nil
		}
	}

	ctx.commit(c.accounts)
	return sig, nil
}

func verifySignatures(txn solana.Transaction) error {
	if len(txn.Signatures) != int(txn.Message.Header.NumSignatures) || len(txn.Signatures) == 0 {
		return solana.NewTransactionError(solana.TransactionErrorSanitizeFailure)
	}

	message := txn.Message.Marshal()
	for i, s := range txn.Signatures {
		if !ed25519.Verify(txn.Message.Accounts[i], message, s[:]) {
			return solana.NewTransactionError(solana.TransactionErrorSignatureFailure)
		}
	}

	return nil
}

// deriveSignature produces a unique, deterministic signature for ledger
// generated transactions.
func deriveSignature(b []byte) (sig solana.Signature) {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	copy(sig[:], first[:])
	copy(sig[32:], second[:])
	return sig
}

func cloneAccount(info solana.AccountInfo) solana.AccountInfo {
	cloned := info
	if info.Data != nil {
		cloned.Data = append([]byte(nil), info.Data...)
	}
	if info.Owner != nil {
		cloned.Owner = append(ed25519.PublicKey(nil), info.Owner...)
	}
	return cloned
}
