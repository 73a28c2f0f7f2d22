package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/code-echo/pkg/rate"
	"github.com/code-payments/code-echo/pkg/retry"
	"github.com/code-payments/code-echo/pkg/retry/backoff"
)

const (
	// Slots are produced every 400ms; statuses are polled at twice that rate.
	slotDuration = 400 * time.Millisecond
	PollRate     = slotDuration / 2

	// Confirmation is expected within ~32 slots, finalization ~32 after that.
	confirmedPollLimit = 2 * 32
	finalizedPollLimit = 2 * confirmedPollLimit

	// Blockhashes are reused for about two seconds.
	blockhashTTL = 2 * time.Second

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005
	rpcInvalidParamsCode = -32602
)

type Commitment struct {
	Commitment string `json:"commitment"`
}

const (
	confirmationStatusProcessed = "processed"
	confirmationStatusConfirmed = "confirmed"
	confirmationStatusFinalized = "finalized"
)

var (
	CommitmentProcessed = Commitment{Commitment: confirmationStatusProcessed}
	CommitmentConfirmed = Commitment{Commitment: confirmationStatusConfirmed}
	CommitmentFinalized = Commitment{Commitment: confirmationStatusFinalized}
)

// CommitmentFromString parses a commitment level name.
func CommitmentFromString(s string) (Commitment, error) {
	for _, c := range []Commitment{CommitmentProcessed, CommitmentConfirmed, CommitmentFinalized} {
		if c.Commitment == s {
			return c, nil
		}
	}
	return Commitment{}, errors.Errorf("unknown commitment level %q", s)
}

var (
	ErrNoAccountInfo       = errors.New("no account info")
	ErrSignatureNotFound   = errors.New("signature not found")
	ErrConfirmationTimeout = errors.New("signature did not reach commitment in time")
	ErrNoBalance           = errors.New("no balance")
)

// AccountInfo is the raw state of an account as returned by the node.
type AccountInfo struct {
	Data       []byte
	Owner      ed25519.PublicKey
	Lamports   uint64
	Executable bool
}

type SignatureStatus struct {
	Slot        uint64
	ErrorResult *TransactionError

	// Confirmations is nil once the transaction has been rooted.
	Confirmations      *int
	ConfirmationStatus string
}

func (s SignatureStatus) Confirmed() bool {
	switch {
	case s.Finalized():
		return true
	case s.ConfirmationStatus == confirmationStatusConfirmed:
		return true
	default:
		return *s.Confirmations > 0
	}
}

func (s SignatureStatus) Finalized() bool {
	return s.Confirmations == nil || s.ConfirmationStatus == confirmationStatusFinalized
}

// Reached reports whether the status satisfies the commitment level.
func (s SignatureStatus) Reached(commitment Commitment) bool {
	switch commitment {
	case CommitmentProcessed:
		return true
	case CommitmentConfirmed:
		return s.Confirmed()
	case CommitmentFinalized:
		return s.Finalized()
	default:
		return false
	}
}

// Client is the subset of the Solana JSON RPC API the echo flows use.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	GetAccountInfo(ed25519.PublicKey, Commitment) (AccountInfo, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetLatestBlockhash() (Blockhash, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
	GetSignatureStatus(Signature, Commitment) (*SignatureStatus, error)
	GetSignatureStatuses([]Signature) ([]*SignatureStatus, error)
	RequestAirdrop(ed25519.PublicKey, uint64, Commitment) (Signature, error)
	SubmitTransaction(Transaction, Commitment) (Signature, error)
}

// Transient RPC failures. The client retries them itself; once it gives up,
// the returned error matches one of these with errors.Is and still unwraps to
// the node's *jsonrpc.RPCError or *jsonrpc.HTTPError, when there was one.
var (
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("service unavailable")
)

type transientError struct {
	kind  error
	cause error
}

func (e *transientError) Error() string {
	if e.cause == nil {
		return e.kind.Error()
	}
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *transientError) Is(target error) bool { return target == e.kind }
func (e *transientError) Unwrap() error        { return e.cause }

// IsTransient reports whether err is a rate limit or service failure that
// outlasted the client's retries.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServiceUnavailable)
}

// Option configures a client.
type Option func(*client)

// WithLimiter throttles outgoing requests per RPC method. Throttled requests
// are retried like a 429 from the node.
func WithLimiter(limiter rate.Limiter) Option {
	return func(c *client) {
		c.limiter = limiter
	}
}

// WithPollRate overrides the interval used while polling signature statuses.
func WithPollRate(interval time.Duration) Option {
	return func(c *client) {
		c.pollRate = interval
	}
}

type client struct {
	log      *logrus.Entry
	rpc      jsonrpc.RPCClient
	retrier  retry.Retrier
	limiter  rate.Limiter
	pollRate time.Duration

	mu          sync.RWMutex
	blockhash   Blockhash
	blockhashAt time.Time
}

// New returns a client for the endpoint using default transport options.
func New(endpoint string, options ...Option) Client {
	return NewWithRPCOptions(endpoint, nil, options...)
}

// NewWithRPCOptions returns a client with the given transport options.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts, options ...Option) Client {
	c := &client{
		log: logrus.StandardLogger().WithField("type", "solana/client"),
		rpc: jsonrpc.NewClientWithOpts(endpoint, opts),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(ErrRateLimited, ErrServiceUnavailable),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
		limiter:  &rate.NoLimiter{},
		pollRate: PollRate,
	}
	for _, apply := range options {
		apply(c)
	}
	return c
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	log := c.log.WithField("method", method)

	_, err := c.retrier.Retry(func() error {
		allowed, err := c.limiter.Allow(method)
		if err != nil {
			return errors.Wrap(err, "failed to check rate limit")
		}
		if !allowed {
			log.Debug("throttled by local limiter")
			return &transientError{kind: ErrRateLimited}
		}

		return classify(log, c.rpc.CallFor(out, method, params...))
	})
	return err
}

// classify marks rate limits and node failures as transient, keeping the
// node's error as the cause. Anything else is returned as is.
func classify(log *logrus.Entry, err error) error {
	var code int
	switch e := err.(type) {
	case nil:
		return nil
	case *jsonrpc.HTTPError:
		code = e.Code
	case *jsonrpc.RPCError:
		if e.Code == rpcNodeUnhealthyCode {
			return &transientError{kind: ErrServiceUnavailable, cause: err}
		}
		code = e.Code
	default:
		return err
	}

	switch {
	case code == http.StatusTooManyRequests:
		log.Warn("rate limited")
		return &transientError{kind: ErrRateLimited, cause: err}
	case code >= http.StatusInternalServerError:
		return &transientError{kind: ErrServiceUnavailable, cause: err}
	default:
		return err
	}
}

func (c *client) GetMinimumBalanceForRentExemption(size uint64) (uint64, error) {
	var lamports uint64
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", size); err != nil {
		return 0, errors.Wrap(err, "getMinimumBalanceForRentExemption() failed to send request")
	}
	return lamports, nil
}

// GetLatestBlockhash returns a confirmed blockhash, reusing the previous one
// for a jittered window of around blockhashTTL.
func (c *client) GetLatestBlockhash() (Blockhash, error) {
	window := time.Duration(float64(blockhashTTL) * (0.8 + rand.Float64()))

	c.mu.RLock()
	cached, fresh := c.blockhash, time.Since(c.blockhashAt) < window
	c.mu.RUnlock()
	if fresh && cached != (Blockhash{}) {
		return cached, nil
	}

	var resp struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(&resp, "getLatestBlockhash", []interface{}{CommitmentConfirmed}); err != nil {
		return Blockhash{}, errors.Wrap(err, "getLatestBlockhash() failed to send request")
	}

	var hash Blockhash
	if err := decodeFixed(hash[:], resp.Value.Blockhash); err != nil {
		return Blockhash{}, errors.Wrap(err, "invalid blockhash in response")
	}

	c.mu.Lock()
	c.blockhash, c.blockhashAt = hash, time.Now()
	c.mu.Unlock()

	return hash, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value *uint64 `json:"value"`
	}
	if err := c.call(&resp, "getBalance", base58.Encode(account), CommitmentProcessed); err != nil {
		if rpcErr, ok := err.(*jsonrpc.RPCError); ok && rpcErr.Code == rpcInvalidParamsCode {
			return 0, ErrNoBalance
		}
		return 0, errors.Wrap(err, "getBalance() failed to send request")
	}
	if resp.Value == nil {
		return 0, errors.New("invalid value in response")
	}
	return *resp.Value, nil
}

// SubmitTransaction sends the signed transaction with preflight checks
// disabled. It does not wait for confirmation. A rejection that carries a
// transaction error is returned as a *TransactionError.
func (c *client) SubmitTransaction(txn Transaction, commitment Commitment) (Signature, error) {
	sig := txn.Signature()

	raw := txn.Marshal()
	if len(raw) > MaxTransactionSize {
		return sig, errors.Wrapf(ErrTransactionTooLarge, "size %d", len(raw))
	}

	config := map[string]interface{}{
		"skipPreflight":       true,
		"preflightCommitment": commitment.Commitment,
	}

	var ignored string
	err := c.call(&ignored, "sendTransaction", base58.Encode(raw), config)
	if err == nil {
		return sig, nil
	}

	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return sig, errors.Wrap(err, "sendTransaction() failed to send request")
	}

	txErr, parseErr := ParseRPCError(rpcErr)
	if parseErr != nil || txErr == nil {
		return sig, errors.Wrap(err, "sendTransaction() rejected")
	}

	c.log.WithFields(logrus.Fields{
		"signature": sig.String(),
		"error":     txErr.Error(),
	}).Debug("transaction rejected by rpc node")
	return sig, txErr
}

func (c *client) GetAccountInfo(account ed25519.PublicKey, commitment Commitment) (AccountInfo, error) {
	var resp struct {
		Value *struct {
			Lamports   uint64   `json:"lamports"`
			Owner      string   `json:"owner"`
			Data       []string `json:"data"`
			Executable bool     `json:"executable"`
		} `json:"value"`
	}

	config := map[string]string{
		"commitment": commitment.Commitment,
		"encoding":   "base64",
	}
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account), config); err != nil {
		return AccountInfo{}, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	value := resp.Value
	if value == nil {
		return AccountInfo{}, ErrNoAccountInfo
	}
	if len(value.Data) == 0 {
		return AccountInfo{}, errors.New("missing account data in response")
	}

	owner, err := PublicKeyFromBase58(value.Owner)
	if err != nil {
		return AccountInfo{}, errors.Wrap(err, "invalid owner in response")
	}
	data, err := base64.StdEncoding.DecodeString(value.Data[0])
	if err != nil {
		return AccountInfo{}, errors.Wrap(err, "invalid base64 encoded data")
	}

	return AccountInfo{
		Data:       data,
		Owner:      owner,
		Lamports:   value.Lamports,
		Executable: value.Executable,
	}, nil
}

func (c *client) RequestAirdrop(account ed25519.PublicKey, lamports uint64, commitment Commitment) (Signature, error) {
	var encoded string
	if err := c.call(&encoded, "requestAirdrop", base58.Encode(account), lamports, commitment); err != nil {
		return Signature{}, errors.Wrap(err, "requestAirdrop() failed to send request")
	}

	var sig Signature
	if err := decodeFixed(sig[:], encoded); err != nil {
		return Signature{}, errors.Wrap(err, "invalid signature in response")
	}
	if sig == (Signature{}) {
		return Signature{}, errors.New("empty signature returned")
	}
	return sig, nil
}

// GetSignatureStatus polls until the signature reaches commitment. A status
// carrying a transaction error is returned as soon as it is seen, with a nil
// error; callers must inspect ErrorResult.
func (c *client) GetSignatureStatus(sig Signature, commitment Commitment) (*SignatureStatus, error) {
	errPending := errors.New("commitment not reached")

	limit := uint(confirmedPollLimit)
	if commitment == CommitmentFinalized {
		limit = finalizedPollLimit
	}

	var status *SignatureStatus
	_, err := retry.Retry(
		func() error {
			statuses, err := c.GetSignatureStatuses([]Signature{sig})
			if err != nil {
				return err
			}

			status = statuses[0]
			switch {
			case status == nil:
				return ErrSignatureNotFound
			case status.ErrorResult != nil, status.Reached(commitment):
				return nil
			default:
				return errPending
			}
		},
		// Throttled polls only delay confirmation.
		retry.RetriableErrors(ErrSignatureNotFound, errPending, ErrRateLimited),
		retry.Limit(limit),
		retry.Backoff(backoff.Constant(c.pollRate), c.pollRate),
	)
	if err == errPending || err == ErrSignatureNotFound {
		c.log.WithFields(logrus.Fields{
			"signature":  sig.String(),
			"commitment": commitment.Commitment,
		}).Warn("gave up waiting for signature status")
		return status, errors.Wrap(ErrConfirmationTimeout, err.Error())
	}
	return status, err
}

func (c *client) GetSignatureStatuses(sigs []Signature) ([]*SignatureStatus, error) {
	encoded := make([]string, len(sigs))
	for i, sig := range sigs {
		encoded[i] = sig.String()
	}

	var resp struct {
		Value []*struct {
			Slot               uint64          `json:"slot"`
			Confirmations      *int            `json:"confirmations"`
			ConfirmationStatus string          `json:"confirmationStatus"`
			Err                json.RawMessage `json:"err"`
		} `json:"value"`
	}
	config := map[string]bool{"searchTransactionHistory": true}
	if err := c.call(&resp, "getSignatureStatuses", encoded, config); err != nil {
		return nil, errors.Wrap(err, "getSignatureStatuses() failed to send request")
	}

	statuses := make([]*SignatureStatus, len(sigs))
	for i, v := range resp.Value {
		if v == nil || i >= len(statuses) {
			continue
		}

		status := &SignatureStatus{
			Slot:               v.Slot,
			Confirmations:      v.Confirmations,
			ConfirmationStatus: v.ConfirmationStatus,
		}

		var raw interface{}
		if len(v.Err) > 0 {
			if err := json.Unmarshal(v.Err, &raw); err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
		}
		if raw != nil {
			txErr, err := ParseTransactionError(raw)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse transaction result")
			}
			status.ErrorResult = txErr
		}

		statuses[i] = status
	}

	return statuses, nil
}

// decodeFixed decodes a base58 value that must fill dst exactly.
func decodeFixed(dst []byte, encoded string) error {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return errors.Errorf("invalid size: %d (expected %d)", len(raw), len(dst))
	}
	copy(dst, raw)
	return nil
}
