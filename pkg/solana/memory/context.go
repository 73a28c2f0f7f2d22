package memory

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/system"
)

// Context is the execution state of a single transaction. Account writes are
// staged and only applied to the ledger once every instruction succeeds.
type Context struct {
	message solana.Message
	base    map[string]solana.AccountInfo
	staged  map[string]solana.AccountInfo
}

func newContext(m solana.Message, base map[string]solana.AccountInfo) *Context {
	return &Context{
		message: m,
		base:    base,
		staged:  make(map[string]solana.AccountInfo),
	}
}

// Message returns the message being executed.
func (c *Context) Message() solana.Message {
	return c.message
}

// Account returns the current state of address. Missing accounts are returned
// zero valued with ok set to false.
func (c *Context) Account(address ed25519.PublicKey) (info solana.AccountInfo, ok bool) {
	if info, ok = c.staged[string(address)]; ok {
		return cloneAccount(info), true
	}

	info, ok = c.base[string(address)]
	return cloneAccount(info), ok
}

// SetAccount stages a write to address. The account must be writable in the
// message.
func (c *Context) SetAccount(address ed25519.PublicKey, info solana.AccountInfo) error {
	if !c.IsWritable(address) {
		return instructionError(solana.InstructionErrorInvalidArgument)
	}

	c.staged[string(address)] = cloneAccount(info)
	return nil
}

// IsSigner reports whether address signed the message.
func (c *Context) IsSigner(address ed25519.PublicKey) bool {
	i := c.indexOf(address)
	return i >= 0 && i < int(c.message.Header.NumSignatures)
}

// IsWritable reports whether address is writable in the message.
func (c *Context) IsWritable(address ed25519.PublicKey) bool {
	i := c.indexOf(address)
	if i < 0 {
		return false
	}

	h := c.message.Header
	if i < int(h.NumSignatures) {
		return i < int(h.NumSignatures-h.NumReadonlySigned)
	}
	return i < len(c.message.Accounts)-int(h.NumReadOnly)
}

// CreateAccount allocates size zeroed bytes at address owned by owner, funded
// with lamports from funder.
func (c *Context) CreateAccount(funder, address, owner ed25519.PublicKey, lamports, size uint64) error {
	existing, _ := c.Account(address)
	if existing.Lamports > 0 || len(existing.Data) > 0 {
		return system.ErrorAccountAlreadyInUse
	}

	source, _ := c.Account(funder)
	if source.Lamports < lamports {
		return system.ErrorResultWithNegativeLamports
	}
	source.Lamports -= lamports

	if err := c.SetAccount(funder, source); err != nil {
		return err
	}

	return c.SetAccount(address, solana.AccountInfo{
		Data:     make([]byte, size),
		Owner:    owner,
		Lamports: lamports,
	})
}

func (c *Context) indexOf(address ed25519.PublicKey) int {
	for i, a := range c.message.Accounts {
		if bytes.Equal(a, address) {
			return i
		}
	}
	return -1
}

func (c *Context) commit(dst map[string]solana.AccountInfo) {
	for k, v := range c.staged {
		dst[k] = v
	}
}

func instructionError(key solana.InstructionErrorKey) error {
	return errors.New(string(key))
}
