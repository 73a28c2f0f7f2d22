package token

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTokenAccount is returned for accounts that exist but are not
	// initialized token accounts of the client's mint.
	ErrInvalidTokenAccount = errors.New("invalid token account")
	ErrInvalidMint         = errors.New("invalid mint")
)

// Client reads mint and token account state for a single mint.
type Client struct {
	sc   solana.Client
	mint ed25519.PublicKey
}

func NewClient(sc solana.Client, mint ed25519.PublicKey) *Client {
	return &Client{sc: sc, mint: mint}
}

func (c *Client) Token() ed25519.PublicKey {
	return c.mint
}

// GetMint returns the mint's state. Anything other than an initialized,
// token program owned mint is ErrInvalidMint.
func (c *Client) GetMint(commitment solana.Commitment) (*Mint, error) {
	data, err := c.load(c.mint, commitment)
	if err != nil {
		return nil, err
	}

	var mint Mint
	if data == nil || !mint.Unmarshal(data) || !mint.IsInitialized {
		return nil, ErrInvalidMint
	}
	return &mint, nil
}

// GetAccount returns the token account at address, which must belong to the
// client's mint.
func (c *Client) GetAccount(address ed25519.PublicKey, commitment solana.Commitment) (*Account, error) {
	data, err := c.load(address, commitment)
	if err != nil {
		return nil, err
	}

	var account Account
	if data == nil || !account.Unmarshal(data) || !bytes.Equal(account.Mint, c.mint) {
		return nil, ErrInvalidTokenAccount
	}
	return &account, nil
}

// load returns the account data, or nil data if the token program does not
// own the account.
func (c *Client) load(address ed25519.PublicKey, commitment solana.Commitment) ([]byte, error) {
	info, err := c.sc.GetAccountInfo(address, commitment)
	switch {
	case errors.Is(err, solana.ErrNoAccountInfo):
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, errors.Wrap(err, "failed to get account info")
	case !bytes.Equal(info.Owner, ProgramKey):
		return nil, nil
	}
	return info.Data, nil
}
