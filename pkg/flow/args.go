package flow

import (
	"crypto/ed25519"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/echo"
)

// Args are the positional arguments shared by both flows.
type Args struct {
	Program ed25519.PublicKey
	Text    string

	// Value is the buffer seed for the authority flow and the price for the
	// vending machine flow.
	Value uint64
}

// ParseArgs parses <program-address> <echo-text> <integer>. It performs no I/O.
func ParseArgs(args []string) (*Args, error) {
	if len(args) != 3 {
		return nil, tag(ErrInvalidArgument, errors.Errorf("expected 3 arguments, got %d", len(args)))
	}

	program, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return nil, tag(ErrInvalidArgument, errors.Wrap(err, "invalid program address"))
	}

	text := args[1]
	if err := echo.CheckEchoLength(uint64(len(text))); err != nil {
		return nil, tag(ErrEncodingOverflow, errors.Wrapf(err, "echo text of %d bytes", len(text)))
	}

	value, err := parseUint64(args[2])
	if err != nil {
		return nil, err
	}

	return &Args{
		Program: program,
		Text:    text,
		Value:   value,
	}, nil
}

func parseUint64(s string) (uint64, error) {
	// ParseUint accepts a leading '+', which is not a plain decimal.
	if strings.HasPrefix(s, "+") {
		return 0, tag(ErrInvalidArgument, errors.Errorf("invalid integer %q", s))
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err == nil {
		return v, nil
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		return 0, tag(ErrEncodingOverflow, errors.Wrapf(err, "integer %q exceeds 8 bytes", s))
	}
	return 0, tag(ErrInvalidArgument, errors.Wrapf(err, "invalid integer %q", s))
}
