package flow

import (
	"github.com/code-payments/code-echo/pkg/solana"
)

// Kind selects which of the two echo flows a Runner executes.
type Kind int

const (
	KindAuthority Kind = iota
	KindVendingMachine
)

func (k Kind) String() string {
	switch k {
	case KindAuthority:
		return "authority"
	case KindVendingMachine:
		return "vending_machine"
	}
	return "unknown"
}

// BufferLabel is the name the buffer is reported under once read back.
func (k Kind) BufferLabel() string {
	if k == KindVendingMachine {
		return "vendingMachineBuffer"
	}
	return "authorized_buffer"
}

// ValueName names the integer argument.
func (k Kind) ValueName() string {
	if k == KindVendingMachine {
		return "price"
	}
	return "seed"
}

// DefaultEndpoint is the cluster each flow targets unless configured
// otherwise.
func (k Kind) DefaultEndpoint() solana.Environment {
	if k == KindVendingMachine {
		return solana.EnvironmentDev
	}
	return solana.EnvironmentLocal
}
