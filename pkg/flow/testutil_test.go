package flow

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana/memory"
	"github.com/code-payments/code-echo/pkg/testutil"
)

type testEnv struct {
	client  *memory.Client
	program ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		client:  memory.New(),
		program: testutil.GenerateSolanaKeys(t, 1)[0],
	}
	env.client.RegisterProgram(env.program, memory.ProcessEcho)
	return env
}

func (e *testEnv) args(t *testing.T, text, value string) *Args {
	args, err := ParseArgs([]string{base58.Encode(e.program), text, value})
	require.NoError(t, err)
	return args
}

func testConfig(kind Kind) *Config {
	config := DefaultConfig(kind)
	return &config
}
