package cli

import (
	"bytes"
	"crypto/ed25519"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/flow"
	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/solana/memory"
	"github.com/code-payments/code-echo/pkg/testutil"
)

type testEnv struct {
	client  *memory.Client
	program ed25519.PublicKey
	created int
}

func setup(t *testing.T) *testEnv {
	testutil.QuietLogging(t)

	env := &testEnv{
		client:  memory.New(),
		program: testutil.GenerateSolanaKeys(t, 1)[0],
	}
	env.client.RegisterProgram(env.program, memory.ProcessEcho)
	return env
}

func (e *testEnv) execute(t *testing.T, kind flow.Kind, args ...string) (string, string, error) {
	cmd := newCommand(kind, func(*flow.Config) solana.Client {
		e.created++
		return e.client
	})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCommand_Authority(t *testing.T) {
	env := setup(t)

	stdout, _, err := env.execute(t, flow.KindAuthority, base58.Encode(env.program), "ping", "7")
	require.NoError(t, err)
	assert.Contains(t, stdout, "authorized_buffer data: ping\n")
	assert.True(t, strings.HasSuffix(stdout, "Success\n"))
}

func TestCommand_VendingMachine(t *testing.T) {
	env := setup(t)

	stdout, _, err := env.execute(t, flow.KindVendingMachine, base58.Encode(env.program), "hello", "42")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://explorer.solana.com/tx/")
	assert.Contains(t, stdout, "vendingMachineBuffer data: hello\n")
}

func TestCommand_InvalidAddress(t *testing.T) {
	env := setup(t)

	_, stderr, err := env.execute(t, flow.KindAuthority, "not-a-key!", "ping", "7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, flow.ErrInvalidArgument))
	assert.Contains(t, stderr, "invalid program address")

	assert.Zero(t, env.created)
	assert.Empty(t, env.client.Requests())
}

func TestCommand_ArgCount(t *testing.T) {
	env := setup(t)

	_, _, err := env.execute(t, flow.KindVendingMachine, base58.Encode(env.program), "hello")
	require.Error(t, err)
	assert.Zero(t, env.created)
}

func TestCommand_SubmissionRejected(t *testing.T) {
	env := setup(t)

	// Nothing is deployed at this address.
	program := testutil.GenerateSolanaKeys(t, 1)[0]

	stdout, stderr, err := env.execute(t, flow.KindAuthority, base58.Encode(program), "ping", "7")
	require.Error(t, err)
	assert.True(t, errors.Is(err, flow.ErrSubmissionRejected))
	assert.NotContains(t, stdout, "Success")

	// One report per failure.
	assert.Equal(t, 1, strings.Count(stderr, err.Error()), stderr)
	assert.NotContains(t, stderr, "echo flow failed")
}

func TestConfigureLogger(t *testing.T) {
	testutil.QuietLogging(t)

	var buf bytes.Buffer
	configureLogger(&flow.Config{LogLevel: "DEBUG", LogFormat: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.WithField("key", "value").Debug("hello")
	assert.Contains(t, buf.String(), `"key":"value"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	configureLogger(&flow.Config{LogLevel: "loud", LogFormat: "text"}, &buf)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	logrus.Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestNewRPCClient(t *testing.T) {
	config := flow.DefaultConfig(flow.KindAuthority)
	assert.NotNil(t, newRPCClient(&config))

	config.RPCRateLimit = 5
	assert.NotNil(t, newRPCClient(&config))
}
