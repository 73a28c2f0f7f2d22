package flow

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), KindAuthority)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(KindAuthority), *config)
	assert.Equal(t, string(solana.EnvironmentLocal), config.SolanaRPCEndpoint)
	assert.EqualValues(t, 2_000_000_000, config.AirdropLamports)
	assert.Equal(t, "confirmed", config.AirdropCommitment)

	config, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), KindVendingMachine)
	require.NoError(t, err)
	assert.Equal(t, string(solana.EnvironmentDev), config.SolanaRPCEndpoint)
	assert.EqualValues(t, 2_000_000_000, config.AirdropLamports)
	assert.Equal(t, "finalized", config.AirdropCommitment)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
solana_rpc_endpoint: http://localhost:9000
rpc_timeout: 5s
rpc_rate_limit: 2.5
commitment: finalized
`), 0o600))

	config, err := LoadConfig(path, KindAuthority)
	require.NoError(t, err)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "http://localhost:9000", config.SolanaRPCEndpoint)
	assert.Equal(t, 5*time.Second, config.RPCTimeout)
	assert.Equal(t, 2.5, config.RPCRateLimit)
	assert.Equal(t, "finalized", config.Commitment)
	assert.Equal(t, "confirmed", config.AirdropCommitment)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SOLANA_RPC_ENDPOINT", "http://localhost:7000")
	t.Setenv("AIRDROP_LAMPORTS", "5")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), KindVendingMachine)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7000", config.SolanaRPCEndpoint)
	assert.EqualValues(t, 5, config.AirdropLamports)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commitment: eventually\n"), 0o600))

	_, err := LoadConfig(path, KindAuthority)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	require.NoError(t, os.WriteFile(path, []byte("solana_rpc_endpoint: api.devnet.solana.com\n"), 0o600))
	_, err = LoadConfig(path, KindAuthority)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	require.NoError(t, os.WriteFile(path, []byte("commitment: [\n"), 0o600))
	_, err = LoadConfig(path, KindAuthority)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
