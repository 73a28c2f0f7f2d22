package flow

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/code-echo/pkg/netutil"
	"github.com/code-payments/code-echo/pkg/solana"
)

const (
	// MintDecimals is the precision of the mint created by the vending machine
	// flow.
	MintDecimals = 8

	lamportsPerSol = 1_000_000_000
)

// Config is the runtime configuration shared by both flows.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// SolanaRPCEndpoint overrides the flow's default cluster.
	SolanaRPCEndpoint string `mapstructure:"solana_rpc_endpoint"`

	// RPCTimeout bounds each HTTP request to the RPC node.
	RPCTimeout time.Duration `mapstructure:"rpc_timeout"`

	// RPCRateLimit is the number of requests per second allowed per RPC method.
	// Zero disables client side limiting.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	AirdropLamports   uint64 `mapstructure:"airdrop_lamports"`
	AirdropCommitment string `mapstructure:"airdrop_commitment"`

	// Commitment is awaited for every submitted transaction.
	Commitment string `mapstructure:"commitment"`

	// MintAmount is the number of base units minted to the payer in the
	// vending machine flow.
	MintAmount uint64 `mapstructure:"mint_amount"`
}

// DefaultConfig returns the defaults for kind: a local validator for the
// authority flow and devnet for the vending machine flow.
func DefaultConfig(kind Kind) Config {
	config := Config{
		LogLevel:          "warn",
		LogFormat:         "text",
		SolanaRPCEndpoint: string(kind.DefaultEndpoint()),
		RPCTimeout:        30 * time.Second,
		AirdropLamports:   2 * lamportsPerSol,
		AirdropCommitment: solana.CommitmentConfirmed.Commitment,
		Commitment:        solana.CommitmentConfirmed.Commitment,
		MintAmount:        1_000_000_000,
	}

	if kind == KindVendingMachine {
		config.AirdropCommitment = solana.CommitmentFinalized.Commitment
	}

	return config
}

var envBindings = map[string]string{
	"log_level":           "LOG_LEVEL",
	"log_format":          "LOG_FORMAT",
	"solana_rpc_endpoint": "SOLANA_RPC_ENDPOINT",
	"rpc_timeout":         "RPC_TIMEOUT",
	"rpc_rate_limit":      "RPC_RATE_LIMIT",
	"airdrop_lamports":    "AIRDROP_LAMPORTS",
	"airdrop_commitment":  "AIRDROP_COMMITMENT",
	"commitment":          "COMMITMENT",
	"mint_amount":         "MINT_AMOUNT",
}

// LoadConfig layers the config file at path, if it exists, and the
// environment over the flow's defaults.
func LoadConfig(path string, kind Kind) (*Config, error) {
	v := viper.New()
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we check beforehand.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
	}

	err := v.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return nil, tag(ErrInvalidArgument, errors.Wrap(err, "error loading config file"))
	}

	config := DefaultConfig(kind)
	if err := v.Unmarshal(&config); err != nil {
		return nil, tag(ErrInvalidArgument, errors.Wrap(err, "error unmarshalling config"))
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values that cannot be caught by decoding alone.
func (c *Config) Validate() error {
	if err := netutil.ValidateHttpUrl(c.SolanaRPCEndpoint, false); err != nil {
		return tag(ErrInvalidArgument, errors.Wrapf(err, "invalid solana_rpc_endpoint %q", c.SolanaRPCEndpoint))
	}
	if _, err := solana.CommitmentFromString(c.Commitment); err != nil {
		return tag(ErrInvalidArgument, errors.Wrap(err, "invalid commitment"))
	}
	if _, err := solana.CommitmentFromString(c.AirdropCommitment); err != nil {
		return tag(ErrInvalidArgument, errors.Wrap(err, "invalid airdrop_commitment"))
	}
	if c.RPCRateLimit < 0 {
		return tag(ErrInvalidArgument, errors.New("rpc_rate_limit must not be negative"))
	}
	return nil
}

func (c *Config) commitment() solana.Commitment {
	commitment, _ := solana.CommitmentFromString(c.Commitment)
	return commitment
}

func (c *Config) airdropCommitment() solana.Commitment {
	commitment, _ := solana.CommitmentFromString(c.AirdropCommitment)
	return commitment
}
