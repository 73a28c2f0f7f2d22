// Package cli provides the command line surface shared by the echo binaries.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ybbus/jsonrpc"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/code-echo/pkg/flow"
	"github.com/code-payments/code-echo/pkg/rate"
	"github.com/code-payments/code-echo/pkg/solana"
)

// Public faucets allow very few airdrops per client.
const airdropRateLimit = 1

type clientFactory func(config *flow.Config) solana.Client

// Execute runs the command for kind and exits non-zero on failure.
func Execute(kind flow.Kind) {
	if err := NewCommand(kind).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// NewCommand returns the root command for kind, talking to the configured RPC
// endpoint.
func NewCommand(kind flow.Kind) *cobra.Command {
	return newCommand(kind, newRPCClient)
}

func newCommand(kind flow.Kind, newClient clientFactory) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <program-address> <echo-text> <%s-integer>", commandName(kind), kind.ValueName()),
		Short: fmt.Sprintf("Write text into a %s echo buffer and read it back", strings.ReplaceAll(kind.String(), "_", " ")),
		Args:  cobra.ExactArgs(3),

		SilenceUsage: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flow.LoadConfig(configPath, kind)
			if err != nil {
				return err
			}
			configureLogger(config, cmd.ErrOrStderr())

			log := logrus.StandardLogger().WithFields(logrus.Fields{
				"type":     "flow/cli",
				"flow":     kind.String(),
				"endpoint": config.SolanaRPCEndpoint,
			})

			// Arguments are validated before a client exists, so bad input never
			// reaches the network.
			parsed, err := flow.ParseArgs(args)
			if err != nil {
				return err
			}

			runner, err := flow.NewRunner(kind, newClient(config), config, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// cobra reports the returned error on stderr.
			if _, err := runner.Run(ctx, parsed); err != nil {
				log.WithError(err).WithField("state", runner.State().String()).Debug("echo flow failed")
				return err
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")

	return cmd
}

func commandName(kind flow.Kind) string {
	if kind == flow.KindVendingMachine {
		return "vending-machine-echo"
	}
	return "authority-echo"
}

func newRPCClient(config *flow.Config) solana.Client {
	var limiter rate.Limiter = &rate.NoLimiter{}
	if config.RPCRateLimit > 0 {
		limiter = rate.NewLocalRateLimiter(
			xrate.Limit(config.RPCRateLimit),
			map[string]xrate.Limit{
				"requestAirdrop": airdropRateLimit,
			},
		)
	}

	return solana.NewWithRPCOptions(
		config.SolanaRPCEndpoint,
		&jsonrpc.RPCClientOpts{
			HTTPClient: &http.Client{Timeout: config.RPCTimeout},
		},
		solana.WithLimiter(limiter),
	)
}

func configureLogger(config *flow.Config, out io.Writer) {
	switch strings.ToLower(config.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	logrus.SetOutput(out)
}
