package solana

import (
	"fmt"
	"net/url"
	"strings"
)

type Environment string

const (
	EnvironmentLocal Environment = "http://127.0.0.1:8899"
	EnvironmentDev   Environment = "https://api.devnet.solana.com"
	EnvironmentTest  Environment = "https://api.testnet.solana.com"
	EnvironmentProd  Environment = "https://api.mainnet-beta.solana.com"
)

// Cluster returns the explorer cluster name for well known environments, and
// "custom" for everything else.
func (e Environment) Cluster() string {
	switch Environment(strings.TrimSuffix(string(e), "/")) {
	case EnvironmentDev:
		return "devnet"
	case EnvironmentTest:
		return "testnet"
	case EnvironmentProd:
		return "mainnet-beta"
	}
	return "custom"
}

// ExplorerURL returns a link to the transaction on the Solana explorer.
func ExplorerURL(sig Signature, env Environment) string {
	switch env.Cluster() {
	case "mainnet-beta":
		return fmt.Sprintf("https://explorer.solana.com/tx/%s", sig)
	case "custom":
		return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=custom&customUrl=%s", sig, url.QueryEscape(string(env)))
	default:
		return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=%s", sig, env.Cluster())
	}
}
