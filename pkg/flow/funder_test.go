package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-echo/pkg/solana"
	"github.com/code-payments/code-echo/pkg/testutil"
)

const faucetLimitMessage = "You've either reached your airdrop limit today or the airdrop faucet has run dry."

// Public faucets answer with an HTTP 429 that still carries a JSON-RPC error.
func TestFunder_AirdropRateLimitedByFaucet(t *testing.T) {
	testutil.QuietLogging(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var req struct {
			ID     int    `json:"id"`
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "requestAirdrop", req.Method)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": 429, "message": faucetLimitMessage},
		}))
	}))
	t.Cleanup(server.Close)

	sc := solana.New(server.URL)
	funder := NewFunder(sc, NewSubmitter(sc, solana.CommitmentConfirmed), 2_000_000_000, solana.CommitmentConfirmed)

	_, err := funder.Airdrop(context.Background(), testutil.GenerateSolanaKeys(t, 1)[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFunds), err.Error())
	assert.False(t, errors.Is(err, ErrNetwork))
	assert.Contains(t, err.Error(), faucetLimitMessage)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}
