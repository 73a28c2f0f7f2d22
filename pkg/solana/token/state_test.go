package token

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledKey(v byte) ed25519.PublicKey {
	return bytes.Repeat([]byte{v}, ed25519.PublicKeySize)
}

// A mainnet token account with no delegate or close authority.
func TestAccount_MainnetVector(t *testing.T) {
	data, err := hex.DecodeString("118a08c9d4cc46c576282e0daf050bbdb04f03313e35e5db3f3def69fa1eeec42b15a9cd4bef2cd809e464570d2a6cbd9bcc64e32ea4ebbcf748757bbb3dd5bd000084e2506ce67c000000000000000000000000000000000000000000000000000000000000000000000000010000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)

	var a Account
	require.True(t, a.Unmarshal(data))
	assert.Equal(t, "2BU1Xgyzqixhjaq9Pa5cNsaa1gSejLeNtDaDRv29qoZm", base58.Encode(a.Mint))
	assert.Equal(t, uint64(9e18), a.Amount)
	assert.Equal(t, AccountStateInitialized, a.State)
	assert.Nil(t, a.Delegate)
	assert.Nil(t, a.IsNative)
	assert.Nil(t, a.CloseAuthority)

	assert.Equal(t, data, a.Marshal())
}

func TestAccount_Layout(t *testing.T) {
	native := uint64(2_039_280)
	a := Account{
		Mint:            filledKey(1),
		Owner:           filledKey(2),
		Amount:          1_000_000_000,
		Delegate:        filledKey(3),
		State:           AccountStateFrozen,
		IsNative:        &native,
		DelegatedAmount: 7,
		CloseAuthority:  filledKey(4),
	}

	b := a.Marshal()
	require.Len(t, b, AccountSize)
	assert.Equal(t, []byte(filledKey(1)), b[0:32])
	assert.Equal(t, []byte(filledKey(2)), b[32:64])
	assert.EqualValues(t, 1_000_000_000, binary.LittleEndian.Uint64(b[64:]))
	assert.EqualValues(t, 1, binary.LittleEndian.Uint32(b[72:]))
	assert.Equal(t, byte(AccountStateFrozen), b[108])
	assert.EqualValues(t, 1, binary.LittleEndian.Uint32(b[109:]))
	assert.EqualValues(t, native, binary.LittleEndian.Uint64(b[113:]))
	assert.EqualValues(t, 7, binary.LittleEndian.Uint64(b[121:]))
	assert.EqualValues(t, 1, binary.LittleEndian.Uint32(b[129:]))

	// Decoding resets previously held optional fields.
	stale := Account{Delegate: filledKey(9)}
	require.True(t, stale.Unmarshal((&Account{Mint: filledKey(1), Owner: filledKey(2)}).Marshal()))
	assert.Nil(t, stale.Delegate)

	var decoded Account
	require.True(t, decoded.Unmarshal(b))
	assert.Equal(t, a, decoded)
	assert.False(t, decoded.Unmarshal(b[:AccountSize-1]))
}

func TestMint_Layout(t *testing.T) {
	m := Mint{
		MintAuthority:   filledKey(4),
		Supply:          1_000_000_000,
		Decimals:        8,
		IsInitialized:   true,
		FreezeAuthority: filledKey(5),
	}

	b := m.Marshal()
	require.Len(t, b, MintSize)
	assert.EqualValues(t, 1, binary.LittleEndian.Uint32(b))
	assert.EqualValues(t, 1_000_000_000, binary.LittleEndian.Uint64(b[36:]))
	assert.EqualValues(t, 8, b[44])
	assert.EqualValues(t, 1, b[45])
	assert.Equal(t, []byte(filledKey(5)), b[50:82])

	var decoded Mint
	require.True(t, decoded.Unmarshal(b))
	assert.Equal(t, m, decoded)

	fixed := Mint{Supply: 5, IsInitialized: true}
	require.True(t, decoded.Unmarshal(fixed.Marshal()))
	assert.Nil(t, decoded.MintAuthority)
	assert.Nil(t, decoded.FreezeAuthority)

	assert.False(t, decoded.Unmarshal(make([]byte, MintSize-1)))
}
