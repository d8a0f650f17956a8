// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package adr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x0123456789012345678901234567890123456789")
	require.NoError(t, err)
	assert.Equal(t, "0x0123456789012345678901234567890123456789", addr.String())

	// the 0x prefix is optional
	bare, err := ParseAddress("0123456789012345678901234567890123456789")
	require.NoError(t, err)
	assert.Equal(t, *addr, *bare)

	for _, s := range []string{
		"",
		"0x",
		"0x012345678901234567890123456789012345678",
		"zz0123456789012345678901234567890123456789",
		"0xzz23456789012345678901234567890123456789",
	} {
		_, err := ParseAddress(s)
		assert.Error(t, err, s)
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, Address{}.IsZero())
	assert.False(t, DeriveAddress("x").IsZero())
}

func TestBytesToAddress(t *testing.T) {
	// short input is left-padded
	addr := BytesToAddress([]byte{1})
	assert.Equal(t, "0x0000000000000000000000000000000000000001", addr.String())

	// long input is cropped from the left
	long := make([]byte, 32)
	long[31] = 2
	assert.Equal(t, "0x0000000000000000000000000000000000000002", BytesToAddress(long).String())
}

func TestDeriveAddress(t *testing.T) {
	a := DeriveAddress("stake-authority")
	b := DeriveAddress("stake-authority")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DeriveAddress("something-else"))
}

func TestAddressJSON(t *testing.T) {
	addr := MustParseAddress("0x0123456789012345678901234567890123456789")

	raw, err := json.Marshal(addr)
	require.NoError(t, err)
	assert.Equal(t, `"0x0123456789012345678901234567890123456789"`, string(raw))

	var decoded Address
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, addr, decoded)

	assert.Error(t, json.Unmarshal([]byte(`123`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`"0x12"`), &decoded))
}
