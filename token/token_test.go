// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/lvldb"
	"github.com/adranet/adrd/state"
)

var (
	mint  = adr.DeriveAddress("token-test-mint")
	owner = adr.DeriveAddress("token-test-owner")
	other = adr.DeriveAddress("token-test-other")
)

func newTestToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(state.New(db))
}

func TestMintAndBalances(t *testing.T) {
	tok := newTestToken(t)

	bal, err := tok.Balance(mint, owner)
	require.NoError(t, err)
	assert.Zero(t, bal)

	require.NoError(t, tok.Mint(mint, owner, 1000))
	require.NoError(t, tok.Mint(mint, other, 500))

	bal, _ = tok.Balance(mint, owner)
	assert.Equal(t, uint64(1000), bal)
	supply, _ := tok.TotalSupply(mint)
	assert.Equal(t, uint64(1500), supply)

	// supply overflow is rejected
	err = tok.Mint(mint, owner, math.MaxUint64)
	assert.True(t, errs.HasCode(err, errs.MathOverflow))
}

func TestTransfer(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(mint, owner, 1000))

	err := tok.Transfer(mint, owner, other, 300, NewAuthority(other))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	require.NoError(t, tok.Transfer(mint, owner, other, 300, NewAuthority(owner)))
	bal, _ := tok.Balance(mint, owner)
	assert.Equal(t, uint64(700), bal)
	bal, _ = tok.Balance(mint, other)
	assert.Equal(t, uint64(300), bal)

	err = tok.Transfer(mint, owner, other, 701, NewAuthority(owner))
	assert.True(t, errs.HasCode(err, errs.InsufficientFunds))
}

func TestBurn(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(mint, owner, 1000))

	err := tok.Burn(mint, owner, 100, NewAuthority(other))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	require.NoError(t, tok.Burn(mint, owner, 100, NewAuthority(owner)))

	bal, _ := tok.Balance(mint, owner)
	assert.Equal(t, uint64(900), bal)
	supply, _ := tok.TotalSupply(mint)
	assert.Equal(t, uint64(900), supply)
	burned, _ := tok.TotalBurned(mint)
	assert.Equal(t, uint64(100), burned)

	err = tok.Burn(mint, owner, 901, NewAuthority(owner))
	assert.True(t, errs.HasCode(err, errs.InsufficientFunds))
}

func TestAllowances(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(mint, owner, 1000))

	err := tok.Approve(mint, owner, other, 400, NewAuthority(other))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	require.NoError(t, tok.Approve(mint, owner, other, 400, NewAuthority(owner)))
	allowance, _ := tok.Allowance(mint, owner, other)
	assert.Equal(t, uint64(400), allowance)

	err = tok.TransferFrom(mint, owner, other, other, 401)
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	require.NoError(t, tok.TransferFrom(mint, owner, other, other, 150))
	allowance, _ = tok.Allowance(mint, owner, other)
	assert.Equal(t, uint64(250), allowance)
	bal, _ := tok.Balance(mint, other)
	assert.Equal(t, uint64(150), bal)

	// re-approval overwrites rather than accumulates
	require.NoError(t, tok.Approve(mint, owner, other, 10, NewAuthority(owner)))
	allowance, _ = tok.Allowance(mint, owner, other)
	assert.Equal(t, uint64(10), allowance)
}

func TestGuardedAccounts(t *testing.T) {
	tok := newTestToken(t)
	vaultAcc := adr.DeriveAddress("token-test-vault")
	require.NoError(t, tok.Mint(mint, vaultAcc, 1000))
	require.NoError(t, tok.Guard(vaultAcc))

	guarded, err := tok.Guarded(vaultAcc)
	require.NoError(t, err)
	assert.True(t, guarded)

	// plain holder authorities cannot move, burn, or delegate guarded funds
	err = tok.Transfer(mint, vaultAcc, other, 100, NewAuthority(vaultAcc))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))
	err = tok.Burn(mint, vaultAcc, 100, NewAuthority(vaultAcc))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))
	err = tok.Approve(mint, vaultAcc, other, 100, NewAuthority(vaultAcc))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))
	err = tok.TransferFrom(mint, vaultAcc, other, other, 100)
	assert.True(t, errs.HasCode(err, errs.Unauthorized))
	bal, _ := tok.Balance(mint, vaultAcc)
	assert.Equal(t, uint64(1000), bal)

	// the vault authority still must match the account it moves from
	err = tok.Transfer(mint, vaultAcc, other, 100, NewVaultAuthority(other))
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	require.NoError(t, tok.Transfer(mint, vaultAcc, other, 100, NewVaultAuthority(vaultAcc)))
	bal, _ = tok.Balance(mint, vaultAcc)
	assert.Equal(t, uint64(900), bal)

	// inbound transfers are unaffected
	require.NoError(t, tok.Mint(mint, owner, 50))
	require.NoError(t, tok.Transfer(mint, owner, vaultAcc, 50, NewAuthority(owner)))

	tok.Unguard(vaultAcc)
	require.NoError(t, tok.Transfer(mint, vaultAcc, other, 100, NewAuthority(vaultAcc)))
}

func TestMintsAreIsolated(t *testing.T) {
	tok := newTestToken(t)
	otherMint := adr.DeriveAddress("token-test-other-mint")

	require.NoError(t, tok.Mint(mint, owner, 1000))
	require.NoError(t, tok.Mint(otherMint, owner, 7))

	bal, _ := tok.Balance(mint, owner)
	assert.Equal(t, uint64(1000), bal)
	bal, _ = tok.Balance(otherMint, owner)
	assert.Equal(t, uint64(7), bal)
	supply, _ := tok.TotalSupply(otherMint)
	assert.Equal(t, uint64(7), supply)
}

func TestServiceCommits(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, nil)
	require.NoError(t, svc.Mint(mint, owner, 1000))
	require.NoError(t, svc.Transfer(mint, owner, other, 250))
	require.NoError(t, svc.Approve(mint, owner, other, 100))
	require.NoError(t, svc.TransferFrom(mint, owner, other, other, 100))

	// a fresh overlay over the same store sees the committed writes
	tok := New(state.New(db))
	bal, _ := tok.Balance(mint, other)
	assert.Equal(t, uint64(350), bal)
	allowance, _ := tok.Allowance(mint, owner, other)
	assert.Zero(t, allowance)

	// a failed operation leaves the committed state untouched
	err = svc.Transfer(mint, owner, other, 10_000)
	assert.True(t, errs.HasCode(err, errs.InsufficientFunds))
	bal, _ = tok.Balance(mint, owner)
	assert.Equal(t, uint64(650), bal)
}
