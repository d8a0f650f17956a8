// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package client

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/api"
	"github.com/adranet/adrd/cert"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/eventdb"
	"github.com/adranet/adrd/lvldb"
	"github.com/adranet/adrd/staking"
	"github.com/adranet/adrd/token"
)

var (
	admin   = adr.DeriveAddress("client-test-admin")
	alice   = adr.DeriveAddress("client-test-alice")
	mint    = adr.DeriveAddress("client-test-token")
	reserve = adr.DeriveAddress("client-test-reserve")
)

func newTestClient(t *testing.T) (*Client, *uint64) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	now := uint64(1_000_000)
	engine := staking.NewEngine(db, staking.MinuteSchedule(), events, func() uint64 { return now })
	tokens := token.NewService(db, engine.Locker())
	certs := cert.NewLedger(db, events, nil, engine.Locker())

	require.NoError(t, engine.Initialize(admin))
	require.NoError(t, tokens.Mint(mint, admin, 10_000_000))
	require.NoError(t, tokens.Mint(mint, alice, 1_000_000))
	require.NoError(t, certs.InitializeCollection(admin, "ADR Certs", "ADR", "https://example.org/c"))

	srv := httptest.NewServer(api.New(engine, certs, tokens, events, api.Options{AllowedOrigins: "*"}))
	t.Cleanup(srv.Close)
	return New(srv.URL), &now
}

func TestClientRoundTrip(t *testing.T) {
	c, now := newTestClient(t)

	// admin bring-up through the client
	_, err := c.SetPaymentToken(admin, mint)
	require.NoError(t, err)
	_, err = c.SetRewardReserve(admin, reserve)
	require.NoError(t, err)
	_, err = c.DepositRewardReserve(admin, 5_000_000)
	require.NoError(t, err)
	cfg, err := c.Configure(admin, true, 1000)
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, uint64(1000), cfg.RewardRate)

	summary, err := c.Stake(alice, 1_000_000, 5)
	require.NoError(t, err)
	assert.True(t, summary.IsStaking)
	assert.Equal(t, uint64(120_000), summary.EstimatedReward)

	// coded failures survive the wire
	_, err = c.Unstake(alice)
	assert.True(t, errs.HasCode(err, errs.StakingPeriodNotCompleted))

	*now += 5 * 60
	summary, err = c.Unstake(alice)
	require.NoError(t, err)
	assert.True(t, summary.Claimed)

	account, err := c.GetAccount(mint, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_120_000), account.Balance)

	events, err := c.Events(&EventsQuery{Type: staking.EventUnstake, Actor: &alice})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(120_000), events[0].Reward)
}

func TestClientTokenAndCerts(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.SetPaymentToken(admin, mint)
	require.NoError(t, err)

	account, err := c.Transfer(mint, alice, admin, 300)
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_300), account.Balance)

	allowance, err := c.Approve(mint, alice, admin, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), allowance)

	_, err = c.TransferFrom(mint, alice, admin, admin, 600)
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	crt, err := c.MintCertificate(alice, "Cert #0", "ADR", "https://example.org/0", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), crt.ID)

	got, err := c.GetCertificate(0)
	require.NoError(t, err)
	assert.Equal(t, "Cert #0", got.Name)

	col, err := c.GetCollection()
	require.NoError(t, err)
	assert.Equal(t, "ADR Certs", col.Name)
	assert.Equal(t, uint64(1), col.Count)

	_, err = c.GetCertificate(42)
	assert.True(t, errs.HasCode(err, errs.NotFound))
}

func TestClientAdminGate(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Configure(alice, true, 1000)
	assert.True(t, errs.HasCode(err, errs.Unauthorized))

	_, err = c.TransferAdmin(admin, alice)
	require.NoError(t, err)

	cfg, err := c.Configure(alice, true, 500)
	require.NoError(t, err)
	assert.Equal(t, alice, cfg.Admin)
}
