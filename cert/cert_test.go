// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/lvldb"
	"github.com/adranet/adrd/staking"
	"github.com/adranet/adrd/token"
)

var (
	admin = adr.DeriveAddress("cert-test-admin")
	payer = adr.DeriveAddress("cert-test-payer")
	mint  = adr.DeriveAddress("cert-test-token")
)

type testEnv struct {
	engine *staking.Engine
	ledger *Ledger
	tokens *token.Service
	events []*staking.Event
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &testEnv{}
	sink := staking.SinkFunc(func(ev *staking.Event) error {
		env.events = append(env.events, ev)
		return nil
	})
	env.engine = staking.NewEngine(db, staking.MinuteSchedule(), nil, nil)
	env.ledger = NewLedger(db, sink, func() uint64 { return 42 }, env.engine.Locker())
	env.tokens = token.NewService(db, env.engine.Locker())

	require.NoError(t, env.engine.Initialize(admin))
	require.NoError(t, env.engine.SetPaymentToken(admin, mint))
	require.NoError(t, env.tokens.Mint(mint, payer, 1_000))
	return env
}

func TestInitializeCollection(t *testing.T) {
	env := newTestEnv(t)

	err := env.ledger.InitializeCollection(admin, "", "ADR", "https://example.org/c")
	assert.True(t, errs.HasCode(err, errs.InvalidInput))

	require.NoError(t, env.ledger.InitializeCollection(admin, "ADR Certs", "ADR", "https://example.org/c"))

	col, err := env.ledger.Collection()
	require.NoError(t, err)
	assert.Equal(t, admin, col.Authority)
	assert.Equal(t, "ADR Certs", col.Name)

	count, err := env.ledger.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	err = env.ledger.InitializeCollection(admin, "Again", "X", "y")
	assert.True(t, errs.HasCode(err, errs.AlreadyInitialized))
}

func TestMintWithPayment(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ledger.InitializeCollection(admin, "ADR Certs", "ADR", "https://example.org/c"))

	crt, err := env.ledger.MintWithPayment(payer, "Cert #0", "ADR", "https://example.org/0", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), crt.ID)
	assert.Equal(t, payer, crt.Owner)

	// the payment is burned, not transferred
	bal, err := env.tokens.Balance(mint, payer)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), bal)
	burned, err := env.tokens.TotalBurned(mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), burned)
	supply, err := env.tokens.TotalSupply(mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), supply)

	crt, err = env.ledger.MintWithPayment(payer, "Cert #1", "ADR", "https://example.org/1", 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), crt.ID)

	count, _ := env.ledger.Count()
	assert.Equal(t, uint64(2), count)

	got, err := env.ledger.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Cert #0", got.Name)

	_, err = env.ledger.Get(2)
	assert.True(t, errs.HasCode(err, errs.NotFound))

	require.Len(t, env.events, 2)
	ev := env.events[0]
	assert.Equal(t, staking.EventTokenBurn, ev.Type)
	assert.Equal(t, payer, ev.Actor)
	assert.Equal(t, uint64(100), ev.Amount)
	assert.Equal(t, "0", ev.NewValue)
	assert.Equal(t, uint64(42), ev.Timestamp)
}

func TestMintWithPaymentGuards(t *testing.T) {
	env := newTestEnv(t)

	// collection must exist first
	_, err := env.ledger.MintWithPayment(payer, "c", "s", "u", 10)
	assert.True(t, errs.HasCode(err, errs.NotInitialized))

	require.NoError(t, env.ledger.InitializeCollection(admin, "ADR Certs", "ADR", "https://example.org/c"))

	_, err = env.ledger.MintWithPayment(payer, "", "s", "u", 10)
	assert.True(t, errs.HasCode(err, errs.InvalidInput))

	_, err = env.ledger.MintWithPayment(payer, "c", "s", "u", 10_000)
	assert.True(t, errs.HasCode(err, errs.InsufficientFunds))

	require.NoError(t, env.engine.SetEmergencyPause(admin, true, "incident"))
	_, err = env.ledger.MintWithPayment(payer, "c", "s", "u", 10)
	assert.True(t, errs.HasCode(err, errs.SystemPaused))

	// nothing burned by the failed attempts
	bal, _ := env.tokens.Balance(mint, payer)
	assert.Equal(t, uint64(1_000), bal)
	count, _ := env.ledger.Count()
	assert.Zero(t, count)
}
