// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cert mints non-fungible certificates against a burn of the
// payment token. The staking engine treats this subsystem as an external
// collaborator; it shares the token ledger and the event sink only.
package cert

import (
	"encoding/binary"
	"strconv"
	"sync"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/kv"
	"github.com/adranet/adrd/staking"
	"github.com/adranet/adrd/state"
	"github.com/adranet/adrd/token"
)

var logger = log15.New("pkg", "cert")

var (
	counterKey    = []byte("nn")
	collectionKey = []byte("nl")
)

func certKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return append([]byte("nm"), b[:]...)
}

// Collection holds the shared metadata all certificates belong to.
type Collection struct {
	Authority adr.Address `json:"authority"`
	Name      string      `json:"name"`
	Symbol    string      `json:"symbol"`
	URI       string      `json:"uri"`
}

// Certificate is one minted certificate.
type Certificate struct {
	ID     uint64      `json:"id"`
	Owner  adr.Address `json:"owner"`
	Name   string      `json:"name"`
	Symbol string      `json:"symbol"`
	URI    string      `json:"uri"`
}

// Ledger manages the certificate collection and counter.
type Ledger struct {
	mu    sync.Locker
	db    kv.GetPutter
	sink  staking.Sink
	clock func() uint64
}

// NewLedger creates a certificate ledger over the given store.
// Pass the staking engine's Locker as lock so burns stay serialized with
// stake and unstake mutations of the same balances; a nil lock falls back
// to a private mutex.
func NewLedger(db kv.GetPutter, sink staking.Sink, clock func() uint64, lock sync.Locker) *Ledger {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if sink == nil {
		sink = staking.SinkFunc(func(*staking.Event) error { return nil })
	}
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Ledger{
		mu:    lock,
		db:    db,
		sink:  sink,
		clock: clock,
	}
}

func (l *Ledger) commit(st *state.State) error {
	batch := l.db.NewBatch()
	if err := st.Commit(batch); err != nil {
		return err
	}
	return batch.Write()
}

// InitializeCollection stores the collection metadata and zeroes the
// counter. It runs once.
func (l *Ledger) InitializeCollection(authority adr.Address, name, symbol, uri string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if name == "" || symbol == "" || uri == "" {
		return errs.New(errs.InvalidInput, "name, symbol and uri must not be empty")
	}

	st := state.New(l.db)
	if _, ok, err := st.Get(collectionKey); err != nil {
		return err
	} else if ok {
		return errs.New(errs.AlreadyInitialized, "collection already initialized")
	}

	col := &Collection{
		Authority: authority,
		Name:      name,
		Symbol:    symbol,
		URI:       uri,
	}
	if err := st.SetStructured(collectionKey, col); err != nil {
		return err
	}
	if err := st.SetStructured(counterKey, uint64(0)); err != nil {
		return err
	}
	if err := l.commit(st); err != nil {
		return err
	}
	logger.Info("collection initialized", "name", name, "symbol", symbol)
	return nil
}

// MintWithPayment burns amount of the payment token from the payer and
// mints the next certificate to them.
func (l *Ledger) MintWithPayment(payer adr.Address, name, symbol, uri string, amount uint64) (*Certificate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := state.New(l.db)
	cfg, err := staking.ReadConfig(st)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, errs.New(errs.SystemPaused, "system is paused for emergency")
	}
	if name == "" || symbol == "" || uri == "" {
		return nil, errs.New(errs.InvalidInput, "name, symbol and uri must not be empty")
	}
	if cfg.PaymentToken.IsZero() {
		return nil, errs.New(errs.PaymentTokenNotConfigured, "payment token not configured")
	}

	var col Collection
	if ok, err := st.GetStructured(collectionKey, &col); err != nil {
		return nil, err
	} else if !ok {
		return nil, errs.New(errs.NotInitialized, "collection not initialized")
	}

	tok := token.New(st)
	balance, err := tok.Balance(cfg.PaymentToken, payer)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, errs.New(errs.InsufficientFunds, "balance %d below payment %d", balance, amount)
	}
	if err := tok.Burn(cfg.PaymentToken, payer, amount, token.NewAuthority(payer)); err != nil {
		return nil, err
	}

	var count uint64
	if _, err := st.GetStructured(counterKey, &count); err != nil {
		return nil, err
	}
	if count+1 < count {
		return nil, errs.New(errs.MathOverflow, "certificate counter overflows")
	}

	crt := &Certificate{
		ID:     count,
		Owner:  payer,
		Name:   name,
		Symbol: symbol,
		URI:    uri,
	}
	if err := st.SetStructured(certKey(crt.ID), crt); err != nil {
		return nil, err
	}
	if err := st.SetStructured(counterKey, count+1); err != nil {
		return nil, err
	}
	if err := l.commit(st); err != nil {
		return nil, err
	}

	now := l.clock()
	if err := l.sink.Append(&staking.Event{
		Type:      staking.EventTokenBurn,
		Actor:     payer,
		Field:     "certificate",
		NewValue:  strconv.FormatUint(crt.ID, 10),
		Amount:    amount,
		Timestamp: now,
	}); err != nil {
		logger.Warn("failed to append event", "err", err)
	}
	logger.Info("certificate minted", "id", crt.ID, "payer", payer, "burned", amount)
	return crt, nil
}

// Collection returns the collection metadata.
func (l *Ledger) Collection() (*Collection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var col Collection
	ok, err := state.New(l.db).GetStructured(collectionKey, &col)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NotInitialized, "collection not initialized")
	}
	return &col, nil
}

// Count returns the number of minted certificates.
func (l *Ledger) Count() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var count uint64
	if _, err := state.New(l.db).GetStructured(counterKey, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// Get returns the certificate with the given id.
func (l *Ledger) Get(id uint64) (*Certificate, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var crt Certificate
	ok, err := state.New(l.db).GetStructured(certKey(id), &crt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.NotFound, "certificate %d not found", id)
	}
	return &crt, nil
}
