// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements the fungible-token ledger used for settlement:
// balances, supply bookkeeping, transfers, delegated-spend allowances,
// minting and burning. All mutations are atomic with respect to the state
// overlay they run against.
package token

import (
	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/state"
)

func accountKey(mint, holder adr.Address) []byte {
	return append(append([]byte("ta"), mint.Bytes()...), holder.Bytes()...)
}

func supplyKey(mint adr.Address) []byte {
	return append([]byte("ty"), mint.Bytes()...)
}

func burnedKey(mint adr.Address) []byte {
	return append([]byte("tb"), mint.Bytes()...)
}

func allowanceKey(mint, owner, spender adr.Address) []byte {
	k := append([]byte("tw"), mint.Bytes()...)
	k = append(k, owner.Bytes()...)
	return append(k, spender.Bytes()...)
}

func guardKey(addr adr.Address) []byte {
	return append([]byte("tg"), addr.Bytes()...)
}

// Authority is the capability presented to move funds out of an account.
// Holder-initiated calls carry a plain authority for the holder's own
// account. Guarded accounts reject plain authorities: only the vault
// authorities held by the staking engine move their funds.
type Authority struct {
	holder adr.Address
	vault  bool
}

// NewAuthority creates a holder authority over the given account.
func NewAuthority(holder adr.Address) Authority {
	return Authority{holder: holder}
}

// NewVaultAuthority creates the authority over a guarded engine account.
// Constructed by the staking engine only; the token service and the REST
// surface mint plain holder authorities exclusively.
func NewVaultAuthority(holder adr.Address) Authority {
	return Authority{holder: holder, vault: true}
}

// Holder returns the account the authority controls.
func (a Authority) Holder() adr.Address {
	return a.holder
}

// Token binds the token ledger to a state overlay.
type Token struct {
	state *state.State
}

// New creates a token ledger over the given state.
func New(st *state.State) *Token {
	return &Token{state: st}
}

func (t *Token) getUint64(key []byte) (uint64, error) {
	var v uint64
	if _, err := t.state.GetStructured(key, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// Balance returns the spendable balance of holder for the given mint.
func (t *Token) Balance(mint, holder adr.Address) (uint64, error) {
	return t.getUint64(accountKey(mint, holder))
}

// TotalSupply returns the outstanding supply of the given mint.
func (t *Token) TotalSupply(mint adr.Address) (uint64, error) {
	return t.getUint64(supplyKey(mint))
}

// TotalBurned returns the cumulative burned amount of the given mint.
func (t *Token) TotalBurned(mint adr.Address) (uint64, error) {
	return t.getUint64(burnedKey(mint))
}

// Allowance returns the remaining delegated-spend allowance.
func (t *Token) Allowance(mint, owner, spender adr.Address) (uint64, error) {
	return t.getUint64(allowanceKey(mint, owner, spender))
}

// Guard marks addr as engine-controlled across all mints. Outbound moves
// from a guarded account require a vault authority.
func (t *Token) Guard(addr adr.Address) error {
	return t.state.SetStructured(guardKey(addr), true)
}

// Unguard removes the engine-controlled marker from addr.
func (t *Token) Unguard(addr adr.Address) {
	t.state.Delete(guardKey(addr))
}

// Guarded returns whether addr is an engine-controlled account.
func (t *Token) Guarded(addr adr.Address) (bool, error) {
	var v bool
	_, err := t.state.GetStructured(guardKey(addr), &v)
	return v, err
}

// checkAuthority validates that auth can move funds out of from.
func (t *Token) checkAuthority(from adr.Address, auth Authority) error {
	if auth.holder != from {
		return errs.New(errs.Unauthorized, "authority does not control account %v", from)
	}
	guarded, err := t.Guarded(from)
	if err != nil {
		return err
	}
	if guarded && !auth.vault {
		return errs.New(errs.Unauthorized, "account %v is engine-controlled", from)
	}
	return nil
}

// Mint creates amount new tokens in to's account.
// It fails on supply or balance overflow. Reward payouts never mint; this
// exists for genesis and dev supply only.
func (t *Token) Mint(mint, to adr.Address, amount uint64) error {
	supply, err := t.TotalSupply(mint)
	if err != nil {
		return err
	}
	newSupply, err := checkedAdd(supply, amount)
	if err != nil {
		return err
	}
	if err := t.addBalance(mint, to, amount); err != nil {
		return err
	}
	return t.state.SetStructured(supplyKey(mint), newSupply)
}

// Burn destroys amount tokens from from's account.
// The presented authority must control the account.
func (t *Token) Burn(mint, from adr.Address, amount uint64, auth Authority) error {
	if err := t.checkAuthority(from, auth); err != nil {
		return err
	}
	if err := t.subBalance(mint, from, amount); err != nil {
		return err
	}
	supply, err := t.TotalSupply(mint)
	if err != nil {
		return err
	}
	if err := t.state.SetStructured(supplyKey(mint), supply-amount); err != nil {
		return err
	}
	burned, err := t.TotalBurned(mint)
	if err != nil {
		return err
	}
	newBurned, err := checkedAdd(burned, amount)
	if err != nil {
		return err
	}
	return t.state.SetStructured(burnedKey(mint), newBurned)
}

// Transfer moves amount from one account to another.
// The presented authority must control the source account.
func (t *Token) Transfer(mint, from, to adr.Address, amount uint64, auth Authority) error {
	if err := t.checkAuthority(from, auth); err != nil {
		return err
	}
	return t.move(mint, from, to, amount)
}

// Approve grants spender a delegated-spend allowance over owner's balance.
// The presented authority must control the owner account.
func (t *Token) Approve(mint, owner, spender adr.Address, amount uint64, auth Authority) error {
	if err := t.checkAuthority(owner, auth); err != nil {
		return err
	}
	return t.state.SetStructured(allowanceKey(mint, owner, spender), amount)
}

// TransferFrom moves amount out of from's account consuming spender's allowance.
// Guarded accounts never hold allowances and reject the delegated path outright.
func (t *Token) TransferFrom(mint, from, to, spender adr.Address, amount uint64) error {
	guarded, err := t.Guarded(from)
	if err != nil {
		return err
	}
	if guarded {
		return errs.New(errs.Unauthorized, "account %v is engine-controlled", from)
	}
	allowance, err := t.Allowance(mint, from, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		return errs.New(errs.Unauthorized, "allowance %d below requested %d", allowance, amount)
	}
	if err := t.state.SetStructured(allowanceKey(mint, from, spender), allowance-amount); err != nil {
		return err
	}
	return t.move(mint, from, to, amount)
}

func (t *Token) move(mint, from, to adr.Address, amount uint64) error {
	if err := t.subBalance(mint, from, amount); err != nil {
		return err
	}
	return t.addBalance(mint, to, amount)
}

func (t *Token) addBalance(mint, holder adr.Address, amount uint64) error {
	bal, err := t.Balance(mint, holder)
	if err != nil {
		return err
	}
	newBal, err := checkedAdd(bal, amount)
	if err != nil {
		return err
	}
	return t.state.SetStructured(accountKey(mint, holder), newBal)
}

func (t *Token) subBalance(mint, holder adr.Address, amount uint64) error {
	bal, err := t.Balance(mint, holder)
	if err != nil {
		return err
	}
	if bal < amount {
		return errs.New(errs.InsufficientFunds, "balance %d below requested %d", bal, amount)
	}
	return t.state.SetStructured(accountKey(mint, holder), bal-amount)
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a+b < a {
		return 0, errs.New(errs.MathOverflow, "add overflows uint64")
	}
	return a + b, nil
}
