// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"sync"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/kv"
	"github.com/adranet/adrd/state"
)

// Service exposes committed token operations for callers outside the
// staking engine. It shares the engine's lock so balance mutations stay
// serialized across subsystems.
type Service struct {
	db   kv.GetPutter
	lock sync.Locker
}

// NewService creates a token service. A nil lock falls back to a private
// mutex.
func NewService(db kv.GetPutter, lock sync.Locker) *Service {
	if lock == nil {
		lock = &sync.Mutex{}
	}
	return &Service{db: db, lock: lock}
}

func (s *Service) commit(st *state.State) error {
	batch := s.db.NewBatch()
	if err := st.Commit(batch); err != nil {
		return err
	}
	return batch.Write()
}

func (s *Service) write(fn func(tok *Token) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	st := state.New(s.db)
	if err := fn(New(st)); err != nil {
		return err
	}
	return s.commit(st)
}

func (s *Service) read(fn func(tok *Token) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return fn(New(state.New(s.db)))
}

// Transfer moves amount between accounts under the sender's authority.
func (s *Service) Transfer(mint, from, to adr.Address, amount uint64) error {
	return s.write(func(tok *Token) error {
		return tok.Transfer(mint, from, to, amount, NewAuthority(from))
	})
}

// TransferFrom moves amount consuming spender's allowance.
func (s *Service) TransferFrom(mint, from, to, spender adr.Address, amount uint64) error {
	return s.write(func(tok *Token) error {
		return tok.TransferFrom(mint, from, to, spender, amount)
	})
}

// Approve grants a delegated-spend allowance under the owner's authority.
func (s *Service) Approve(mint, owner, spender adr.Address, amount uint64) error {
	return s.write(func(tok *Token) error {
		return tok.Approve(mint, owner, spender, amount, NewAuthority(owner))
	})
}

// Mint creates tokens for genesis or dev supply.
func (s *Service) Mint(mint, to adr.Address, amount uint64) error {
	return s.write(func(tok *Token) error {
		return tok.Mint(mint, to, amount)
	})
}

// Balance returns the holder's balance.
func (s *Service) Balance(mint, holder adr.Address) (uint64, error) {
	var bal uint64
	err := s.read(func(tok *Token) error {
		var err error
		bal, err = tok.Balance(mint, holder)
		return err
	})
	return bal, err
}

// Allowance returns the remaining delegated-spend allowance.
func (s *Service) Allowance(mint, owner, spender adr.Address) (uint64, error) {
	var allowance uint64
	err := s.read(func(tok *Token) error {
		var err error
		allowance, err = tok.Allowance(mint, owner, spender)
		return err
	})
	return allowance, err
}

// TotalSupply returns the outstanding supply of the mint.
func (s *Service) TotalSupply(mint adr.Address) (uint64, error) {
	var supply uint64
	err := s.read(func(tok *Token) error {
		var err error
		supply, err = tok.TotalSupply(mint)
		return err
	})
	return supply, err
}

// TotalBurned returns the cumulative burned amount of the mint.
func (s *Service) TotalBurned(mint adr.Address) (uint64, error) {
	var burned uint64
	err := s.read(func(tok *Token) error {
		var err error
		burned, err = tok.TotalBurned(mint)
		return err
	})
	return burned, err
}
