// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state provides a write-buffering overlay on top of a kv store.
// Reads observe buffered writes, and nothing reaches the underlying store
// until Commit. A ledger operation that fails mid-way simply drops its
// State, leaving the store untouched.
package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/adranet/adrd/kv"
)

// State is an in-memory overlay over a kv getter.
type State struct {
	src   kv.Getter
	dirty map[string][]byte // nil value marks deletion
}

// New creates a state over the given source.
func New(src kv.Getter) *State {
	return &State{
		src:   src,
		dirty: make(map[string][]byte),
	}
}

// Get returns the raw value for key, and whether it exists.
func (s *State) Get(key []byte) ([]byte, bool, error) {
	if v, ok := s.dirty[string(key)]; ok {
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
	v, err := s.src.Get(key)
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "state get")
	}
	return v, true, nil
}

// Set buffers the raw value for key.
func (s *State) Set(key, value []byte) {
	s.dirty[string(key)] = append([]byte(nil), value...)
}

// Delete buffers a deletion of key.
func (s *State) Delete(key []byte) {
	s.dirty[string(key)] = nil
}

// GetStructured RLP-decodes the stored value into val.
// Returns false if the key does not exist; val is left untouched in that case.
func (s *State) GetStructured(key []byte, val interface{}) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, val); err != nil {
		return false, errors.Wrap(err, "decode structured value")
	}
	return true, nil
}

// SetStructured RLP-encodes val and buffers it under key.
func (s *State) SetStructured(key []byte, val interface{}) error {
	raw, err := rlp.EncodeToBytes(val)
	if err != nil {
		return errors.Wrap(err, "encode structured value")
	}
	s.dirty[string(key)] = raw
	return nil
}

// Commit flushes all buffered writes into the putter.
// Pair it with a kv batch to make the flush atomic.
func (s *State) Commit(p kv.Putter) error {
	for k, v := range s.dirty {
		if v == nil {
			if err := p.Delete([]byte(k)); err != nil {
				return errors.Wrap(err, "commit delete")
			}
			continue
		}
		if err := p.Put([]byte(k), v); err != nil {
			return errors.Wrap(err, "commit put")
		}
	}
	return nil
}

// Len returns the number of buffered writes.
func (s *State) Len() int {
	return len(s.dirty)
}
