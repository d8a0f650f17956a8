// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/state"
)

var configKey = []byte("cfg")

func recordKey(staker, asset adr.Address) []byte {
	return append(append([]byte("sr"), staker.Bytes()...), asset.Bytes()...)
}

// ReadConfig loads the configuration record from the state.
// It fails with NotInitialized if the system has not been brought up.
func ReadConfig(st *state.State) (*Config, error) {
	var cfg Config
	ok, err := st.GetStructured(configKey, &cfg)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if !ok {
		return nil, errs.New(errs.NotInitialized, "staking ledger not initialized")
	}
	return &cfg, nil
}

func hasConfig(st *state.State) (bool, error) {
	_, ok, err := st.Get(configKey)
	return ok, err
}

func writeConfig(st *state.State, cfg *Config) error {
	return errors.Wrap(st.SetStructured(configKey, cfg), "write config")
}

func readRecord(st *state.State, staker, asset adr.Address) (*Record, bool, error) {
	var rec Record
	ok, err := st.GetStructured(recordKey(staker, asset), &rec)
	if err != nil {
		return nil, false, errors.Wrap(err, "read stake record")
	}
	return &rec, ok, nil
}

func writeRecord(st *state.State, staker, asset adr.Address, rec *Record) error {
	return errors.Wrap(st.SetStructured(recordKey(staker, asset), rec), "write stake record")
}
