// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/adranet/adrd/adr"
)

// DefaultMaxStake is the per-call stake cap applied until the admin sets one.
const DefaultMaxStake = 1_000_000 * 1_000_000_000 // 1M tokens at 9 decimals

// Config is the single global configuration record.
// Exactly one exists per deployment; Admin is never zero once initialized.
type Config struct {
	Admin         adr.Address
	PaymentToken  adr.Address
	Enabled       bool
	RewardRate    uint64 // basis points, 10000 = 100%
	MaxStake      uint64
	Paused        bool
	RewardReserve adr.Address
}

// Record tracks one lock per (staker, asset) pair.
// Records are never deleted; a claimed record is reused by the next stake.
type Record struct {
	Owner      adr.Address
	Amount     uint64
	StartTime  uint64
	UnlockTime uint64
	Period     Period
	Claimed    bool
}

// IsActive returns whether the record holds an unclaimed lock.
func (r *Record) IsActive() bool {
	return r.Amount > 0 && !r.Claimed
}
