// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"

	"github.com/adranet/adrd/metrics"
)

var (
	metricStakeCount     = metrics.LazyLoadCounter("staking_stake_total")
	metricUnstakeCount   = metrics.LazyLoadCounter("staking_unstake_total")
	metricOpFailures     = metrics.LazyLoadCounterVec("staking_op_failure_total", []string{"op", "code"})
	metricCustodyBalance = metrics.LazyLoadGauge("staking_custody_balance")
	metricRewardPaid     = metrics.LazyLoadHistogram("staking_reward_paid", []int64{0, 10, 100, 1000, 10_000, 100_000, 1_000_000})
)

// clampInt64 saturates balance samples so the int64 conversion cannot wrap.
func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}
