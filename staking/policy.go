// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/adranet/adrd/errs"
)

// CalcReward computes the bonus paid out for a completed lock.
//
//	reward = ((amount * rateBps) / 10000) * multiplier / 100
//
// rateBps is the base rate in basis points (10000 = 100%). The order of
// operations is fixed: multiply-then-divide twice with truncating integer
// division. Reordering changes rounding and breaks compatibility.
func CalcReward(amount, rateBps, multiplier uint64) (uint64, error) {
	v, err := checkedMul(amount, rateBps)
	if err != nil {
		return 0, err
	}
	v /= 10000
	v, err = checkedMul(v, multiplier)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}

func checkedMul(a, b uint64) (uint64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	v := a * b
	if v/a != b {
		return 0, errs.New(errs.MathOverflow, "multiply overflows uint64")
	}
	return v, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a+b < a {
		return 0, errs.New(errs.MathOverflow, "add overflows uint64")
	}
	return a + b, nil
}
