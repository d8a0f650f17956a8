// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/state"
)

// StakeSummary is the read-only view of a staker's current lock.
type StakeSummary struct {
	IsStaking       bool        `json:"isStaking"`
	Owner           adr.Address `json:"owner"`
	Amount          uint64      `json:"amount"`
	StartTime       uint64      `json:"startTime"`
	UnlockTime      uint64      `json:"unlockTime"`
	Period          Period      `json:"period"`
	Claimed         bool        `json:"claimed"`
	CanUnstake      bool        `json:"canUnstake"`
	EstimatedReward uint64      `json:"estimatedReward"`
	TimeRemaining   uint64      `json:"timeRemaining"`
}

// ConfigSummary is the read-only view of the global configuration.
type ConfigSummary struct {
	Admin         adr.Address `json:"admin"`
	PaymentToken  adr.Address `json:"paymentToken"`
	Enabled       bool        `json:"stakingEnabled"`
	RewardRate    uint64      `json:"stakingRewardRate"`
	MaxStake      uint64      `json:"maxStakeAmount"`
	Paused        bool        `json:"emergencyPaused"`
	RewardReserve adr.Address `json:"rewardReserve"`
	Schedule      string      `json:"schedule"`
}

// StakeSummary returns the view of the staker's record. A staker with no
// record yet gets an empty summary rather than an error.
func (e *Engine) StakeSummary(staker adr.Address) (*StakeSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return nil, err
	}
	if cfg.PaymentToken.IsZero() {
		return &StakeSummary{Owner: staker}, nil
	}
	rec, found, err := readRecord(st, staker, cfg.PaymentToken)
	if err != nil {
		return nil, err
	}
	if !found {
		return &StakeSummary{Owner: staker}, nil
	}
	return e.summarize(cfg, rec, e.clock()), nil
}

// ConfigSummary returns the view of the global configuration.
func (e *Engine) ConfigSummary() (*ConfigSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, err := ReadConfig(state.New(e.db))
	if err != nil {
		return nil, err
	}
	return &ConfigSummary{
		Admin:         cfg.Admin,
		PaymentToken:  cfg.PaymentToken,
		Enabled:       cfg.Enabled,
		RewardRate:    cfg.RewardRate,
		MaxStake:      cfg.MaxStake,
		Paused:        cfg.Paused,
		RewardReserve: cfg.RewardReserve,
		Schedule:      e.schedule.Name(),
	}, nil
}

func (e *Engine) summarize(cfg *Config, rec *Record, now uint64) *StakeSummary {
	var estimated uint64
	if spec, err := e.schedule.Spec(rec.Period); err == nil {
		// estimation only; overflow shows up as zero here and errors on unstake
		estimated, _ = CalcReward(rec.Amount, cfg.RewardRate, spec.Multiplier)
	}
	var remaining uint64
	if now < rec.UnlockTime {
		remaining = rec.UnlockTime - now
	}
	return &StakeSummary{
		IsStaking:       rec.IsActive(),
		Owner:           rec.Owner,
		Amount:          rec.Amount,
		StartTime:       rec.StartTime,
		UnlockTime:      rec.UnlockTime,
		Period:          rec.Period,
		Claimed:         rec.Claimed,
		CanUnstake:      rec.IsActive() && now >= rec.UnlockTime,
		EstimatedReward: estimated,
		TimeRemaining:   remaining,
	}
}
