// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the staking ledger and reward engine: the
// lifecycle of stake records, the fixed-point reward computation, the
// merge-and-relock policy, and the administrative controls gating all
// mutations.
package staking

import (
	"strconv"
	"sync"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/adranet/adrd/adr"
	"github.com/adranet/adrd/errs"
	"github.com/adranet/adrd/kv"
	"github.com/adranet/adrd/state"
	"github.com/adranet/adrd/token"
)

var logger = log15.New("pkg", "staking")

// custodySeed derives the account holding locked principal. Only the
// engine's vault authority can move funds out of it.
const custodySeed = "stake-authority"

// Engine orchestrates all ledger mutations. Every operation is serialized:
// it runs to completion, or aborts with no state change, before the next
// one is observed.
type Engine struct {
	mu       sync.Mutex
	db       kv.GetPutter
	schedule *Schedule
	sink     Sink
	clock    func() uint64
	custody  adr.Address
	vault    token.Authority
}

// NewEngine creates an engine over the given store.
// A nil clock defaults to the wall clock; a nil sink drops events.
func NewEngine(db kv.GetPutter, schedule *Schedule, sink Sink, clock func() uint64) *Engine {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if sink == nil {
		sink = SinkFunc(func(*Event) error { return nil })
	}
	custody := adr.DeriveAddress(custodySeed)
	return &Engine{
		db:       db,
		schedule: schedule,
		sink:     sink,
		clock:    clock,
		custody:  custody,
		vault:    token.NewVaultAuthority(custody),
	}
}

// Custody returns the address of the custody account.
func (e *Engine) Custody() adr.Address {
	return e.custody
}

// Locker exposes the engine's serialization lock so collaborators touching
// the same token balances stay serialized with the engine.
func (e *Engine) Locker() sync.Locker {
	return &e.mu
}

// Schedule returns the period table live in this deployment.
func (e *Engine) Schedule() *Schedule {
	return e.schedule
}

func (e *Engine) commit(st *state.State) error {
	batch := e.db.NewBatch()
	if err := st.Commit(batch); err != nil {
		return err
	}
	return batch.Write()
}

// emit hands the event to the sink. The ledger mutation is already
// committed at this point, so a sink failure only costs the notification.
func (e *Engine) emit(ev *Event) {
	if err := e.sink.Append(ev); err != nil {
		logger.Warn("failed to append event", "type", ev.Type, "err", err)
	}
}

func (e *Engine) fail(op string, err error) error {
	code, ok := errs.CodeOf(err)
	if !ok {
		code = "Internal"
	}
	metricOpFailures().AddWithLabel(1, map[string]string{"op": op, "code": string(code)})
	return err
}

func adminGate(cfg *Config, caller adr.Address) error {
	if caller != cfg.Admin {
		return errs.New(errs.Unauthorized, "caller %v is not the admin", caller)
	}
	return nil
}

// Initialize creates the configuration record. It runs exactly once per
// deployment; the caller becomes the admin.
func (e *Engine) Initialize(admin adr.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if admin.IsZero() {
		return e.fail("initialize", errs.New(errs.InvalidInput, "admin must not be zero"))
	}

	st := state.New(e.db)
	ok, err := hasConfig(st)
	if err != nil {
		return err
	}
	if ok {
		return e.fail("initialize", errs.New(errs.AlreadyInitialized, "configuration already exists"))
	}

	cfg := &Config{
		Admin:    admin,
		Enabled:  false,
		MaxStake: DefaultMaxStake,
	}
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	// custody only releases funds against the engine's vault authority
	if err := token.New(st).Guard(e.custody); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}
	logger.Info("ledger initialized", "admin", admin)
	return nil
}

// Configure overwrites the staking-enabled flag and the base reward rate.
func (e *Engine) Configure(caller adr.Address, enabled bool, rateBps uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("configure", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("configure", err)
	}

	oldEnabled, oldRate := cfg.Enabled, cfg.RewardRate
	cfg.Enabled = enabled
	cfg.RewardRate = rateBps
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}

	now := e.clock()
	e.emit(&Event{
		Type:      EventConfigUpdate,
		Actor:     caller,
		Field:     "staking_enabled",
		OldValue:  strconv.FormatBool(oldEnabled),
		NewValue:  strconv.FormatBool(enabled),
		Timestamp: now,
	})
	e.emit(&Event{
		Type:      EventConfigUpdate,
		Actor:     caller,
		Field:     "staking_reward_rate",
		OldValue:  strconv.FormatUint(oldRate, 10),
		NewValue:  strconv.FormatUint(rateBps, 10),
		Timestamp: now,
	})
	logger.Info("staking configured", "enabled", enabled, "rewardRate", rateBps)
	return nil
}

// SetEmergencyPause flips the emergency-pause flag. While paused, stake and
// unstake are blocked entirely.
func (e *Engine) SetEmergencyPause(caller adr.Address, paused bool, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("pause", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("pause", err)
	}

	cfg.Paused = paused
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}

	e.emit(&Event{
		Type:      EventEmergencyPause,
		Actor:     caller,
		NewValue:  strconv.FormatBool(paused),
		Reason:    reason,
		Timestamp: e.clock(),
	})
	logger.Warn("emergency pause updated", "paused", paused, "reason", reason)
	return nil
}

// UpdateAdmin hands the admin role over in a single step. The new admin
// takes effect immediately; the old admin loses all rights atomically.
func (e *Engine) UpdateAdmin(caller, newAdmin adr.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if newAdmin.IsZero() {
		return e.fail("update-admin", errs.New(errs.InvalidInput, "new admin must not be zero"))
	}

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("update-admin", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("update-admin", err)
	}

	old := cfg.Admin
	cfg.Admin = newAdmin
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}

	e.emit(&Event{
		Type:      EventConfigUpdate,
		Actor:     caller,
		Field:     "admin",
		OldValue:  old.String(),
		NewValue:  newAdmin.String(),
		Timestamp: e.clock(),
	})
	logger.Info("admin transferred", "old", old, "new", newAdmin)
	return nil
}

// UpdateMaxStake overwrites the per-call stake cap.
func (e *Engine) UpdateMaxStake(caller adr.Address, maxAmount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("update-max-stake", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("update-max-stake", err)
	}

	old := cfg.MaxStake
	cfg.MaxStake = maxAmount
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}

	e.emit(&Event{
		Type:      EventConfigUpdate,
		Actor:     caller,
		Field:     "max_stake_amount",
		OldValue:  strconv.FormatUint(old, 10),
		NewValue:  strconv.FormatUint(maxAmount, 10),
		Timestamp: e.clock(),
	})
	return nil
}

// SetPaymentToken configures the mint staked and spent against the ledger.
func (e *Engine) SetPaymentToken(caller, mint adr.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if mint.IsZero() {
		return e.fail("set-payment-token", errs.New(errs.InvalidInput, "mint must not be zero"))
	}

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("set-payment-token", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("set-payment-token", err)
	}

	old := cfg.PaymentToken
	cfg.PaymentToken = mint
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}

	e.emit(&Event{
		Type:      EventConfigUpdate,
		Actor:     caller,
		Field:     "payment_token_mint",
		OldValue:  old.String(),
		NewValue:  mint.String(),
		Timestamp: e.clock(),
	})
	return nil
}

// SetRewardReserve designates the pre-funded account rewards are drawn from.
func (e *Engine) SetRewardReserve(caller, reserve adr.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if reserve.IsZero() {
		return e.fail("set-reward-reserve", errs.New(errs.InvalidInput, "reserve must not be zero"))
	}

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("set-reward-reserve", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("set-reward-reserve", err)
	}

	old := cfg.RewardReserve
	cfg.RewardReserve = reserve
	if err := writeConfig(st, cfg); err != nil {
		return err
	}
	// the reserve becomes engine-controlled, like custody
	tok := token.New(st)
	if !old.IsZero() {
		tok.Unguard(old)
	}
	if err := tok.Guard(reserve); err != nil {
		return err
	}
	if err := e.commit(st); err != nil {
		return err
	}

	e.emit(&Event{
		Type:      EventConfigUpdate,
		Actor:     caller,
		Field:     "reward_reserve",
		OldValue:  old.String(),
		NewValue:  reserve.String(),
		Timestamp: e.clock(),
	})
	return nil
}

// DepositRewardReserve moves tokens from the admin's balance into the
// reward reserve.
func (e *Engine) DepositRewardReserve(caller adr.Address, amount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return e.fail("deposit-reserve", err)
	}
	if err := adminGate(cfg, caller); err != nil {
		return e.fail("deposit-reserve", err)
	}
	if cfg.PaymentToken.IsZero() {
		return e.fail("deposit-reserve", errs.New(errs.PaymentTokenNotConfigured, "payment token not configured"))
	}
	if cfg.RewardReserve.IsZero() {
		return e.fail("deposit-reserve", errs.New(errs.RewardReserveNotSet, "reward reserve not configured"))
	}

	tok := token.New(st)
	if err := tok.Transfer(cfg.PaymentToken, caller, cfg.RewardReserve, amount, token.NewAuthority(caller)); err != nil {
		return e.fail("deposit-reserve", err)
	}
	if err := e.commit(st); err != nil {
		return err
	}
	logger.Info("reward reserve funded", "amount", amount, "reserve", cfg.RewardReserve)
	return nil
}

// Stake locks amount of the payment token for the chosen period.
//
// If the staker already holds an active lock, the whole locked principal is
// first returned, then principal plus the new amount are pulled back into
// custody in one transfer, and the lock window restarts at now with the
// newly supplied period. Partial top-ups therefore always restart the full
// lock duration for the combined balance.
func (e *Engine) Stake(staker adr.Address, amount uint64, period Period) (*StakeSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return nil, e.fail("stake", err)
	}

	// preconditions, checked in order, short-circuiting on first failure
	if cfg.Paused {
		return nil, e.fail("stake", errs.New(errs.SystemPaused, "system is paused for emergency"))
	}
	if !cfg.Enabled {
		return nil, e.fail("stake", errs.New(errs.StakingNotEnabled, "staking is not enabled"))
	}
	if amount == 0 {
		return nil, e.fail("stake", errs.New(errs.InvalidStakeAmount, "stake amount must be greater than 0"))
	}
	if amount > cfg.MaxStake {
		return nil, e.fail("stake", errs.New(errs.StakeAmountTooLarge, "stake %d exceeds cap %d", amount, cfg.MaxStake))
	}
	if cfg.PaymentToken.IsZero() {
		return nil, e.fail("stake", errs.New(errs.PaymentTokenNotConfigured, "payment token not configured"))
	}

	tok := token.New(st)
	balance, err := tok.Balance(cfg.PaymentToken, staker)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, e.fail("stake", errs.New(errs.InsufficientFunds, "balance %d below stake %d", balance, amount))
	}

	spec, err := e.schedule.Spec(period)
	if err != nil {
		return nil, e.fail("stake", err)
	}

	now := e.clock()
	unlock, err := checkedAdd(now, spec.Duration)
	if err != nil {
		return nil, e.fail("stake", err)
	}

	rec, found, err := readRecord(st, staker, cfg.PaymentToken)
	if err != nil {
		return nil, err
	}

	var ev *Event
	if found && rec.IsActive() {
		// merge-and-relock: return the whole locked principal, then pull
		// principal plus the new amount back in one transfer
		if err := tok.Transfer(cfg.PaymentToken, e.custody, staker, rec.Amount, e.vault); err != nil {
			return nil, e.fail("stake", err)
		}
		newAmount, err := checkedAdd(rec.Amount, amount)
		if err != nil {
			return nil, e.fail("stake", err)
		}
		if err := tok.Transfer(cfg.PaymentToken, staker, e.custody, newAmount, token.NewAuthority(staker)); err != nil {
			return nil, e.fail("stake", err)
		}

		evType := EventStakeAdded
		if rec.Period != period {
			evType = EventStakeUpdated
		}
		ev = &Event{
			Type:       evType,
			Actor:      staker,
			Amount:     amount,
			Total:      newAmount,
			Period:     period,
			StartTime:  now,
			UnlockTime: unlock,
			Timestamp:  now,
		}
		if rec.Period != period {
			ev.Field = "period"
			ev.OldValue = strconv.FormatUint(uint64(rec.Period), 10)
			ev.NewValue = strconv.FormatUint(uint64(period), 10)
		}

		rec.Amount = newAmount
	} else {
		// first stake for the pair, or reuse after claim
		if err := tok.Transfer(cfg.PaymentToken, staker, e.custody, amount, token.NewAuthority(staker)); err != nil {
			return nil, e.fail("stake", err)
		}
		ev = &Event{
			Type:       EventStakeOpened,
			Actor:      staker,
			Amount:     amount,
			Total:      amount,
			Period:     period,
			StartTime:  now,
			UnlockTime: unlock,
			Timestamp:  now,
		}
		rec.Amount = amount
	}

	rec.Owner = staker
	rec.StartTime = now
	rec.UnlockTime = unlock
	rec.Period = period
	rec.Claimed = false

	if err := writeRecord(st, staker, cfg.PaymentToken, rec); err != nil {
		return nil, err
	}

	custodyBalance, err := tok.Balance(cfg.PaymentToken, e.custody)
	if err != nil {
		return nil, err
	}

	if err := e.commit(st); err != nil {
		return nil, err
	}

	e.emit(ev)
	metricStakeCount().Add(1)
	metricCustodyBalance().Set(clampInt64(custodyBalance))
	logger.Info("stake locked", "staker", staker, "amount", amount, "total", rec.Amount, "period", period, "unlockTime", unlock)

	return e.summarize(cfg, rec, now), nil
}

// Unstake returns the locked principal plus the period-dependent reward
// drawn from the reserve, and marks the record claimed.
func (e *Engine) Unstake(staker adr.Address) (*StakeSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.New(e.db)
	cfg, err := ReadConfig(st)
	if err != nil {
		return nil, e.fail("unstake", err)
	}
	if cfg.Paused {
		return nil, e.fail("unstake", errs.New(errs.SystemPaused, "system is paused for emergency"))
	}
	if cfg.PaymentToken.IsZero() {
		return nil, e.fail("unstake", errs.New(errs.PaymentTokenNotConfigured, "payment token not configured"))
	}

	rec, found, err := readRecord(st, staker, cfg.PaymentToken)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, e.fail("unstake", errs.New(errs.NotFound, "no stake record for %v", staker))
	}

	now := e.clock()
	if now < rec.UnlockTime {
		return nil, e.fail("unstake", errs.New(errs.StakingPeriodNotCompleted, "lock expires at %d, now %d", rec.UnlockTime, now))
	}
	if rec.Claimed {
		return nil, e.fail("unstake", errs.New(errs.RewardsAlreadyClaimed, "rewards already claimed"))
	}

	spec, err := e.schedule.Spec(rec.Period)
	if err != nil {
		return nil, e.fail("unstake", err)
	}
	reward, err := CalcReward(rec.Amount, cfg.RewardRate, spec.Multiplier)
	if err != nil {
		return nil, e.fail("unstake", err)
	}

	tok := token.New(st)
	if err := tok.Transfer(cfg.PaymentToken, e.custody, staker, rec.Amount, e.vault); err != nil {
		return nil, e.fail("unstake", err)
	}

	if reward > 0 {
		if cfg.RewardReserve.IsZero() {
			return nil, e.fail("unstake", errs.New(errs.RewardReserveNotSet, "reward reserve not configured"))
		}
		reserveBalance, err := tok.Balance(cfg.PaymentToken, cfg.RewardReserve)
		if err != nil {
			return nil, err
		}
		if reserveBalance < reward {
			return nil, e.fail("unstake", errs.New(errs.InsufficientRewardReserve, "reserve %d below reward %d", reserveBalance, reward))
		}
		if err := tok.Transfer(cfg.PaymentToken, cfg.RewardReserve, staker, reward, token.NewVaultAuthority(cfg.RewardReserve)); err != nil {
			return nil, e.fail("unstake", err)
		}
	}

	total, err := checkedAdd(rec.Amount, reward)
	if err != nil {
		return nil, e.fail("unstake", err)
	}

	// the amount field is kept as a historical record; Claimed marks the
	// record inactive for the next stake call
	rec.Claimed = true
	if err := writeRecord(st, staker, cfg.PaymentToken, rec); err != nil {
		return nil, err
	}

	custodyBalance, err := tok.Balance(cfg.PaymentToken, e.custody)
	if err != nil {
		return nil, err
	}

	if err := e.commit(st); err != nil {
		return nil, err
	}

	e.emit(&Event{
		Type:      EventUnstake,
		Actor:     staker,
		Amount:    rec.Amount,
		Reward:    reward,
		Total:     total,
		Period:    rec.Period,
		Timestamp: now,
	})
	metricUnstakeCount().Add(1)
	metricRewardPaid().Observe(clampInt64(reward))
	metricCustodyBalance().Set(clampInt64(custodyBalance))
	logger.Info("unstake completed", "staker", staker, "amount", rec.Amount, "reward", reward, "total", total)

	return e.summarize(cfg, rec, now), nil
}
