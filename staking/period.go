// Copyright (c) 2025 The ADR Ledger developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/adranet/adrd/errs"
)

// Period is the nominal value of a staking duration: minutes under the
// minute schedule, days under the day schedule.
type Period uint32

// PeriodSpec couples a period with its duration and bonus multiplier.
// The multiplier is expressed in percent-of-principal terms applied on top
// of the base rate (105 = 5% bonus over the base reward).
type PeriodSpec struct {
	Period     Period
	Duration   uint64 // seconds
	Multiplier uint64
}

// Schedule is the closed set of periods live in a deployment.
// Exactly one schedule is selected at system bring-up; the minute and day
// granularities are never mixed.
type Schedule struct {
	name  string
	specs []PeriodSpec
}

const (
	minute = 60
	day    = 24 * 60 * 60
)

// MinuteSchedule returns the minute-scale period table.
func MinuteSchedule() *Schedule {
	return &Schedule{
		name: "minutes",
		specs: []PeriodSpec{
			{Period: 1, Duration: 1 * minute, Multiplier: 105},
			{Period: 2, Duration: 2 * minute, Multiplier: 110},
			{Period: 5, Duration: 5 * minute, Multiplier: 120},
			{Period: 10, Duration: 10 * minute, Multiplier: 140},
			{Period: 30, Duration: 30 * minute, Multiplier: 150},
		},
	}
}

// DaySchedule returns the day-scale period table.
func DaySchedule() *Schedule {
	return &Schedule{
		name: "days",
		specs: []PeriodSpec{
			{Period: 7, Duration: 7 * day, Multiplier: 105},
			{Period: 14, Duration: 14 * day, Multiplier: 110},
			{Period: 30, Duration: 30 * day, Multiplier: 120},
			{Period: 90, Duration: 90 * day, Multiplier: 140},
			{Period: 180, Duration: 180 * day, Multiplier: 150},
		},
	}
}

// ScheduleByName resolves a schedule from its configured name.
func ScheduleByName(name string) (*Schedule, error) {
	switch name {
	case "minutes":
		return MinuteSchedule(), nil
	case "days":
		return DaySchedule(), nil
	default:
		return nil, errs.New(errs.InvalidInput, "unknown period schedule %q", name)
	}
}

// Name returns the schedule's configured name.
func (s *Schedule) Name() string {
	return s.name
}

// Periods lists the allowed periods in ascending order.
func (s *Schedule) Periods() []PeriodSpec {
	return s.specs
}

// Spec returns the spec for the given period, or InvalidStakingPeriod if the
// period is not part of the schedule.
func (s *Schedule) Spec(p Period) (*PeriodSpec, error) {
	for i := range s.specs {
		if s.specs[i].Period == p {
			return &s.specs[i], nil
		}
	}
	return nil, errs.New(errs.InvalidStakingPeriod, "period %d not in %s schedule", p, s.name)
}
