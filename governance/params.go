// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"fmt"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/tally"
	"github.com/shopspring/decimal"
)

// StakeRule bounds the stake a proposal must reach to become active
type StakeRule struct {
	Pct decimal.Decimal
	Min uint64
	Cap uint64
}

// Required returns clamp(quantity * pct / 100, min, cap)
func (r StakeRule) Required(quantity uint64) uint64 {
	required := decimal.NewFromUint64(quantity).
		Mul(r.Pct).
		Div(decimal.NewFromInt(100)).
		Floor()
	capValue := decimal.NewFromUint64(r.Cap)
	if required.GreaterThan(capValue) {
		required = capValue
	}
	ret := required.BigInt().Uint64()
	return max(ret, r.Min)
}

// TextLimits holds the maximum character counts of the text attributes
type TextLimits struct {
	Title       int
	Summary     int
	Description int
	Image       int
	Url         int
}

// Params is an immutable snapshot of the governance settings, read once per
// operation
type Params struct {
	Majority        decimal.Decimal
	Quorum          tally.Bounds
	QuorumWindow    uint64
	Stake           map[string]StakeRule
	MaxCycles       uint32
	RepReward       uint64
	RepPenalty      uint64
	VoteRepReward   uint64
	DecayPct        decimal.Decimal
	DecayInterval   time.Duration
	DecayDelay      time.Duration
	DelegationDepth int
	BatchSize       int
	BatchDelay      time.Duration
	Text            TextLimits
}

type paramReader struct {
	settings SettingsStore
	txn      *database.Txn
	err      error
}

func (r *paramReader) decimal(name string) decimal.Decimal {
	if r.err != nil {
		return decimal.Zero
	}
	v, err := r.settings.Get(r.txn, name)
	if err != nil {
		r.err = fmt.Errorf("read setting %s: %w", name, err)
		return decimal.Zero
	}
	return v
}

func (r *paramReader) uint64(name string) uint64 {
	v := r.decimal(name)
	if r.err != nil {
		return 0
	}
	if v.IsNegative() {
		r.err = fmt.Errorf("%w: %s is negative", ErrInvalidSetting, name)
		return 0
	}
	return v.Floor().BigInt().Uint64()
}

func (r *paramReader) uint32(name string) uint32 {
	return uint32(min(r.uint64(name), uint64(^uint32(0)))) //nolint:gosec
}

func (r *paramReader) int(name string) int {
	return int(min(r.uint64(name), uint64(1<<31-1))) //nolint:gosec
}

func (r *paramReader) seconds(name string) time.Duration {
	return time.Duration(r.int(name)) * time.Second
}

// LoadParams reads a settings snapshot
func LoadParams(settings SettingsStore, txn *database.Txn) (*Params, error) {
	r := &paramReader{settings: settings, txn: txn}
	p := &Params{
		Majority: r.decimal(SettingMajority),
		Quorum: tally.Bounds{
			MinPct: r.uint32(SettingQuorumMinPct),
			MaxPct: r.uint32(SettingQuorumMaxPct),
		},
		QuorumWindow:    r.uint64(SettingQuorumWindow),
		Stake:           make(map[string]StakeRule, len(FundTypes)),
		MaxCycles:       r.uint32(SettingMaxCycles),
		RepReward:       r.uint64(SettingRepReward),
		RepPenalty:      r.uint64(SettingRepPenalty),
		VoteRepReward:   r.uint64(SettingVoteRepReward),
		DecayPct:        r.decimal(SettingDecayPct),
		DecayInterval:   r.seconds(SettingDecayInterval),
		DecayDelay:      r.seconds(SettingDecayDelay),
		DelegationDepth: r.int(SettingDelegationDepth),
		BatchSize:       max(r.int(SettingBatchSize), 1),
		BatchDelay:      r.seconds(SettingBatchDelay),
		Text: TextLimits{
			Title:       r.int(SettingTitleMax),
			Summary:     r.int(SettingSummaryMax),
			Description: r.int(SettingDescriptionMax),
			Image:       r.int(SettingImageMax),
			Url:         r.int(SettingUrlMax),
		},
	}
	for _, fundType := range FundTypes {
		p.Stake[fundType] = StakeRule{
			Pct: r.decimal(stakePctSetting(fundType)),
			Min: r.uint64(stakeMinSetting(fundType)),
			Cap: r.uint64(stakeCapSetting(fundType)),
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Params) validate() error {
	switch {
	case !p.Majority.IsPositive() || p.Majority.GreaterThan(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: %s must be in (0, 1]", ErrInvalidSetting, SettingMajority)
	case p.Quorum.MinPct > p.Quorum.MaxPct:
		return fmt.Errorf(
			"%w: %s exceeds %s",
			ErrInvalidSetting,
			SettingQuorumMinPct,
			SettingQuorumMaxPct,
		)
	case p.Quorum.MaxPct > 100:
		return fmt.Errorf("%w: %s exceeds 100", ErrInvalidSetting, SettingQuorumMaxPct)
	case p.DecayPct.IsNegative() || p.DecayPct.GreaterThan(decimal.NewFromInt(100)):
		return fmt.Errorf("%w: %s must be in [0, 100]", ErrInvalidSetting, SettingDecayPct)
	case p.DecayInterval <= 0:
		return fmt.Errorf("%w: %s must be positive", ErrInvalidSetting, SettingDecayInterval)
	}
	for fundType, rule := range p.Stake {
		if rule.Pct.IsNegative() {
			return fmt.Errorf(
				"%w: %s is negative",
				ErrInvalidSetting,
				stakePctSetting(fundType),
			)
		}
	}
	return nil
}

// overlaySettings reads through to settings except for one candidate value
type overlaySettings struct {
	SettingsStore
	name  string
	value decimal.Decimal
}

func (o overlaySettings) Get(txn *database.Txn, name string) (decimal.Decimal, error) {
	if name == o.name {
		return o.value, nil
	}
	return o.SettingsStore.Get(txn, name)
}

// CheckSetting reports whether the params snapshot stays valid with name set
// to value
func CheckSetting(
	settings SettingsStore,
	txn *database.Txn,
	name string,
	value decimal.Decimal,
) error {
	_, err := LoadParams(overlaySettings{SettingsStore: settings, name: name, value: value}, txn)
	return err
}
