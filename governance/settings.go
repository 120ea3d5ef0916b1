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
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/shopspring/decimal"
)

// Setting names
const (
	SettingMajority        = "prop.majority"
	SettingQuorumMinPct    = "quorum.min.pct"
	SettingQuorumMaxPct    = "quorum.max.pct"
	SettingQuorumWindow    = "quorum.window"
	SettingMaxCycles       = "prop.cycles.max"
	SettingRepReward       = "prop.rep.reward"
	SettingRepPenalty      = "prop.rep.penalty"
	SettingVoteRepReward   = "vote.rep.reward"
	SettingDecayPct        = "decay.pct"
	SettingDecayInterval   = "decay.interval"
	SettingDecayDelay      = "decay.delay"
	SettingDelegationDepth = "deleg.depth"
	SettingBatchSize       = "batch.size"
	SettingBatchDelay      = "batch.delay"
	SettingTitleMax        = "text.title.max"
	SettingSummaryMax      = "text.summary.max"
	SettingDescriptionMax  = "text.description.max"
	SettingImageMax        = "text.image.max"
	SettingUrlMax          = "text.url.max"
)

func stakePctSetting(fundType string) string {
	return "prop." + fundType + ".pct"
}

func stakeMinSetting(fundType string) string {
	return "prop." + fundType + ".min"
}

func stakeCapSetting(fundType string) string {
	return "prop." + fundType + ".cap"
}

// DefaultSettings returns the initial value and impact tier of every setting
// the engine reads
func DefaultSettings() []models.Setting {
	setting := func(name string, value int64, impact uint8) models.Setting {
		return models.Setting{
			Name:   name,
			Value:  decimal.NewFromInt(value),
			Impact: impact,
		}
	}
	ret := []models.Setting{
		{
			Name:   SettingMajority,
			Value:  decimal.RequireFromString("0.8"),
			Impact: models.ImpactHigh,
		},
		setting(SettingQuorumMinPct, 5, models.ImpactHigh),
		setting(SettingQuorumMaxPct, 20, models.ImpactHigh),
		setting(SettingQuorumWindow, 3, models.ImpactMedium),
		setting(SettingMaxCycles, 24, models.ImpactMedium),
		setting(SettingRepReward, 5, models.ImpactLow),
		setting(SettingRepPenalty, 10, models.ImpactLow),
		setting(SettingVoteRepReward, 1, models.ImpactLow),
		setting(SettingDecayPct, 15, models.ImpactHigh),
		setting(SettingDecayInterval, 86400, models.ImpactMedium),
		setting(SettingDecayDelay, 0, models.ImpactMedium),
		setting(SettingDelegationDepth, 10, models.ImpactMedium),
		setting(SettingBatchSize, 50, models.ImpactLow),
		setting(SettingBatchDelay, 1, models.ImpactLow),
		setting(SettingTitleMax, 128, models.ImpactLow),
		setting(SettingSummaryMax, 1024, models.ImpactLow),
		setting(SettingDescriptionMax, 8192, models.ImpactLow),
		setting(SettingImageMax, 512, models.ImpactLow),
		setting(SettingUrlMax, 512, models.ImpactLow),
	}
	for _, fundType := range FundTypes {
		ret = append(
			ret,
			setting(stakePctSetting(fundType), 5, models.ImpactMedium),
			setting(stakeMinSetting(fundType), 100, models.ImpactMedium),
			setting(stakeCapSetting(fundType), 25000, models.ImpactMedium),
		)
	}
	return ret
}

// Settings is the database backed SettingsStore
type Settings struct {
	db *database.Database
}

func NewSettings(db *database.Database) *Settings {
	return &Settings{db: db}
}

// Seed stores the default value of every setting that does not exist yet.
// Values in overrides replace the defaults
func (s *Settings) Seed(
	overrides map[string]decimal.Decimal,
	txn *database.Txn,
) error {
	if txn == nil {
		return s.db.Transaction(true).Do(func(txn *database.Txn) error {
			return s.Seed(overrides, txn)
		})
	}
	defaults := DefaultSettings()
	for name := range overrides {
		known := slices.ContainsFunc(defaults, func(m models.Setting) bool {
			return m.Name == name
		})
		if !known {
			return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
		}
	}
	for _, def := range defaults {
		_, err := s.db.GetSetting(def.Name, txn)
		if err == nil {
			continue
		}
		if !errors.Is(err, models.ErrSettingNotFound) {
			return err
		}
		if v, ok := overrides[def.Name]; ok {
			def.Value = v
		}
		if err := s.db.SetSetting(&def, txn); err != nil {
			return err
		}
	}
	_, err := LoadParams(s, txn)
	return err
}

func (s *Settings) get(txn *database.Txn, name string) (*models.Setting, error) {
	setting, err := s.db.GetSetting(name, txn)
	if err != nil {
		if errors.Is(err, models.ErrSettingNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSetting, name)
		}
		return nil, err
	}
	return setting, nil
}

func (s *Settings) Get(txn *database.Txn, name string) (decimal.Decimal, error) {
	setting, err := s.get(txn, name)
	if err != nil {
		return decimal.Zero, err
	}
	return setting.Value, nil
}

// Set changes the value of an existing setting
func (s *Settings) Set(
	txn *database.Txn,
	name string,
	value decimal.Decimal,
) error {
	setting, err := s.get(txn, name)
	if err != nil {
		return err
	}
	setting.Value = value
	return s.db.SetSetting(setting, txn)
}

func (s *Settings) Impact(txn *database.Txn, name string) (uint8, error) {
	setting, err := s.get(txn, name)
	if err != nil {
		return 0, err
	}
	return setting.Impact, nil
}

// List returns every stored setting
func (s *Settings) List(txn *database.Txn) ([]models.Setting, error) {
	return s.db.GetSettings(txn)
}
