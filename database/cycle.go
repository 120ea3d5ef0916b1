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

package database

import (
	"github.com/blinklabs-io/agora/database/models"
)

// GetCycleState returns the cycle state. An uninitialized database yields the
// zero state
func (d *Database) GetCycleState(txn *Txn) (*models.CycleState, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	state, err := d.metadata.GetCycleState(txn.Metadata())
	if err != nil {
		return nil, err
	}
	if state == nil {
		return models.NewCycleState(), nil
	}
	return state, nil
}

// SetCycleState stores the cycle state
func (d *Database) SetCycleState(
	state *models.CycleState,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetCycleState(state, txn)
		})
	}
	return d.metadata.SetCycleState(state, txn.Metadata())
}

// GetCycleStat returns the aggregates for a cycle. A cycle without a record
// yields zero aggregates
func (d *Database) GetCycleStat(
	cycle uint64,
	txn *Txn,
) (*models.CycleStat, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	stat, err := d.metadata.GetCycleStat(cycle, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return &models.CycleStat{Cycle: cycle}, nil
	}
	return stat, nil
}

// GetCycleStats returns the recorded aggregates for cycles in [fromCycle, toCycle]
func (d *Database) GetCycleStats(
	fromCycle uint64,
	toCycle uint64,
	txn *Txn,
) ([]models.CycleStat, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetCycleStats(fromCycle, toCycle, txn.Metadata())
}

// SetCycleStat stores the aggregates for a cycle
func (d *Database) SetCycleStat(
	stat *models.CycleStat,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetCycleStat(stat, txn)
		})
	}
	return d.metadata.SetCycleStat(stat, txn.Metadata())
}

// GetSupportLevel returns the aggregates for a fund type in a cycle. A missing
// record yields zero aggregates
func (d *Database) GetSupportLevel(
	cycle uint64,
	fundType string,
	txn *Txn,
) (*models.SupportLevel, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	level, err := d.metadata.GetSupportLevel(cycle, fundType, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if level == nil {
		return &models.SupportLevel{Cycle: cycle, FundType: fundType}, nil
	}
	return level, nil
}

// SetSupportLevel stores the aggregates for a fund type in a cycle
func (d *Database) SetSupportLevel(
	level *models.SupportLevel,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetSupportLevel(level, txn)
		})
	}
	return d.metadata.SetSupportLevel(level, txn.Metadata())
}
