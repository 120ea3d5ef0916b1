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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetCycleState returns the cycle state row. Returns nil if it has not been
// initialized yet.
func (d *MetadataStoreSqlite) GetCycleState(
	txn types.Txn,
) (*models.CycleState, error) {
	var state models.CycleState
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&state); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &state, nil
}

// SetCycleState stores the cycle state row
func (d *MetadataStoreSqlite) SetCycleState(
	state *models.CycleState,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(
			[]string{"cycle", "cycle_started_at", "last_decay_at"},
		),
	}).Create(state).Error
}

// GetCycleStat returns the aggregates for a cycle. Returns nil if the cycle
// has no record.
func (d *MetadataStoreSqlite) GetCycleStat(
	cycle uint64,
	txn types.Txn,
) (*models.CycleStat, error) {
	var stat models.CycleStat
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("cycle = ?", cycle).First(&stat); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &stat, nil
}

// GetCycleStats returns the aggregates for cycles in [fromCycle, toCycle]
func (d *MetadataStoreSqlite) GetCycleStats(
	fromCycle uint64,
	toCycle uint64,
	txn types.Txn,
) ([]models.CycleStat, error) {
	var stats []models.CycleStat
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"cycle >= ? AND cycle <= ?",
		fromCycle,
		toCycle,
	).Order("cycle ASC").Find(&stats); result.Error != nil {
		return nil, result.Error
	}
	return stats, nil
}

// SetCycleStat creates or replaces the aggregates for a cycle
func (d *MetadataStoreSqlite) SetCycleStat(
	stat *models.CycleStat,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cycle"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"started_at",
			"quorum_base",
			"active_accounts",
			"num_proposals",
			"num_votes",
			"total_voice_cast",
			"total_favour",
			"total_against",
		}),
	}).Create(stat).Error
}

// GetSupportLevel returns the aggregates for a fund type in a cycle. Returns
// nil if there is no record.
func (d *MetadataStoreSqlite) GetSupportLevel(
	cycle uint64,
	fundType string,
	txn types.Txn,
) (*models.SupportLevel, error) {
	var level models.SupportLevel
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"cycle = ? AND fund_type = ?",
		cycle,
		fundType,
	).First(&level); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &level, nil
}

// SetSupportLevel creates or replaces the aggregates for a fund type in a cycle
func (d *MetadataStoreSqlite) SetSupportLevel(
	level *models.SupportLevel,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if level.ID != 0 {
		return db.Save(level).Error
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "cycle"},
			{Name: "fund_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"num_proposals",
			"num_votes",
			"total_voice_cast",
			"total_favour",
			"total_against",
			"quorum_percent",
			"votes_needed",
		}),
	}).Create(level).Error
}
