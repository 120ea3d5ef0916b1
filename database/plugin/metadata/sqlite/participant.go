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

// SetActiveAccount marks an account as active. Existing records are left as-is
func (d *MetadataStoreSqlite) SetActiveAccount(
	active *models.ActiveAccount,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoNothing: true,
	}).Create(active).Error
}

// DeleteActiveAccount removes the active marker for an account
func (d *MetadataStoreSqlite) DeleteActiveAccount(
	account string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("account = ?", account).
		Delete(&models.ActiveAccount{}).Error
}

// CountActiveAccounts returns the number of active accounts
func (d *MetadataStoreSqlite) CountActiveAccounts(
	txn types.Txn,
) (int64, error) {
	var count int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	if result := db.Model(&models.ActiveAccount{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetParticipant returns the participation record for an account in a
// cycle. Returns nil if the account did not participate in that cycle.
func (d *MetadataStoreSqlite) GetParticipant(
	account string,
	cycle uint64,
	txn types.Txn,
) (*models.Participant, error) {
	var participant models.Participant
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("account = ? AND cycle = ?", account, cycle).
		First(&participant); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &participant, nil
}

// GetParticipants returns up to limit participants of cycles before
// beforeCycle with an ID greater than afterId
func (d *MetadataStoreSqlite) GetParticipants(
	afterId uint,
	beforeCycle uint64,
	limit int,
	txn types.Txn,
) ([]models.Participant, error) {
	var participants []models.Participant
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("id > ? AND cycle < ?", afterId, beforeCycle).
		Order("id ASC").
		Limit(limit).
		Find(&participants); result.Error != nil {
		return nil, result.Error
	}
	return participants, nil
}

// SetParticipant creates or updates a participation record
func (d *MetadataStoreSqlite) SetParticipant(
	participant *models.Participant,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if participant.ID != 0 {
		return db.Save(participant).Error
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}, {Name: "cycle"}},
		DoUpdates: clause.AssignmentColumns([]string{"count"}),
	}).Create(participant).Error
}

// DeleteParticipants removes the participation records with the given IDs
func (d *MetadataStoreSqlite) DeleteParticipants(
	ids []uint,
	txn types.Txn,
) error {
	if len(ids) == 0 {
		return nil
	}
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Delete(&models.Participant{}, ids).Error
}
