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

// GetVoice retrieves the voice balance for an account in a scope. Returns nil
// if the account has no voice in that scope.
func (d *MetadataStoreSqlite) GetVoice(
	account string,
	scope string,
	txn types.Txn,
) (*models.Voice, error) {
	var voice models.Voice
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"account = ? AND scope = ?",
		account,
		scope,
	).First(&voice); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &voice, nil
}

// GetVoices returns up to limit voice records with an ID greater than afterId
func (d *MetadataStoreSqlite) GetVoices(
	scope string,
	afterId uint,
	limit int,
	txn types.Txn,
) ([]models.Voice, error) {
	var voices []models.Voice
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Where("id > ?", afterId)
	if scope != "" {
		query = query.Where("scope = ?", scope)
	}
	if result := query.Order("id ASC").
		Limit(limit).
		Find(&voices); result.Error != nil {
		return nil, result.Error
	}
	return voices, nil
}

// GetAccountVoices returns the voice records for an account across all scopes
func (d *MetadataStoreSqlite) GetAccountVoices(
	account string,
	txn types.Txn,
) ([]models.Voice, error) {
	var voices []models.Voice
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("account = ?", account).
		Order("scope ASC").
		Find(&voices); result.Error != nil {
		return nil, result.Error
	}
	return voices, nil
}

// SetVoice creates or updates a voice balance
func (d *MetadataStoreSqlite) SetVoice(
	voice *models.Voice,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	// Records loaded from the store are updated in place
	if voice.ID != 0 {
		return db.Save(voice).Error
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account"},
			{Name: "scope"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"balance"}),
	}
	return db.Clauses(onConflict).Create(voice).Error
}

// DeleteAccountVoices removes all voice records for an account
func (d *MetadataStoreSqlite) DeleteAccountVoices(
	account string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("account = ?", account).Delete(&models.Voice{}).Error
}
