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

// GetSetting returns a setting by name. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetSetting(
	name string,
	txn types.Txn,
) (*models.Setting, error) {
	var setting models.Setting
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("name = ?", name).First(&setting); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &setting, nil
}

// GetSettings returns all settings ordered by name
func (d *MetadataStoreSqlite) GetSettings(
	txn types.Txn,
) ([]models.Setting, error) {
	var settings []models.Setting
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Order("name ASC").Find(&settings); result.Error != nil {
		return nil, result.Error
	}
	return settings, nil
}

// SetSetting creates or updates a setting by name
func (d *MetadataStoreSqlite) SetSetting(
	setting *models.Setting,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if setting.ID != 0 {
		return db.Save(setting).Error
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "impact"}),
	}).Create(setting).Error
}
