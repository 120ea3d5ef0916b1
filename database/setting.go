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

// GetSetting returns a setting by name, or models.ErrSettingNotFound
func (d *Database) GetSetting(
	name string,
	txn *Txn,
) (*models.Setting, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	setting, err := d.metadata.GetSetting(name, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, models.ErrSettingNotFound
	}
	return setting, nil
}

// GetSettings returns every stored setting
func (d *Database) GetSettings(txn *Txn) ([]models.Setting, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetSettings(txn.Metadata())
}

// SetSetting creates or updates a setting
func (d *Database) SetSetting(
	setting *models.Setting,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetSetting(setting, txn)
		})
	}
	return d.metadata.SetSetting(setting, txn.Metadata())
}
