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

// GetDelegation returns the delegation made by delegator in a scope. Returns
// nil if there is none.
func (d *MetadataStoreSqlite) GetDelegation(
	delegator string,
	scope string,
	txn types.Txn,
) (*models.Delegation, error) {
	var delegation models.Delegation
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"delegator = ? AND scope = ?",
		delegator,
		scope,
	).First(&delegation); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &delegation, nil
}

// GetDelegators returns up to limit delegations pointing at delegatee in a
// scope, with an ID greater than afterId
func (d *MetadataStoreSqlite) GetDelegators(
	delegatee string,
	scope string,
	afterId uint,
	limit int,
	txn types.Txn,
) ([]models.Delegation, error) {
	var delegations []models.Delegation
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"delegatee = ? AND scope = ? AND id > ?",
		delegatee,
		scope,
		afterId,
	).Order("id ASC").
		Limit(limit).
		Find(&delegations); result.Error != nil {
		return nil, result.Error
	}
	return delegations, nil
}

// SetDelegation creates or replaces the delegation for a delegator and scope
func (d *MetadataStoreSqlite) SetDelegation(
	delegation *models.Delegation,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if delegation.ID != 0 {
		return db.Save(delegation).Error
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "delegator"},
			{Name: "scope"},
		},
		DoUpdates: clause.AssignmentColumns(
			[]string{"delegatee", "weight", "timestamp"},
		),
	}
	return db.Clauses(onConflict).Create(delegation).Error
}

// DeleteDelegation removes the delegation for a delegator and scope
func (d *MetadataStoreSqlite) DeleteDelegation(
	delegator string,
	scope string,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where(
		"delegator = ? AND scope = ?",
		delegator,
		scope,
	).Delete(&models.Delegation{}).Error
}
