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

// GetDelegation returns the outgoing delegation for a delegator in a scope,
// or models.ErrDelegationNotFound
func (d *Database) GetDelegation(
	delegator string,
	scope string,
	txn *Txn,
) (*models.Delegation, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	delegation, err := d.metadata.GetDelegation(
		delegator,
		scope,
		txn.Metadata(),
	)
	if err != nil {
		return nil, err
	}
	if delegation == nil {
		return nil, models.ErrDelegationNotFound
	}
	return delegation, nil
}

// GetDelegatorsAfter returns up to limit delegations pointing at delegatee in
// a scope with an ID greater than afterId
func (d *Database) GetDelegatorsAfter(
	delegatee string,
	scope string,
	afterId uint,
	limit int,
	txn *Txn,
) ([]models.Delegation, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetDelegators(
		delegatee,
		scope,
		afterId,
		limit,
		txn.Metadata(),
	)
}

// SetDelegation creates or replaces a delegator's edge in a scope
func (d *Database) SetDelegation(
	delegation *models.Delegation,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetDelegation(delegation, txn)
		})
	}
	return d.metadata.SetDelegation(delegation, txn.Metadata())
}

// DeleteDelegation removes a delegator's edge in a scope
func (d *Database) DeleteDelegation(
	delegator string,
	scope string,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.DeleteDelegation(delegator, scope, txn)
		})
	}
	return d.metadata.DeleteDelegation(delegator, scope, txn.Metadata())
}
