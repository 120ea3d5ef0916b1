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

// SetActiveAccount marks an account as active in governance
func (d *Database) SetActiveAccount(
	account string,
	activatedAt int64,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetActiveAccount(account, activatedAt, txn)
		})
	}
	return d.metadata.SetActiveAccount(
		&models.ActiveAccount{
			Account:     account,
			ActivatedAt: activatedAt,
		},
		txn.Metadata(),
	)
}

// DeleteActiveAccount clears the activity marker for an account
func (d *Database) DeleteActiveAccount(
	account string,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.DeleteActiveAccount(account, txn)
		})
	}
	return d.metadata.DeleteActiveAccount(account, txn.Metadata())
}

// CountActiveAccounts returns the number of active accounts
func (d *Database) CountActiveAccounts(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	count, err := d.metadata.CountActiveAccounts(txn.Metadata())
	if err != nil {
		return 0, err
	}
	return uint64(count), nil //nolint:gosec
}

// IncrementParticipant adds one to an account's participation counter for
// a cycle
func (d *Database) IncrementParticipant(
	account string,
	cycle uint64,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.IncrementParticipant(account, cycle, txn)
		})
	}
	participant, err := d.metadata.GetParticipant(account, cycle, txn.Metadata())
	if err != nil {
		return err
	}
	if participant == nil {
		participant = &models.Participant{Account: account, Cycle: cycle}
	}
	participant.Count++
	return d.metadata.SetParticipant(participant, txn.Metadata())
}

// GetParticipant returns the participation counter for an account in a
// cycle. Accounts that have not participated get a zero counter
func (d *Database) GetParticipant(
	account string,
	cycle uint64,
	txn *Txn,
) (*models.Participant, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	participant, err := d.metadata.GetParticipant(account, cycle, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return &models.Participant{Account: account, Cycle: cycle}, nil
	}
	return participant, nil
}

// GetParticipantsAfter returns up to limit participation counters of cycles
// before beforeCycle with an ID greater than afterId
func (d *Database) GetParticipantsAfter(
	afterId uint,
	beforeCycle uint64,
	limit int,
	txn *Txn,
) ([]models.Participant, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetParticipants(afterId, beforeCycle, limit, txn.Metadata())
}

// DeleteParticipants removes the participation counters with the given IDs
func (d *Database) DeleteParticipants(
	ids []uint,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.DeleteParticipants(ids, txn)
		})
	}
	return d.metadata.DeleteParticipants(ids, txn.Metadata())
}
