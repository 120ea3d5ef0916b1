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

// GetVoice returns the voice record for an account in a scope, or
// models.ErrVoiceNotFound
func (d *Database) GetVoice(
	account string,
	scope string,
	txn *Txn,
) (*models.Voice, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	voice, err := d.metadata.GetVoice(account, scope, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if voice == nil {
		return nil, models.ErrVoiceNotFound
	}
	return voice, nil
}

// GetVoicesAfter returns up to limit voice records with an ID greater than
// afterId. An empty scope matches every scope
func (d *Database) GetVoicesAfter(
	scope string,
	afterId uint,
	limit int,
	txn *Txn,
) ([]models.Voice, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetVoices(scope, afterId, limit, txn.Metadata())
}

// GetAccountVoices returns an account's voice records across all scopes
func (d *Database) GetAccountVoices(
	account string,
	txn *Txn,
) ([]models.Voice, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetAccountVoices(account, txn.Metadata())
}

// SetVoice creates or updates a voice balance
func (d *Database) SetVoice(
	voice *models.Voice,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetVoice(voice, txn)
		})
	}
	return d.metadata.SetVoice(voice, txn.Metadata())
}

// DeleteAccountVoices removes an account's voice in every scope
func (d *Database) DeleteAccountVoices(
	account string,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.DeleteAccountVoices(account, txn)
		})
	}
	return d.metadata.DeleteAccountVoices(account, txn.Metadata())
}
