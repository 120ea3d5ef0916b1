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

// GetVote returns the vote cast by voter on a proposal, or models.ErrVoteNotFound
func (d *Database) GetVote(
	proposalId uint,
	voter string,
	txn *Txn,
) (*models.Vote, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	vote, err := d.metadata.GetVote(proposalId, voter, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, models.ErrVoteNotFound
	}
	return vote, nil
}

// GetVotes returns all votes recorded against a proposal
func (d *Database) GetVotes(
	proposalId uint,
	txn *Txn,
) ([]models.Vote, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetVotes(proposalId, txn.Metadata())
}

// SetVote creates or updates a vote
func (d *Database) SetVote(
	vote *models.Vote,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetVote(vote, txn)
		})
	}
	return d.metadata.SetVote(vote, txn.Metadata())
}
