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

// GetVote retrieves the vote cast by voter on a proposal. Returns nil if the
// voter has not voted.
func (d *MetadataStoreSqlite) GetVote(
	proposalId uint,
	voter string,
	txn types.Txn,
) (*models.Vote, error) {
	var vote models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalId,
		voter,
	).First(&vote); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &vote, nil
}

// GetVotes returns all votes for a proposal
func (d *MetadataStoreSqlite) GetVotes(
	proposalId uint,
	txn types.Txn,
) ([]models.Vote, error) {
	var votes []models.Vote
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalId).
		Order("id ASC").
		Find(&votes); result.Error != nil {
		return nil, result.Error
	}
	return votes, nil
}

// SetVote creates or updates a vote, keyed by proposal and voter
func (d *MetadataStoreSqlite) SetVote(
	vote *models.Vote,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if vote.ID != 0 {
		return db.Save(vote).Error
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "voter"},
		},
		DoUpdates: clause.AssignmentColumns(
			[]string{"option", "amount", "cycle", "mimic"},
		),
	}
	return db.Clauses(onConflict).Create(vote).Error
}
