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

// GetProposal retrieves a proposal by ID. Returns nil if it does not exist.
func (d *MetadataStoreSqlite) GetProposal(
	id uint,
	txn types.Txn,
) (*models.Proposal, error) {
	var proposal models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.First(&proposal, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposals returns up to limit proposals with an ID greater than afterId,
// in ID order. It's used for keyset iteration over all proposals.
func (d *MetadataStoreSqlite) GetProposals(
	afterId uint,
	limit int,
	txn types.Txn,
) ([]models.Proposal, error) {
	var proposals []models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("id > ?", afterId).
		Order("id ASC").
		Limit(limit).
		Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// GetProposalsPage returns a page of proposals along with the total count
func (d *MetadataStoreSqlite) GetProposalsPage(
	offset int,
	limit int,
	descending bool,
	txn types.Txn,
) ([]models.Proposal, int64, error) {
	var proposals []models.Proposal
	var total int64
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, 0, err
	}
	if result := db.Model(&models.Proposal{}).Count(&total); result.Error != nil {
		return nil, 0, result.Error
	}
	order := "id ASC"
	if descending {
		order = "id DESC"
	}
	if result := db.Order(order).
		Offset(offset).
		Limit(limit).
		Find(&proposals); result.Error != nil {
		return nil, 0, result.Error
	}
	return proposals, total, nil
}

// SetProposal creates or updates a proposal. A zero ID creates a new record
// and populates the ID on the passed model.
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if proposal.ID == 0 {
		return db.Create(proposal).Error
	}
	return db.Save(proposal).Error
}

// DeleteProposal removes a proposal and its auxiliary attributes
func (d *MetadataStoreSqlite) DeleteProposal(
	id uint,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Where("proposal_id = ?", id).
		Delete(&models.ProposalAux{}); result.Error != nil {
		return result.Error
	}
	return db.Delete(&models.Proposal{}, id).Error
}

// GetProposalAux retrieves the type-specific attributes for a proposal.
// Returns nil if there are none.
func (d *MetadataStoreSqlite) GetProposalAux(
	proposalId uint,
	txn types.Txn,
) (*models.ProposalAux, error) {
	var aux models.ProposalAux
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where("proposal_id = ?", proposalId).
		First(&aux); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &aux, nil
}

// SetProposalAux creates or replaces the attributes for a proposal
func (d *MetadataStoreSqlite) SetProposalAux(
	aux *models.ProposalAux,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"attributes"}),
	}
	return db.Clauses(onConflict).Create(aux).Error
}
