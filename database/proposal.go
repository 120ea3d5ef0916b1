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
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
)

// GetProposal returns a proposal by ID, or models.ErrProposalNotFound
func (d *Database) GetProposal(
	id uint,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	proposal, err := d.metadata.GetProposal(id, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("get proposal %d: %w", id, err)
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	return proposal, nil
}

// GetProposalsAfter returns up to limit proposals with an ID greater than afterId
func (d *Database) GetProposalsAfter(
	afterId uint,
	limit int,
	txn *Txn,
) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetProposals(afterId, limit, txn.Metadata())
}

// GetProposalsPage returns a page of proposals and the total proposal count
func (d *Database) GetProposalsPage(
	offset int,
	limit int,
	descending bool,
	txn *Txn,
) ([]models.Proposal, int64, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	return d.metadata.GetProposalsPage(
		offset,
		limit,
		descending,
		txn.Metadata(),
	)
}

// SetProposal creates or updates a proposal
func (d *Database) SetProposal(
	proposal *models.Proposal,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetProposal(proposal, txn)
		})
	}
	return d.metadata.SetProposal(proposal, txn.Metadata())
}

// DeleteProposal removes a proposal together with its auxiliary record
func (d *Database) DeleteProposal(
	id uint,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.DeleteProposal(id, txn)
		})
	}
	return d.metadata.DeleteProposal(id, txn.Metadata())
}

// GetProposalAux returns the auxiliary attributes for a proposal. A proposal
// without a stored record gets an empty one
func (d *Database) GetProposalAux(
	proposalId uint,
	txn *Txn,
) (*models.ProposalAux, error) {
	if txn == nil {
		txn = d.MetadataTxn(false)
		defer txn.Release()
	}
	aux, err := d.metadata.GetProposalAux(proposalId, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if aux == nil {
		aux = &models.ProposalAux{
			ProposalID: proposalId,
			Attributes: map[string]any{},
		}
	}
	if aux.Attributes == nil {
		aux.Attributes = map[string]any{}
	}
	return aux, nil
}

// SetProposalAux stores the auxiliary attributes for a proposal
func (d *Database) SetProposalAux(
	aux *models.ProposalAux,
	txn *Txn,
) error {
	if txn == nil {
		return d.MetadataTxn(true).Do(func(txn *Txn) error {
			return d.SetProposalAux(aux, txn)
		})
	}
	return d.metadata.SetProposalAux(aux, txn.Metadata())
}
