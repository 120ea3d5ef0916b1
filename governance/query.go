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

package governance

import (
	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
)

// ProposalDetail is a proposal together with its auxiliary attributes
type ProposalDetail struct {
	models.Proposal
	Attributes Attrs `json:"attributes"`
}

func (e *Engine) Proposal(id uint) (*ProposalDetail, error) {
	var ret *ProposalDetail
	err := e.view(func(txn *database.Txn) error {
		p, err := e.db.GetProposal(id, txn)
		if err != nil {
			return err
		}
		aux, err := e.db.GetProposalAux(id, txn)
		if err != nil {
			return err
		}
		ret = &ProposalDetail{
			Proposal:   *p,
			Attributes: Attrs(aux.Attributes),
		}
		return nil
	})
	return ret, err
}

// Proposals returns a page of proposals and the total count
func (e *Engine) Proposals(offset int, limit int, descending bool) ([]models.Proposal, int64, error) {
	var proposals []models.Proposal
	var total int64
	err := e.view(func(txn *database.Txn) error {
		var err error
		proposals, total, err = e.db.GetProposalsPage(offset, limit, descending, txn)
		return err
	})
	return proposals, total, err
}

func (e *Engine) Votes(id uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := e.view(func(txn *database.Txn) error {
		if _, err := e.db.GetProposal(id, txn); err != nil {
			return err
		}
		var err error
		votes, err = e.db.GetVotes(id, txn)
		return err
	})
	return votes, err
}

// Voice returns an account's voice balance per scope
func (e *Engine) Voice(account string) (map[string]uint64, error) {
	var ret map[string]uint64
	err := e.view(func(txn *database.Txn) error {
		var err error
		ret, err = e.voices.Balances(account, txn)
		return err
	})
	return ret, err
}

// Delegation returns the delegatee of an account in scope, or nil
func (e *Engine) Delegation(delegator string, scope string) (*models.Delegation, error) {
	var ret *models.Delegation
	err := e.view(func(txn *database.Txn) error {
		var err error
		ret, err = e.graph.Delegation(delegator, scope, txn)
		return err
	})
	return ret, err
}

func (e *Engine) CycleState() (*models.CycleState, error) {
	var ret *models.CycleState
	err := e.view(func(txn *database.Txn) error {
		var err error
		ret, err = e.db.GetCycleState(txn)
		return err
	})
	return ret, err
}

func (e *Engine) CycleStat(cycle uint64) (*models.CycleStat, error) {
	var ret *models.CycleStat
	err := e.view(func(txn *database.Txn) error {
		var err error
		ret, err = e.db.GetCycleStat(cycle, txn)
		return err
	})
	return ret, err
}

func (e *Engine) SupportLevel(cycle uint64, fundType string) (*models.SupportLevel, error) {
	var ret *models.SupportLevel
	err := e.view(func(txn *database.Txn) error {
		var err error
		ret, err = e.db.GetSupportLevel(cycle, fundType, txn)
		return err
	})
	return ret, err
}
