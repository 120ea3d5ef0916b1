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

package api

import (
	"context"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
)

// GovernanceNode is what the API server needs from the governance engine.
// It decouples the HTTP layer from the concrete engine and enables testing
// with mock implementations
type GovernanceNode interface {
	CycleState() (*models.CycleState, error)
	CycleStat(cycle uint64) (*models.CycleStat, error)
	Proposal(id uint) (*governance.ProposalDetail, error)
	// Proposals returns a page of proposals and the total count
	Proposals(offset int, limit int, descending bool) ([]models.Proposal, int64, error)
	Votes(id uint) ([]models.Vote, error)
	Voice(account string) (map[string]uint64, error)
	Delegation(delegator string, scope string) (*models.Delegation, error)

	Create(ctx context.Context, caller string, attrs governance.Attrs) (uint, error)
	Update(ctx context.Context, caller string, id uint, attrs governance.Attrs) error
	Cancel(ctx context.Context, caller string, id uint) error
	Stake(ctx context.Context, caller string, id uint, quantity uint64) error
	Favour(ctx context.Context, caller string, id uint, amount uint64) error
	Against(ctx context.Context, caller string, id uint, amount uint64) error
	Neutral(ctx context.Context, caller string, id uint, amount uint64) error
	RevertVote(ctx context.Context, caller string, id uint) error
	Delegate(ctx context.Context, caller string, delegatee string, scope string) error
	Undelegate(ctx context.Context, caller string, delegator string, delegatee string, scope string) error
	AddActive(ctx context.Context, caller string) error
}

// EventLog returns the most recent governance events, newest first
type EventLog interface {
	Recent(limit int) []event.Event
}
