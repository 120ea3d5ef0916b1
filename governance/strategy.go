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
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/voice"
)

// Proposal types
const (
	TypeAlliance        = "alliance"
	TypeMilestone       = "milestone"
	TypeCampaignFunding = "cmp.funding"
	TypeCampaignInvite  = "cmp.invite"
	TypeSettings        = "settings"
)

// Fund types share their names with the voice scopes
const (
	FundTypeAlliance   = voice.ScopeAlliance
	FundTypeCampaign   = voice.ScopeCampaign
	FundTypeMilestone  = voice.ScopeMilestone
	FundTypeReferendum = voice.ScopeReferendum
)

var FundTypes = []string{
	FundTypeAlliance,
	FundTypeCampaign,
	FundTypeMilestone,
	FundTypeReferendum,
}

// DefaultFunds maps the default fund account tags to their fund types
func DefaultFunds() map[string]string {
	return map[string]string{
		"allies.fund":     FundTypeAlliance,
		"campaigns.fund":  FundTypeCampaign,
		"milestone.fund":  FundTypeMilestone,
		"referendum.fund": FundTypeReferendum,
	}
}

// outcome is the result of a successful evaluation pass
type outcome struct {
	// Amount paid out or locked by the pass
	Payout uint64
	// No further passes are scheduled
	Done bool
}

// openChecker is implemented by strategies whose first pass can stop being
// applicable while the proposal waits for its vote
type openChecker interface {
	CheckOpen(op *opContext, aux Attrs) error
}

// Strategy is the per-type behavior of a proposal. Implementations are
// stateless; all state lives in the proposal and its auxiliary attributes
type Strategy interface {
	Scope() string
	FundType() string
	// Create validates the type attributes and fills in the proposal and
	// its auxiliary record
	Create(op *opContext, p *models.Proposal, attrs Attrs, aux Attrs) error
	Update(op *opContext, p *models.Proposal, attrs Attrs, aux Attrs) error
	Cancel(op *opContext, p *models.Proposal, aux Attrs) error
	RequiredStake(params *Params, p *models.Proposal) uint64
	// StatusOpen runs on the first passing evaluation
	StatusOpen(op *opContext, p *models.Proposal, aux Attrs) (outcome, error)
	// StatusEval runs on every later passing evaluation
	StatusEval(op *opContext, p *models.Proposal, aux Attrs) (outcome, error)
	// StatusRejected undoes what earlier passes did when a proposal fails
	// after its first pass
	StatusRejected(op *opContext, p *models.Proposal, aux Attrs) error
}

var strategies = map[string]Strategy{
	TypeAlliance: &fundingStrategy{
		fundType: FundTypeAlliance,
		mode:     payLock,
		schedule: []uint64{100},
	},
	TypeMilestone: &fundingStrategy{
		fundType: FundTypeMilestone,
		mode:     payTransfer,
		schedule: []uint64{100},
	},
	TypeCampaignFunding: &fundingStrategy{
		fundType: FundTypeCampaign,
		mode:     payTransfer,
		schedule: []uint64{25, 25, 25, 25},
	},
	TypeCampaignInvite: &fundingStrategy{
		fundType: FundTypeCampaign,
		mode:     payInvite,
		schedule: []uint64{25, 25, 25, 25},
	},
	TypeSettings: &settingsStrategy{},
}

// StrategyFor returns the strategy for a proposal type
func StrategyFor(typ string) (Strategy, error) {
	s, ok := strategies[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	return s, nil
}
