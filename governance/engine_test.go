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

package governance_test

import (
	"context"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/collab"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fundBalance = 10000

type harness struct {
	t          *testing.T
	ctx        context.Context
	db         *database.Database
	sched      *scheduler.Scheduler
	engine     *governance.Engine
	settings   *governance.Settings
	tokens     *collab.Tokens
	escrow     *collab.Escrow
	accounts   *collab.Accounts
	onboarding *collab.Onboarding
	now        time.Time
}

func newHarness(t *testing.T, overrides map[string]decimal.Decimal) *harness {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	h := &harness{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		settings: governance.NewSettings(db),
		tokens:   collab.NewTokens(),
		accounts: collab.NewAccounts(),
		now:      time.Unix(1_700_000_000, 0),
	}
	h.escrow = collab.NewEscrow(h.tokens)
	h.onboarding = collab.NewOnboarding(h.tokens)
	require.NoError(t, h.settings.Seed(overrides, nil))
	h.sched, err = scheduler.New(scheduler.Config{
		Database: db,
		Now:      h.clock,
	})
	require.NoError(t, err)
	h.engine, err = governance.New(governance.Config{
		Database:   db,
		Scheduler:  h.sched,
		Tokens:     h.tokens,
		Escrow:     h.escrow,
		Accounts:   h.accounts,
		Onboarding: h.onboarding,
		Settings:   h.settings,
		Now:        h.clock,
	})
	require.NoError(t, err)
	require.NoError(t, h.engine.Bootstrap(h.ctx))
	h.accounts.OnTrustChange(h.engine.ChangeTrust)
	for fund := range governance.DefaultFunds() {
		h.tokens.Issue(fund, fundBalance)
	}
	return h
}

func (h *harness) clock() time.Time {
	return h.now
}

// citizen grants citizenship, which recovers the account's voice from its
// reputation, and marks the account active
func (h *harness) citizen(account string, reputation uint64, tokens uint64) {
	h.t.Helper()
	h.accounts.SetReputation(account, reputation)
	require.NoError(h.t, h.accounts.SetCitizen(h.ctx, account, true))
	require.NoError(h.t, h.engine.AddActive(h.ctx, account))
	if tokens > 0 {
		h.tokens.Issue(account, tokens)
	}
}

func (h *harness) advance() {
	h.t.Helper()
	h.now = h.now.Add(time.Hour)
	require.NoError(h.t, h.engine.AdvanceCycle(h.ctx))
	require.NoError(h.t, h.sched.Drain(h.ctx))
}

func (h *harness) drain() {
	h.t.Helper()
	require.NoError(h.t, h.sched.Drain(h.ctx))
}

func (h *harness) proposal(id uint) *governance.ProposalDetail {
	h.t.Helper()
	p, err := h.engine.Proposal(id)
	require.NoError(h.t, err)
	return p
}

func (h *harness) voice(account string, scope string) uint64 {
	h.t.Helper()
	balances, err := h.engine.Voice(account)
	require.NoError(h.t, err)
	return balances[scope]
}

func (h *harness) reputation(account string) uint64 {
	h.t.Helper()
	score, err := h.accounts.ReputationScore(nil, account)
	require.NoError(h.t, err)
	return score
}

func textAttrs(creator string, typ string, fund string) governance.Attrs {
	return governance.Attrs{
		governance.AttrCreator:     creator,
		governance.AttrType:        typ,
		governance.AttrFund:        fund,
		governance.AttrTitle:       "Community garden",
		governance.AttrSummary:     "Plant a garden on the commons",
		governance.AttrDescription: "A longer description of the garden",
		governance.AttrImage:       "ipfs://garden.png",
		governance.AttrUrl:         "https://example.org/garden",
	}
}

func fundingAttrs(creator string, typ string, fund string, quantity uint64) governance.Attrs {
	attrs := textAttrs(creator, typ, fund)
	attrs[governance.AttrRecipient] = "dave"
	attrs[governance.AttrQuantity] = quantity
	return attrs
}

// activeProposal creates, stakes and activates a proposal
func (h *harness) activeProposal(attrs governance.Attrs, stake uint64) uint {
	h.t.Helper()
	creator, err := attrs.String(governance.AttrCreator)
	require.NoError(h.t, err)
	id, err := h.engine.Create(h.ctx, creator, attrs)
	require.NoError(h.t, err)
	require.NoError(h.t, h.engine.Stake(h.ctx, creator, id, stake))
	h.advance()
	p := h.proposal(id)
	require.Equal(h.t, models.StageActive, p.Stage)
	require.Equal(h.t, models.StatusOpen, p.Status)
	return id
}

func TestFundingProposalLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("carol", 50, 1000)

	id, err := h.engine.Create(
		h.ctx,
		"carol",
		fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000),
	)
	require.NoError(t, err)
	p := h.proposal(id)
	assert.Equal(t, models.StageStaged, p.Stage)
	assert.Equal(t, governance.FundTypeCampaign, p.FundType)

	// Minimum stake is clamp(5% of 1000, 100, 25000) = 100
	require.NoError(t, h.engine.Stake(h.ctx, "carol", id, 150))
	assert.Equal(t, uint64(850), h.tokens.Balance("carol"))
	assert.Equal(t, uint64(150), h.tokens.Balance(governance.DefaultGovernanceAccount))

	h.advance()
	p = h.proposal(id)
	assert.Equal(t, models.StageActive, p.Stage)
	assert.Equal(t, models.StatusOpen, p.Status)
	assert.Equal(t, uint64(1), p.ActiveCycle)
	level, err := h.engine.SupportLevel(1, governance.FundTypeCampaign)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), level.NumProposals)

	require.NoError(t, h.engine.Favour(h.ctx, "alice", id, 100))
	assert.Zero(t, h.voice("alice", "campaign"))
	err = h.engine.Favour(h.ctx, "alice", id, 1)
	require.ErrorIs(t, err, governance.ErrAlreadyVoted)

	// First pass returns the stake, rewards the creator and pays 25%
	h.advance()
	p = h.proposal(id)
	assert.Equal(t, models.StatusEvaluate, p.Status)
	assert.Equal(t, uint32(1), p.Age)
	assert.Zero(t, p.Staked)
	assert.Equal(t, uint64(1000), h.tokens.Balance("carol"))
	assert.Equal(t, uint64(55), h.reputation("carol"))
	assert.Equal(t, uint64(250), h.tokens.Balance("dave"))

	payouts := []uint64{500, 750, 1000}
	for _, want := range payouts {
		h.advance()
		assert.Equal(t, want, h.tokens.Balance("dave"))
	}
	p = h.proposal(id)
	assert.Equal(t, models.StageDone, p.Stage)
	assert.Equal(t, models.StatusPassed, p.Status)
	assert.Equal(t, uint64(fundBalance-1000), h.tokens.Balance("campaigns.fund"))

	// Passed proposals are left alone by later cycles
	h.advance()
	assert.Equal(t, uint64(1000), h.tokens.Balance("dave"))
}

func TestFailedEvaluationLeavesOthersAlone(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("bob", 100, 0)
	h.citizen("carol", 50, 2000)

	// The milestone fund holds fundBalance, so this payout cannot be made
	unpayable, err := h.engine.Create(
		h.ctx,
		"carol",
		fundingAttrs("carol", governance.TypeMilestone, "milestone.fund", 2*fundBalance),
	)
	require.NoError(t, err)
	require.NoError(t, h.engine.Stake(h.ctx, "carol", unpayable, 1000))
	payable, err := h.engine.Create(
		h.ctx,
		"carol",
		fundingAttrs("carol", governance.TypeMilestone, "milestone.fund", 500),
	)
	require.NoError(t, err)
	require.NoError(t, h.engine.Stake(h.ctx, "carol", payable, 100))
	h.advance()
	require.NoError(t, h.engine.Favour(h.ctx, "alice", unpayable, 100))
	require.NoError(t, h.engine.Favour(h.ctx, "bob", payable, 100))

	for range 2 {
		h.advance()
		p := h.proposal(payable)
		assert.Equal(t, models.StageDone, p.Stage)
		assert.Equal(t, models.StatusPassed, p.Status)
		assert.Equal(t, uint64(500), h.tokens.Balance("dave"))

		// The failed pass was rolled back as a whole
		p = h.proposal(unpayable)
		assert.Equal(t, models.StageActive, p.Stage)
		assert.Equal(t, models.StatusOpen, p.Status)
		assert.Equal(t, uint64(1000), p.Staked)
		assert.Equal(t, uint64(fundBalance-500), h.tokens.Balance("milestone.fund"))
	}
	pending, err := h.sched.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestUnderstakedProposalStaysStaged(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("carol", 50, 1000)
	id, err := h.engine.Create(
		h.ctx,
		"carol",
		fundingAttrs("carol", governance.TypeMilestone, "milestone.fund", 1000),
	)
	require.NoError(t, err)
	require.NoError(t, h.engine.Stake(h.ctx, "carol", id, 99))
	h.advance()
	p := h.proposal(id)
	assert.Equal(t, models.StageStaged, p.Stage)

	// Staking the rest activates it on the next cycle
	require.NoError(t, h.engine.Stake(h.ctx, "carol", id, 1))
	h.advance()
	p = h.proposal(id)
	assert.Equal(t, models.StageActive, p.Stage)
	assert.Equal(t, uint64(2), p.ActiveCycle)
}

func TestRejectedProposalBurnsStake(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("carol", 50, 1000)
	id := h.activeProposal(
		fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000),
		200,
	)
	supply := h.tokens.Supply()
	require.NoError(t, h.engine.Against(h.ctx, "alice", id, 100))
	h.advance()

	p := h.proposal(id)
	assert.Equal(t, models.StageDone, p.Stage)
	assert.Equal(t, models.StatusRejected, p.Status)
	assert.Zero(t, p.Staked)
	assert.Zero(t, h.tokens.Balance(governance.DefaultGovernanceAccount))
	assert.Equal(t, supply-200, h.tokens.Supply())
	assert.Equal(t, uint64(800), h.tokens.Balance("carol"))
	assert.Zero(t, h.tokens.Balance("dave"))
}

func TestAllianceProposalLocksFunds(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("carol", 50, 1000)
	id := h.activeProposal(
		fundingAttrs("carol", governance.TypeAlliance, "allies.fund", 2000),
		100,
	)
	require.NoError(t, h.engine.Favour(h.ctx, "alice", id, 80))
	h.advance()

	p := h.proposal(id)
	assert.Equal(t, models.StatusPassed, p.Status)
	assert.Equal(t, uint64(2000), h.tokens.Balance(collab.EscrowAccount))
	assert.Zero(t, h.tokens.Balance("dave"))

	err := h.db.Transaction(true).Do(func(txn *database.Txn) error {
		released, err := h.escrow.Fire(txn, governance.EscrowTrigger)
		assert.Equal(t, 1, released)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), h.tokens.Balance("dave"))
}

func TestInviteProposalRejectedReclaimsCampaign(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("carol", 50, 1000)
	attrs := fundingAttrs("carol", governance.TypeCampaignInvite, "campaigns.fund", 400)
	attrs[governance.AttrMaxAmountPerInvite] = 50
	attrs[governance.AttrPlanted] = 10
	attrs[governance.AttrReward] = 5
	id := h.activeProposal(attrs, 100)
	require.NoError(t, h.engine.Favour(h.ctx, "alice", id, 100))
	h.advance()

	p := h.proposal(id)
	assert.Equal(t, models.StatusEvaluate, p.Status)
	campaign, ok := h.onboarding.Get(1)
	require.True(t, ok)
	assert.Equal(t, uint64(100), campaign.Balance)
	assert.Equal(t, "dave", campaign.Owner)

	// The only supporter withdraws, so the next pass fails
	require.NoError(t, h.engine.RevertVote(h.ctx, "alice", id))
	h.advance()

	p = h.proposal(id)
	assert.Equal(t, models.StatusRejected, p.Status)
	assert.Equal(t, uint64(fundBalance), h.tokens.Balance("campaigns.fund"))
	// Reward on the first pass, penalty on failure
	assert.Equal(t, uint64(50+5-10), h.reputation("carol"))
	assert.Equal(t, uint32(1), h.accounts.Punishments("carol"))
	campaign, _ = h.onboarding.Get(1)
	assert.True(t, campaign.Closed)
}

func TestSettingsProposal(t *testing.T) {
	for _, revert := range []bool{false, true} {
		name := "passes"
		if revert {
			name = "reverted"
		}
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.citizen("alice", 100, 0)
			h.citizen("carol", 50, 1000)
			attrs := textAttrs("carol", governance.TypeSettings, "referendum.fund")
			attrs[governance.AttrSettingName] = governance.SettingDecayPct
			attrs[governance.AttrNewValue] = "20"
			attrs[governance.AttrTestCycles] = 0
			attrs[governance.AttrEvalCycles] = 1
			id := h.activeProposal(attrs, 100)
			require.NoError(t, h.engine.Favour(h.ctx, "alice", id, 100))

			h.advance()
			value, err := h.settings.Get(nil, governance.SettingDecayPct)
			require.NoError(t, err)
			assert.Equal(t, "20", value.String())
			p := h.proposal(id)
			assert.Equal(t, models.StatusEvaluate, p.Status)
			assert.Equal(t, "15", p.Attributes["prevValue"])

			if revert {
				require.NoError(t, h.engine.RevertVote(h.ctx, "alice", id))
			}
			h.advance()
			p = h.proposal(id)
			value, err = h.settings.Get(nil, governance.SettingDecayPct)
			require.NoError(t, err)
			if revert {
				assert.Equal(t, models.StatusRejected, p.Status)
				assert.Equal(t, "15", value.String())
			} else {
				assert.Equal(t, models.StatusPassed, p.Status)
				assert.Equal(t, "20", value.String())
			}
		})
	}
}

func settingsAttrs(creator string, name string, value string) governance.Attrs {
	attrs := textAttrs(creator, governance.TypeSettings, "referendum.fund")
	attrs[governance.AttrSettingName] = name
	attrs[governance.AttrNewValue] = value
	attrs[governance.AttrTestCycles] = 0
	attrs[governance.AttrEvalCycles] = 1
	return attrs
}

func TestSettingsProposalRejectsInvalidValue(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("carol", 50, 1000)

	tests := []struct {
		name  string
		value string
	}{
		{governance.SettingVoteRepReward, "-1"},
		{governance.SettingMajority, "2"},
		{governance.SettingMajority, "0"},
		{governance.SettingQuorumMinPct, "50"},
		{governance.SettingQuorumMaxPct, "150"},
		{governance.SettingDecayPct, "101"},
		{governance.SettingDecayInterval, "0"},
	}
	for _, test := range tests {
		t.Run(test.name+"="+test.value, func(t *testing.T) {
			_, err := h.engine.Create(h.ctx, "carol", settingsAttrs("carol", test.name, test.value))
			require.ErrorIs(t, err, governance.ErrInvalidSetting)
		})
	}

	// Nothing was written, so ordinary operations keep working
	h.citizen("alice", 100, 0)
	_, err := h.engine.Create(
		h.ctx,
		"carol",
		settingsAttrs("carol", governance.SettingVoteRepReward, "2"),
	)
	require.NoError(t, err)
	h.advance()
}

func TestSettingsSeedRejectsInvalidValue(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck
	err = governance.NewSettings(db).Seed(map[string]decimal.Decimal{
		governance.SettingDecayPct: decimal.NewFromInt(-5),
	}, nil)
	require.ErrorIs(t, err, governance.ErrInvalidSetting)
}

func TestConflictingSettingsProposals(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("bob", 100, 0)
	h.citizen("carol", 50, 1000)

	// Each change is valid alone, together they put the quorum minimum above
	// the maximum
	raiseMin, err := h.engine.Create(
		h.ctx,
		"carol",
		settingsAttrs("carol", governance.SettingQuorumMinPct, "15"),
	)
	require.NoError(t, err)
	lowerMax, err := h.engine.Create(
		h.ctx,
		"carol",
		settingsAttrs("carol", governance.SettingQuorumMaxPct, "10"),
	)
	require.NoError(t, err)
	require.NoError(t, h.engine.Stake(h.ctx, "carol", raiseMin, 100))
	require.NoError(t, h.engine.Stake(h.ctx, "carol", lowerMax, 100))
	h.advance()
	require.Equal(t, models.StageActive, h.proposal(raiseMin).Stage)
	require.Equal(t, models.StageActive, h.proposal(lowerMax).Stage)
	require.NoError(t, h.engine.Favour(h.ctx, "alice", raiseMin, 100))
	require.NoError(t, h.engine.Favour(h.ctx, "bob", lowerMax, 100))

	h.advance()
	rejected := 0
	for _, id := range []uint{raiseMin, lowerMax} {
		p := h.proposal(id)
		if p.Status == models.StatusRejected {
			rejected++
			assert.Equal(t, models.StageDone, p.Stage)
		} else {
			assert.Equal(t, models.StatusEvaluate, p.Status)
		}
	}
	assert.Equal(t, 1, rejected)
	minPct, err := h.settings.Get(nil, governance.SettingQuorumMinPct)
	require.NoError(t, err)
	maxPct, err := h.settings.Get(nil, governance.SettingQuorumMaxPct)
	require.NoError(t, err)
	assert.True(t, minPct.LessThanOrEqual(maxPct))

	// The engine still loads its settings
	h.citizen("erin", 10, 0)
	h.advance()
	pending, err := h.sched.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("carol", 50, 1000)

	tests := []struct {
		name   string
		caller string
		modify func(governance.Attrs)
		err    error
	}{
		{
			name:   "caller is not the creator",
			caller: "mallory",
			err:    governance.ErrNotAuthorized,
		},
		{
			name:   "creator is not a citizen",
			caller: "zed",
			modify: func(a governance.Attrs) { a[governance.AttrCreator] = "zed" },
			err:    governance.ErrNotCitizen,
		},
		{
			name:   "missing title",
			caller: "carol",
			modify: func(a governance.Attrs) { delete(a, governance.AttrTitle) },
			err:    governance.ErrMissingAttribute,
		},
		{
			name:   "empty summary",
			caller: "carol",
			modify: func(a governance.Attrs) { a[governance.AttrSummary] = "" },
			err:    governance.ErrTextLength,
		},
		{
			name:   "unknown type",
			caller: "carol",
			modify: func(a governance.Attrs) { a[governance.AttrType] = "lottery" },
			err:    governance.ErrUnknownType,
		},
		{
			name:   "unknown fund",
			caller: "carol",
			modify: func(a governance.Attrs) { a[governance.AttrFund] = "nowhere.fund" },
			err:    governance.ErrUnknownFund,
		},
		{
			name:   "fund of another type",
			caller: "carol",
			modify: func(a governance.Attrs) { a[governance.AttrFund] = "allies.fund" },
			err:    governance.ErrFundMismatch,
		},
		{
			name:   "schedule does not sum to 100",
			caller: "carol",
			modify: func(a governance.Attrs) {
				a[governance.AttrPayPercentages] = []any{50.0, 40.0}
			},
			err: governance.ErrInvalidSchedule,
		},
		{
			name:   "zero quantity",
			caller: "carol",
			modify: func(a governance.Attrs) { a[governance.AttrQuantity] = 0 },
			err:    governance.ErrInvalidAttribute,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			attrs := fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000)
			if tc.modify != nil {
				tc.modify(attrs)
			}
			_, err := h.engine.Create(h.ctx, tc.caller, attrs)
			require.ErrorIs(t, err, tc.err)
		})
	}
	proposals, total, err := h.engine.Proposals(0, 10, false)
	require.NoError(t, err)
	assert.Empty(t, proposals)
	assert.Zero(t, total)
}

func TestUpdateAndCancel(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("carol", 50, 1000)
	id, err := h.engine.Create(
		h.ctx,
		"carol",
		fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000),
	)
	require.NoError(t, err)
	require.NoError(t, h.engine.Stake(h.ctx, "carol", id, 120))

	err = h.engine.Update(h.ctx, "carol", id, governance.Attrs{
		governance.AttrTitle:    "Bigger garden",
		governance.AttrQuantity: 3000,
	})
	require.NoError(t, err)
	p := h.proposal(id)
	assert.Equal(t, "Bigger garden", p.Title)
	assert.Equal(t, uint64(3000), p.Quantity)
	assert.Equal(t, "Plant a garden on the commons", p.Summary)
	assert.Equal(t, uint64(120), p.Staked)

	err = h.engine.Update(h.ctx, "carol", id, governance.Attrs{
		governance.AttrType: governance.TypeMilestone,
	})
	require.ErrorIs(t, err, governance.ErrInvalidAttribute)
	err = h.engine.Update(h.ctx, "alice", id, governance.Attrs{})
	require.ErrorIs(t, err, governance.ErrNotAuthorized)
	err = h.engine.Stake(h.ctx, "alice", id, 10)
	require.ErrorIs(t, err, governance.ErrNotAuthorized)

	aux, err := h.db.GetProposalAux(id, nil)
	require.NoError(t, err)
	require.NotEmpty(t, aux.Attributes)

	require.NoError(t, h.engine.Cancel(h.ctx, "carol", id))
	assert.Equal(t, uint64(1000), h.tokens.Balance("carol"))
	_, err = h.engine.Proposal(id)
	require.ErrorIs(t, err, governance.ErrProposalNotFound)
	// The type attributes go with the proposal
	aux, err = h.db.GetProposalAux(id, nil)
	require.NoError(t, err)
	assert.Empty(t, aux.Attributes)
}

func TestStakeInsufficientBalance(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("carol", 50, 1000)
	id, err := h.engine.Create(
		h.ctx,
		"carol",
		fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000),
	)
	require.NoError(t, err)
	// Stake more than the creator holds
	err = h.engine.Stake(h.ctx, "carol", id, 5000)
	require.ErrorIs(t, err, collab.ErrInsufficientBalance)
	assert.Equal(t, uint64(1000), h.tokens.Balance("carol"))
	assert.Zero(t, h.proposal(id).Staked)
}
