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
	"testing"
	"time"

	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/blinklabs-io/agora/voice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceCycle(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	state, err := h.engine.CycleState()
	require.NoError(t, err)
	assert.Zero(t, state.Cycle)

	require.NoError(t, h.engine.AdvanceCycle(h.ctx))
	err = h.engine.AdvanceCycle(h.ctx)
	require.ErrorIs(t, err, scheduler.ErrDuplicateTask)
	h.drain()

	state, err = h.engine.CycleState()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Cycle)
	assert.Equal(t, h.now.Unix(), state.CycleStartedAt)
	stat, err := h.engine.CycleStat(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stat.ActiveAccounts)
	for _, fundType := range governance.FundTypes {
		level, err := h.engine.SupportLevel(1, fundType)
		require.NoError(t, err)
		assert.Equal(t, fundType, level.FundType)
	}
	pending, err := h.sched.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestVoiceRefreshFromReputation(t *testing.T) {
	// Small chunks so the refresh sweep needs several steps
	h := newHarness(t, map[string]decimal.Decimal{
		governance.SettingBatchSize: decimal.NewFromInt(3),
	})
	h.citizen("alice", 100, 0)
	h.citizen("bob", 40, 0)
	h.accounts.SetReputation("alice", 70)
	h.accounts.SetReputation("bob", 90)
	h.advance()
	for _, scope := range voice.Scopes {
		assert.Equal(t, uint64(70), h.voice("alice", scope))
		assert.Equal(t, uint64(90), h.voice("bob", scope))
	}
}

func TestDecayVoices(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	start, err := h.engine.CycleState()
	require.NoError(t, err)

	// Nothing has elapsed yet
	require.NoError(t, h.engine.DecayVoices(h.ctx))
	h.drain()
	assert.Equal(t, uint64(100), h.voice("alice", voice.ScopeAlliance))

	h.now = h.now.Add(2*24*time.Hour + 10*time.Second)
	require.NoError(t, h.engine.DecayVoices(h.ctx))
	h.drain()
	// 100 * 0.85^2 = 72.25
	for _, scope := range voice.Scopes {
		assert.Equal(t, uint64(72), h.voice("alice", scope))
	}
	state, err := h.engine.CycleState()
	require.NoError(t, err)
	assert.Equal(t, start.CycleStartedAt+2*86400, state.LastDecayAt)

	// The same intervals are never applied twice
	require.NoError(t, h.engine.DecayVoices(h.ctx))
	h.drain()
	assert.Equal(t, uint64(72), h.voice("alice", voice.ScopeAlliance))

	// A new citizen starts at the decayed level of its reputation
	h.citizen("frank", 100, 0)
	assert.Equal(t, uint64(72), h.voice("frank", voice.ScopeReferendum))
}

func TestDecayDelay(t *testing.T) {
	h := newHarness(t, map[string]decimal.Decimal{
		governance.SettingDecayDelay: decimal.NewFromInt(86400),
	})
	h.citizen("alice", 100, 0)
	h.now = h.now.Add(36 * time.Hour)
	require.NoError(t, h.engine.DecayVoices(h.ctx))
	h.drain()
	assert.Equal(t, uint64(100), h.voice("alice", voice.ScopeMilestone))
	h.now = h.now.Add(12 * time.Hour)
	require.NoError(t, h.engine.DecayVoices(h.ctx))
	h.drain()
	assert.Equal(t, uint64(85), h.voice("alice", voice.ScopeMilestone))
}

func TestChangeTrust(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	assert.Equal(t, uint64(100), h.voice("alice", voice.ScopeCampaign))

	require.NoError(t, h.accounts.SetCitizen(h.ctx, "alice", false))
	balances, err := h.engine.Voice("alice")
	require.NoError(t, err)
	assert.Empty(t, balances)

	err = h.engine.AddActive(h.ctx, "alice")
	require.ErrorIs(t, err, governance.ErrNotCitizen)

	require.NoError(t, h.accounts.SetCitizen(h.ctx, "alice", true))
	assert.Equal(t, uint64(100), h.voice("alice", voice.ScopeCampaign))
}

func TestParticipantRewardChunks(t *testing.T) {
	h := newHarness(t, map[string]decimal.Decimal{
		governance.SettingBatchSize: decimal.NewFromInt(2),
	})
	voters := []string{"v1", "v2", "v3", "v4", "v5"}
	for _, v := range voters {
		h.citizen(v, 100, 0)
	}
	h.citizen("carol", 50, 1000)
	id := h.activeProposal(
		fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000),
		100,
	)
	for _, v := range voters {
		require.NoError(t, h.engine.Favour(h.ctx, v, id, 10))
	}
	h.advance()
	for _, v := range voters {
		assert.Equal(t, uint64(101), h.reputation(v), v)
	}
	// Counters were erased, so a quiet cycle rewards nobody
	h.advance()
	for _, v := range voters {
		assert.Equal(t, uint64(101), h.reputation(v), v)
	}
}

func TestParticipantRewardSkipsNewCycleVotes(t *testing.T) {
	h := newHarness(t, nil)
	h.citizen("alice", 100, 0)
	h.citizen("bob", 100, 0)
	h.citizen("carol", 50, 1000)
	var ids []uint
	for range 2 {
		id, err := h.engine.Create(
			h.ctx,
			"carol",
			fundingAttrs("carol", governance.TypeCampaignFunding, "campaigns.fund", 1000),
		)
		require.NoError(t, err)
		require.NoError(t, h.engine.Stake(h.ctx, "carol", id, 100))
		ids = append(ids, id)
	}
	h.advance()
	require.NoError(t, h.engine.Favour(h.ctx, "alice", ids[0], 10))

	// Run only the cycle advance, then vote before the reward sweep
	h.now = h.now.Add(time.Hour)
	require.NoError(t, h.engine.AdvanceCycle(h.ctx))
	ran, err := h.sched.RunOnce(h.ctx)
	require.NoError(t, err)
	require.True(t, ran)
	state, err := h.engine.CycleState()
	require.NoError(t, err)
	require.Equal(t, uint64(2), state.Cycle)
	require.NoError(t, h.engine.Favour(h.ctx, "bob", ids[1], 10))
	h.drain()

	assert.Equal(t, uint64(101), h.reputation("alice"))
	assert.Equal(t, uint64(100), h.reputation("bob"))
	counter, err := h.db.GetParticipant("bob", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), counter.Count)

	// Bob's vote counts for the cycle it was cast in
	h.advance()
	assert.Equal(t, uint64(101), h.reputation("alice"))
	assert.Equal(t, uint64(101), h.reputation("bob"))
	counter, err = h.db.GetParticipant("bob", 2, nil)
	require.NoError(t, err)
	assert.Zero(t, counter.Count)
}
