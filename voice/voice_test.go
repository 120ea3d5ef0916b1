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

package voice_test

import (
	"testing"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/voice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*voice.Ledger, *database.Database) {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return voice.NewLedger(db), db
}

func TestSetVoiceAllScopes(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.SetVoice("alice", 100, voice.ScopeAll, nil))
	for _, scope := range voice.Scopes {
		balance, err := l.Get("alice", scope, nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), balance, scope)
	}
	// Idempotent
	require.NoError(t, l.SetVoice("alice", 100, voice.ScopeAll, nil))
	balances, err := l.Balances("alice", nil)
	require.NoError(t, err)
	assert.Len(t, balances, len(voice.Scopes))
}

func TestSetVoiceUnknownScope(t *testing.T) {
	l, _ := newTestLedger(t)
	err := l.SetVoice("alice", 100, "treasury", nil)
	require.ErrorIs(t, err, voice.ErrUnknownScope)
}

func TestGetMissingIsZero(t *testing.T) {
	l, _ := newTestLedger(t)
	balance, err := l.Get("nobody", voice.ScopeAlliance, nil)
	require.NoError(t, err)
	assert.Zero(t, balance)
	has, err := l.Has("nobody", voice.ScopeAlliance, nil)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestChangeVoiceFraction(t *testing.T) {
	l, db := newTestLedger(t)
	require.NoError(t, l.SetVoice("delegatee", 100, voice.ScopeCampaign, nil))
	txn := db.Transaction(true)
	fraction, err := l.ChangeVoice("delegatee", 30, true, voice.ScopeCampaign, txn)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())
	assert.True(t, fraction.Equal(decimal.RequireFromString("0.3")), fraction.String())

	balance, err := l.Get("delegatee", voice.ScopeCampaign, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), balance)

	// A delegator holding 50 replays 30% of it
	assert.Equal(t, uint64(15), voice.Apply(50, fraction))
}

func TestChangeVoiceInsufficient(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.SetVoice("alice", 10, voice.ScopeMilestone, nil))
	_, err := l.ChangeVoice("alice", 11, true, voice.ScopeMilestone, nil)
	require.ErrorIs(t, err, voice.ErrInsufficientVoice)
	_, err = l.ChangeVoice("bob", 1, true, voice.ScopeMilestone, nil)
	require.ErrorIs(t, err, voice.ErrNoVoice)

	_, err = l.ChangeVoice("alice", 5, false, voice.ScopeMilestone, nil)
	require.NoError(t, err)
	balance, err := l.Get("alice", voice.ScopeMilestone, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), balance)
}

func TestEraseAndRecover(t *testing.T) {
	l, db := newTestLedger(t)
	require.NoError(t, l.SetVoice("alice", 80, voice.ScopeAll, nil))
	require.NoError(t, db.SetActiveAccount("alice", 1, nil))
	require.NoError(t, l.Erase("alice", nil))
	has, err := l.Has("alice", voice.ScopeReferendum, nil)
	require.NoError(t, err)
	assert.False(t, has)
	count, err := db.CountActiveAccounts(nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Two intervals at 50% leaves a quarter of the score
	require.NoError(t, l.Recover("alice", 400, decimal.NewFromInt(50), 2, nil))
	balance, err := l.Get("alice", voice.ScopeAlliance, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)
}

func TestDecayChunk(t *testing.T) {
	l, db := newTestLedger(t)
	accounts := []string{"a", "b", "c"}
	for _, account := range accounts {
		require.NoError(t, l.SetVoice(account, 1000, voice.ScopeAll, nil))
	}
	mult := voice.Multiplier(decimal.NewFromInt(10), 1)
	var cursor uint
	chunks := 0
	for {
		var done bool
		err := db.Transaction(true).Do(func(txn *database.Txn) error {
			var err error
			cursor, done, err = l.DecayChunk(cursor, 5, mult, txn)
			return err
		})
		require.NoError(t, err)
		chunks++
		if done {
			break
		}
	}
	// 12 records in chunks of 5
	assert.Equal(t, 3, chunks)
	for _, account := range accounts {
		for _, scope := range voice.Scopes {
			balance, err := l.Get(account, scope, nil)
			require.NoError(t, err)
			assert.Equal(t, uint64(900), balance)
		}
	}
}

func TestRefreshChunk(t *testing.T) {
	l, _ := newTestLedger(t)
	require.NoError(t, l.SetVoice("a", 1, voice.ScopeAll, nil))
	require.NoError(t, l.SetVoice("b", 1, voice.ScopeAll, nil))
	scores := map[string]uint64{"a": 70, "b": 30}
	_, done, err := l.RefreshChunk(
		voice.ScopeAlliance,
		0,
		10,
		func(account string) (uint64, error) {
			return scores[account], nil
		},
		nil,
	)
	require.NoError(t, err)
	assert.True(t, done)
	a, err := l.Get("a", voice.ScopeAlliance, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), a)
	// Other scopes untouched
	a, err = l.Get("a", voice.ScopeCampaign, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), a)
}

func TestMultiplier(t *testing.T) {
	pct := decimal.NewFromInt(15)
	assert.True(t, voice.Multiplier(pct, 0).Equal(decimal.NewFromInt(1)))
	assert.True(
		t,
		voice.Multiplier(pct, 1).Equal(decimal.RequireFromString("0.85")),
	)
	assert.True(
		t,
		voice.Multiplier(pct, 2).Equal(decimal.RequireFromString("0.7225")),
	)
	assert.True(t, voice.Multiplier(decimal.NewFromInt(100), 3).IsZero())
}

func TestDecayNeverIncreases(t *testing.T) {
	pct := decimal.NewFromInt(15)
	balances := []uint64{0, 1, 7, 100, 12345, 1 << 40}
	for _, start := range balances {
		balance := start
		for n := uint64(1); n <= 10; n++ {
			next := voice.Apply(balance, voice.Multiplier(pct, 1))
			assert.LessOrEqual(t, next, balance)
			balance = next
			// Compounded in one step stays within rounding of the stepwise result
			direct := voice.Apply(start, voice.Multiplier(pct, n))
			assert.GreaterOrEqual(t, direct, balance)
			assert.LessOrEqual(t, direct-balance, n)
		}
	}
}

func TestDecayIntervals(t *testing.T) {
	testDefs := []struct {
		name       string
		now        int64
		lastDecay  int64
		cycleStart int64
		delay      int64
		interval   int64
		expected   uint64
	}{
		{name: "none elapsed", now: 100, lastDecay: 50, interval: 100, expected: 0},
		{name: "from last decay", now: 350, lastDecay: 100, interval: 100, expected: 2},
		{name: "delay after cycle start", now: 350, lastDecay: 0, cycleStart: 100, delay: 100, interval: 100, expected: 1},
		{name: "before delay", now: 150, cycleStart: 100, delay: 100, interval: 100, expected: 0},
		{name: "zero interval", now: 1000, interval: 0, expected: 0},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			assert.Equal(
				t,
				testDef.expected,
				voice.DecayIntervals(
					testDef.now,
					testDef.lastDecay,
					testDef.cycleStart,
					testDef.delay,
					testDef.interval,
				),
			)
		})
	}
}
