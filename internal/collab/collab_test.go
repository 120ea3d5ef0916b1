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

package collab_test

import (
	"context"
	"errors"
	"testing"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/internal/collab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	return db
}

var errAbort = errors.New("abort")

func TestTransferRollback(t *testing.T) {
	db := newTestDatabase(t)
	tokens := collab.NewTokens()
	tokens.Issue("alice", 100)

	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		require.NoError(t, tokens.Transfer(txn, "alice", "bob", 40, "test"))
		require.NoError(t, tokens.Burn(txn, "bob", 10, "test"))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	assert.Equal(t, uint64(100), tokens.Balance("alice"))
	assert.Zero(t, tokens.Balance("bob"))
	assert.Equal(t, uint64(100), tokens.Supply())

	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := tokens.Transfer(txn, "alice", "bob", 40, "test"); err != nil {
			return err
		}
		return tokens.Burn(txn, "bob", 10, "test")
	}))
	assert.Equal(t, uint64(60), tokens.Balance("alice"))
	assert.Equal(t, uint64(30), tokens.Balance("bob"))
	assert.Equal(t, uint64(90), tokens.Supply())
}

func TestTransferInsufficient(t *testing.T) {
	db := newTestDatabase(t)
	tokens := collab.NewTokens()
	tokens.Issue("alice", 5)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return tokens.Transfer(txn, "alice", "bob", 6, "test")
	})
	require.ErrorIs(t, err, collab.ErrInsufficientBalance)
	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return tokens.Transfer(txn, "alice", "bob", 0, "test")
	})
	require.ErrorIs(t, err, collab.ErrInvalidQuantity)
}

func TestEscrowLifecycle(t *testing.T) {
	db := newTestDatabase(t)
	tokens := collab.NewTokens()
	tokens.Issue("fund", 300)
	escrow := collab.NewEscrow(tokens)

	var first, second uint64
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		var err error
		if first, err = escrow.Lock(txn, "fund", "ally", 100, "golive", "tranche"); err != nil {
			return err
		}
		second, err = escrow.Lock(txn, "fund", "ally", 200, "golive", "tranche")
		return err
	}))
	assert.Equal(t, uint64(300), tokens.Balance(collab.EscrowAccount))

	// Cancel and withdraw the first lock
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		ok, err := escrow.CancelLock(txn, first, "rejected")
		if err != nil {
			return err
		}
		require.True(t, ok)
		return escrow.Withdraw(txn, first)
	}))
	assert.Equal(t, uint64(100), tokens.Balance("fund"))
	lock, ok := escrow.Get(first)
	require.True(t, ok)
	assert.Equal(t, collab.LockWithdrawn, lock.State)

	// Firing releases only the remaining lock
	var released int
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		var err error
		released, err = escrow.Fire(txn, "golive")
		return err
	}))
	assert.Equal(t, 1, released)
	assert.Equal(t, uint64(200), tokens.Balance("ally"))
	lock, _ = escrow.Get(second)
	assert.Equal(t, collab.LockReleased, lock.State)

	// A released lock cannot be cancelled
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		ok, err := escrow.CancelLock(txn, second, "late")
		require.False(t, ok)
		return err
	}))
}

func TestEscrowRollback(t *testing.T) {
	db := newTestDatabase(t)
	tokens := collab.NewTokens()
	tokens.Issue("fund", 100)
	escrow := collab.NewEscrow(tokens)
	var id uint64
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		var err error
		id, err = escrow.Lock(txn, "fund", "ally", 100, "golive", "tranche")
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	_, ok := escrow.Get(id)
	assert.False(t, ok)
	assert.Equal(t, uint64(100), tokens.Balance("fund"))
}

func TestAccountsReputation(t *testing.T) {
	db := newTestDatabase(t)
	accounts := collab.NewAccounts()
	accounts.SetReputation("alice", 10)
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := accounts.AddRep(txn, "alice", 5); err != nil {
			return err
		}
		if err := accounts.SubRep(txn, "bob", 3); err != nil {
			return err
		}
		return accounts.Punish(txn, "alice", 1)
	}))
	score, err := accounts.ReputationScore(nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), score)
	score, err = accounts.ReputationScore(nil, "bob")
	require.NoError(t, err)
	assert.Zero(t, score)
	assert.Equal(t, uint32(1), accounts.Punishments("alice"))

	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		require.NoError(t, accounts.SubRep(txn, "alice", 100))
		require.NoError(t, accounts.Punish(txn, "alice", 2))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)
	score, _ = accounts.ReputationScore(nil, "alice")
	assert.Equal(t, uint64(15), score)
	assert.Equal(t, uint32(1), accounts.Punishments("alice"))
}

func TestAccountsTrustHook(t *testing.T) {
	accounts := collab.NewAccounts()
	var calls []bool
	accounts.OnTrustChange(func(_ context.Context, account string, trust bool) error {
		assert.Equal(t, "alice", account)
		calls = append(calls, trust)
		return nil
	})
	ctx := context.Background()
	require.NoError(t, accounts.SetCitizen(ctx, "alice", true))
	require.NoError(t, accounts.SetCitizen(ctx, "alice", true))
	require.NoError(t, accounts.SetCitizen(ctx, "alice", false))
	assert.Equal(t, []bool{true, false}, calls)

	// A failing listener leaves citizenship unchanged
	accounts.OnTrustChange(func(context.Context, string, bool) error {
		return errAbort
	})
	require.ErrorIs(t, accounts.SetCitizen(ctx, "alice", true), errAbort)
	citizen, err := accounts.IsCitizen(nil, "alice")
	require.NoError(t, err)
	assert.False(t, citizen)
}

func TestOnboardingCampaign(t *testing.T) {
	db := newTestDatabase(t)
	tokens := collab.NewTokens()
	tokens.Issue("fund", 1000)
	onboarding := collab.NewOnboarding(tokens)

	var id uint64
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		var err error
		id, err = onboarding.CreateCampaign(txn, "carol", "fund", 250, 50, 10, 5)
		if err != nil {
			return err
		}
		return onboarding.FundCampaign(txn, id, "fund", 250)
	}))
	campaign, ok := onboarding.Get(id)
	require.True(t, ok)
	assert.Equal(t, uint64(500), campaign.Balance)

	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		require.ErrorIs(
			t,
			onboarding.Spend(txn, id, "dave", 51),
			collab.ErrInsufficientBalance,
		)
		return onboarding.Spend(txn, id, "dave", 50)
	}))
	assert.Equal(t, uint64(50), tokens.Balance("dave"))

	var returned uint64
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		var err error
		returned, err = onboarding.ReturnFunds(txn, id)
		return err
	}))
	assert.Equal(t, uint64(450), returned)
	assert.Equal(t, uint64(950), tokens.Balance("fund"))

	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return onboarding.FundCampaign(txn, id, "fund", 10)
	})
	require.ErrorIs(t, err, collab.ErrCampaignNotFound)
}
