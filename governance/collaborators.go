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
	"github.com/shopspring/decimal"
)

// The collaborators below own state outside the governance engine. Every
// mutating call receives the transaction of the step that issues it and must
// either write through it or register an undo with txn.OnRollback so that a
// failed step leaves no trace

// TokenLedger moves and destroys token balances
type TokenLedger interface {
	Transfer(txn *database.Txn, from, to string, quantity uint64, memo string) error
	Burn(txn *database.Txn, from string, quantity uint64, memo string) error
}

// Escrow holds funds until an external trigger event releases them
type Escrow interface {
	// Lock moves quantity from the sender into a lock for the recipient,
	// released when trigger fires. It returns the lock ID
	Lock(txn *database.Txn, from, to string, quantity uint64, trigger, memo string) (uint64, error)
	// CancelLock cancels an unreleased lock. It reports false if the lock was
	// already released
	CancelLock(txn *database.Txn, lockId uint64, memo string) (bool, error)
	// Withdraw returns the funds of a cancelled lock to its sender
	Withdraw(txn *database.Txn, lockId uint64) error
}

// Accounts is the citizenship and reputation registry
type Accounts interface {
	IsCitizen(txn *database.Txn, account string) (bool, error)
	ReputationScore(txn *database.Txn, account string) (uint64, error)
	AddRep(txn *database.Txn, account string, amount uint64) error
	SubRep(txn *database.Txn, account string, amount uint64) error
	Punish(txn *database.Txn, account string, count uint32) error
}

// Onboarding runs invite campaigns funded from a fund account
type Onboarding interface {
	CreateCampaign(
		txn *database.Txn,
		owner string,
		funder string,
		quantity uint64,
		maxAmountPerInvite uint64,
		planted uint64,
		reward uint64,
	) (uint64, error)
	FundCampaign(txn *database.Txn, campaignId uint64, funder string, quantity uint64) error
	// ReturnFunds sends the unspent campaign balance back to its funder and
	// returns the amount
	ReturnFunds(txn *database.Txn, campaignId uint64) (uint64, error)
}

// SettingsStore is the named numeric configuration store
type SettingsStore interface {
	Get(txn *database.Txn, name string) (decimal.Decimal, error)
	Set(txn *database.Txn, name string, value decimal.Decimal) error
	Impact(txn *database.Txn, name string) (uint8, error)
}
