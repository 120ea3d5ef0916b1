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

package collab

import (
	"context"
	"sync"

	"github.com/blinklabs-io/agora/database"
)

// TrustFunc is notified when an account gains or loses citizenship
type TrustFunc func(ctx context.Context, account string, trust bool) error

// Accounts is an in-memory citizenship and reputation registry
type Accounts struct {
	mu         sync.Mutex
	citizens   map[string]bool
	reputation map[string]uint64
	punishment map[string]uint32
	onTrust    TrustFunc
}

func NewAccounts() *Accounts {
	return &Accounts{
		citizens:   make(map[string]bool),
		reputation: make(map[string]uint64),
		punishment: make(map[string]uint32),
	}
}

// OnTrustChange sets the function notified by SetCitizen
func (a *Accounts) OnTrustChange(fn TrustFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onTrust = fn
}

// SetCitizen changes an account's citizenship and notifies the trust
// listener when it changed
func (a *Accounts) SetCitizen(ctx context.Context, account string, citizen bool) error {
	a.mu.Lock()
	changed := a.citizens[account] != citizen
	a.citizens[account] = citizen
	fn := a.onTrust
	a.mu.Unlock()
	if !changed || fn == nil {
		return nil
	}
	if err := fn(ctx, account, citizen); err != nil {
		a.mu.Lock()
		a.citizens[account] = !citizen
		a.mu.Unlock()
		return err
	}
	return nil
}

// SetReputation sets an account's reputation score directly
func (a *Accounts) SetReputation(account string, score uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reputation[account] = score
}

func (a *Accounts) IsCitizen(_ *database.Txn, account string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.citizens[account], nil
}

func (a *Accounts) ReputationScore(_ *database.Txn, account string) (uint64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reputation[account], nil
}

// Punishments returns how many times an account was punished
func (a *Accounts) Punishments(account string) uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.punishment[account]
}

func (a *Accounts) setReputation(txn *database.Txn, account string, score uint64) {
	prev := a.reputation[account]
	a.reputation[account] = score
	txn.OnRollback(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.reputation[account] = prev
	})
}

func (a *Accounts) AddRep(txn *database.Txn, account string, amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	score := a.reputation[account] + amount
	if score < amount {
		score = ^uint64(0)
	}
	a.setReputation(txn, account, score)
	return nil
}

// SubRep removes reputation, stopping at zero
func (a *Accounts) SubRep(txn *database.Txn, account string, amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	score := a.reputation[account]
	a.setReputation(txn, account, score-min(score, amount))
	return nil
}

func (a *Accounts) Punish(txn *database.Txn, account string, count uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.punishment[account] += count
	txn.OnRollback(func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.punishment[account] -= count
	})
	return nil
}
