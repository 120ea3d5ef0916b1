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

// Package collab provides in-memory implementations of the systems the
// governance engine collaborates with. Every mutation registers an undo on
// the calling transaction so it is reverted if the step fails
package collab

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/blinklabs-io/agora/database"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
)

// Tokens is an in-memory token ledger
type Tokens struct {
	mu       sync.Mutex
	balances map[string]uint64
	supply   uint64
}

func NewTokens() *Tokens {
	return &Tokens{
		balances: make(map[string]uint64),
	}
}

// Issue creates quantity new tokens for an account
func (t *Tokens) Issue(to string, quantity uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] += quantity
	t.supply += quantity
}

func (t *Tokens) Balance(account string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[account]
}

func (t *Tokens) Supply() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.supply
}

// Balances returns a copy of every non-zero balance
func (t *Tokens) Balances() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.balances)
}

func (t *Tokens) Transfer(
	txn *database.Txn,
	from string,
	to string,
	quantity uint64,
	_ string,
) error {
	if quantity == 0 {
		return ErrInvalidQuantity
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[from] < quantity {
		return fmt.Errorf(
			"%w: %s has %d, needs %d",
			ErrInsufficientBalance,
			from,
			t.balances[from],
			quantity,
		)
	}
	t.balances[from] -= quantity
	t.balances[to] += quantity
	txn.OnRollback(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.balances[to] -= quantity
		t.balances[from] += quantity
	})
	return nil
}

func (t *Tokens) Burn(
	txn *database.Txn,
	from string,
	quantity uint64,
	_ string,
) error {
	if quantity == 0 {
		return ErrInvalidQuantity
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[from] < quantity {
		return fmt.Errorf(
			"%w: %s has %d, needs %d",
			ErrInsufficientBalance,
			from,
			t.balances[from],
			quantity,
		)
	}
	t.balances[from] -= quantity
	t.supply -= quantity
	txn.OnRollback(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.balances[from] += quantity
		t.supply += quantity
	})
	return nil
}
