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
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/agora/database"
)

const EscrowAccount = "escrow.agora"

var ErrLockNotFound = errors.New("escrow lock not found")

type LockState int

const (
	LockLocked LockState = iota
	LockReleased
	LockCancelled
	LockWithdrawn
)

type Lock struct {
	ID        uint64
	Sender    string
	Recipient string
	Quantity  uint64
	Trigger   string
	State     LockState
}

// Escrow holds locked funds in EscrowAccount until their trigger fires
type Escrow struct {
	mu     sync.Mutex
	tokens *Tokens
	locks  map[uint64]*Lock
	lastId uint64
}

func NewEscrow(tokens *Tokens) *Escrow {
	return &Escrow{
		tokens: tokens,
		locks:  make(map[uint64]*Lock),
	}
}

func (e *Escrow) Lock(
	txn *database.Txn,
	from string,
	to string,
	quantity uint64,
	trigger string,
	memo string,
) (uint64, error) {
	if err := e.tokens.Transfer(txn, from, EscrowAccount, quantity, memo); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastId++
	id := e.lastId
	e.locks[id] = &Lock{
		ID:        id,
		Sender:    from,
		Recipient: to,
		Quantity:  quantity,
		Trigger:   trigger,
	}
	txn.OnRollback(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.locks, id)
	})
	return id, nil
}

func (e *Escrow) setState(txn *database.Txn, lock *Lock, state LockState) {
	prev := lock.State
	lock.State = state
	txn.OnRollback(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		lock.State = prev
	})
}

func (e *Escrow) CancelLock(txn *database.Txn, lockId uint64, _ string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[lockId]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrLockNotFound, lockId)
	}
	if lock.State != LockLocked {
		return false, nil
	}
	e.setState(txn, lock, LockCancelled)
	return true, nil
}

func (e *Escrow) Withdraw(txn *database.Txn, lockId uint64) error {
	e.mu.Lock()
	lock, ok := e.locks[lockId]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrLockNotFound, lockId)
	}
	if lock.State != LockCancelled {
		e.mu.Unlock()
		return fmt.Errorf("lock %d is not cancelled", lockId)
	}
	e.setState(txn, lock, LockWithdrawn)
	sender, quantity := lock.Sender, lock.Quantity
	e.mu.Unlock()
	return e.tokens.Transfer(txn, EscrowAccount, sender, quantity, "withdraw")
}

// Fire releases every locked entry waiting on trigger to its recipient and
// returns how many were released
func (e *Escrow) Fire(txn *database.Txn, trigger string) (int, error) {
	e.mu.Lock()
	var due []*Lock
	for _, lock := range e.locks {
		if lock.State == LockLocked && lock.Trigger == trigger {
			e.setState(txn, lock, LockReleased)
			due = append(due, lock)
		}
	}
	e.mu.Unlock()
	for _, lock := range due {
		if err := e.tokens.Transfer(txn, EscrowAccount, lock.Recipient, lock.Quantity, trigger); err != nil {
			return 0, err
		}
	}
	return len(due), nil
}

// Get returns a copy of a lock
func (e *Escrow) Get(lockId uint64) (Lock, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[lockId]
	if !ok {
		return Lock{}, false
	}
	return *lock, true
}
