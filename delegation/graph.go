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

// Package delegation maintains the per-scope delegator to delegatee trust
// edges used to propagate votes
package delegation

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/voice"
)

var (
	ErrSelfDelegation = errors.New("cannot delegate to self")
	ErrCycle          = errors.New("delegation would create a cycle")
	ErrNoVoice        = errors.New("delegation requires voice in scope")
	ErrNotAuthorized  = errors.New("caller is not a party to the delegation")
	ErrNotDelegated   = errors.New("delegation not found")
)

// Graph stores delegation edges
type Graph struct {
	db     *database.Database
	voices *voice.Ledger
}

func NewGraph(db *database.Database, voices *voice.Ledger) *Graph {
	return &Graph{
		db:     db,
		voices: voices,
	}
}

// Delegation returns the outgoing edge for a delegator in scope, or nil
func (g *Graph) Delegation(
	delegator string,
	scope string,
	txn *database.Txn,
) (*models.Delegation, error) {
	edge, err := g.db.GetDelegation(delegator, scope, txn)
	if err != nil {
		if errors.Is(err, models.ErrDelegationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return edge, nil
}

// WouldCycle walks the delegatee chain starting at delegatee for at most
// maxDepth hops and reports whether it reaches delegator
func (g *Graph) WouldCycle(
	delegator string,
	delegatee string,
	scope string,
	maxDepth int,
	txn *database.Txn,
) (bool, error) {
	current := delegatee
	for range maxDepth {
		if current == delegator {
			return true, nil
		}
		edge, err := g.Delegation(current, scope, txn)
		if err != nil {
			return false, err
		}
		if edge == nil {
			return false, nil
		}
		current = edge.Delegatee
	}
	return current == delegator, nil
}

// Delegate points delegator's edge in scope at delegatee, replacing any
// previous edge
func (g *Graph) Delegate(
	delegator string,
	delegatee string,
	scope string,
	maxDepth int,
	timestamp int64,
	txn *database.Txn,
) error {
	if delegator == delegatee {
		return ErrSelfDelegation
	}
	if !voice.ValidScope(scope) {
		return fmt.Errorf("%w: %s", voice.ErrUnknownScope, scope)
	}
	for _, account := range []string{delegator, delegatee} {
		has, err := g.voices.Has(account, scope, txn)
		if err != nil {
			return err
		}
		if !has {
			return fmt.Errorf("%w: %s in %s", ErrNoVoice, account, scope)
		}
	}
	cycle, err := g.WouldCycle(delegator, delegatee, scope, maxDepth, txn)
	if err != nil {
		return err
	}
	if cycle {
		return fmt.Errorf(
			"%w: %s -> %s in %s",
			ErrCycle,
			delegator,
			delegatee,
			scope,
		)
	}
	return g.db.SetDelegation(
		&models.Delegation{
			Delegator: delegator,
			Delegatee: delegatee,
			Scope:     scope,
			Weight:    models.DelegationFullWeight,
			Timestamp: timestamp,
		},
		txn,
	)
}

// Undelegate removes the edge from delegator to delegatee. Either party may
// remove it
func (g *Graph) Undelegate(
	caller string,
	delegator string,
	delegatee string,
	scope string,
	txn *database.Txn,
) error {
	if caller != delegator && caller != delegatee {
		return ErrNotAuthorized
	}
	edge, err := g.Delegation(delegator, scope, txn)
	if err != nil {
		return err
	}
	if edge == nil || edge.Delegatee != delegatee {
		return fmt.Errorf(
			"%w: %s -> %s in %s",
			ErrNotDelegated,
			delegator,
			delegatee,
			scope,
		)
	}
	return g.db.DeleteDelegation(delegator, scope, txn)
}

// DelegatorsAfter returns up to limit edges pointing at delegatee in scope,
// ordered by edge ID after afterId
func (g *Graph) DelegatorsAfter(
	delegatee string,
	scope string,
	afterId uint,
	limit int,
	txn *database.Txn,
) ([]models.Delegation, error) {
	return g.db.GetDelegatorsAfter(delegatee, scope, afterId, limit, txn)
}
