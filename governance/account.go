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
	"context"
	"fmt"

	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/voice"
	"go.opentelemetry.io/otel/attribute"
)

// Delegate points the caller's voice in scope at delegatee
func (e *Engine) Delegate(ctx context.Context, caller string, delegatee string, scope string) error {
	return e.exec(ctx, "delegate", func(op *opContext) error {
		if err := e.graph.Delegate(
			caller,
			delegatee,
			scope,
			op.params.DelegationDepth,
			op.now.Unix(),
			op.txn,
		); err != nil {
			return err
		}
		op.publish(event.DelegationEventType, event.DelegationEvent{
			Delegator: caller,
			Delegatee: delegatee,
			Scope:     scope,
		})
		op.afterCommit(func() {
			e.metrics.delegations.WithLabelValues("delegate").Inc()
		})
		return nil
	},
		attribute.String("caller", caller),
		attribute.String("scope", scope),
	)
}

// Undelegate removes the edge from delegator to delegatee. The caller must
// be one of the two
func (e *Engine) Undelegate(
	ctx context.Context,
	caller string,
	delegator string,
	delegatee string,
	scope string,
) error {
	return e.exec(ctx, "undelegate", func(op *opContext) error {
		if err := e.graph.Undelegate(caller, delegator, delegatee, scope, op.txn); err != nil {
			return err
		}
		op.publish(event.DelegationEventType, event.DelegationEvent{
			Delegator: delegator,
			Delegatee: delegatee,
			Scope:     scope,
			Removed:   true,
		})
		op.afterCommit(func() {
			e.metrics.delegations.WithLabelValues("undelegate").Inc()
		})
		return nil
	},
		attribute.String("caller", caller),
		attribute.String("scope", scope),
	)
}

// AddActive marks a citizen as an active participant. An account without
// voice gets it recovered from its reputation
func (e *Engine) AddActive(ctx context.Context, caller string) error {
	return e.exec(ctx, "add_active", func(op *opContext) error {
		citizen, err := e.config.Accounts.IsCitizen(op.txn, caller)
		if err != nil {
			return err
		}
		if !citizen {
			return fmt.Errorf("%w: %s", ErrNotCitizen, caller)
		}
		if err := e.db.SetActiveAccount(caller, op.now.Unix(), op.txn); err != nil {
			return err
		}
		balances, err := e.voices.Balances(caller, op.txn)
		if err != nil {
			return err
		}
		if len(balances) > 0 {
			return nil
		}
		return op.recoverVoice(caller)
	}, attribute.String("caller", caller))
}

// ChangeTrust grants or revokes an account's standing. Granting recovers
// its voice from reputation, revoking erases it. It is called by the
// accounts registry
func (e *Engine) ChangeTrust(ctx context.Context, account string, trust bool) error {
	return e.exec(ctx, "change_trust", func(op *opContext) error {
		if trust {
			if err := op.recoverVoice(account); err != nil {
				return err
			}
		} else {
			if err := e.voices.Erase(account, op.txn); err != nil {
				return err
			}
		}
		op.publish(event.TrustChangedEventType, event.TrustChangedEvent{
			Account: account,
			Trusted: trust,
		})
		op.logger.Info("account trust changed", "account", account, "trusted", trust)
		return nil
	}, attribute.String("account", account))
}

// recoverVoice sets an account's voice in every scope to its reputation
// score, decayed by the intervals the rest of the ledger has already been
// decayed by this cycle
func (op *opContext) recoverVoice(account string) error {
	score, err := op.e.config.Accounts.ReputationScore(op.txn, account)
	if err != nil {
		return fmt.Errorf("reputation score for %s: %w", account, err)
	}
	intervals := voice.DecayIntervals(
		op.state.LastDecayAt,
		0,
		op.state.CycleStartedAt,
		int64(op.params.DecayDelay.Seconds()),
		int64(op.params.DecayInterval.Seconds()),
	)
	return op.e.voices.Recover(account, score, op.params.DecayPct, intervals, op.txn)
}
