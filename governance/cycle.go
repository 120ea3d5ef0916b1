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
	"errors"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/blinklabs-io/agora/voice"
	"github.com/shopspring/decimal"
)

type decayPayload struct {
	Intervals  uint64 `json:"intervals"`
	Multiplier string `json:"multiplier"`
}

// AdvanceCycle queues a cycle advance. It returns
// scheduler.ErrDuplicateTask if one is already queued
func (e *Engine) AdvanceCycle(ctx context.Context) error {
	task, err := scheduler.NewTask(TaskCycleAdvance, "", "", nil)
	if err != nil {
		return err
	}
	return e.sched.Schedule(task)
}

// DecayVoices queues a check for elapsed decay intervals
func (e *Engine) DecayVoices(ctx context.Context) error {
	task, err := scheduler.NewTask(TaskCycleDecay, "", "", nil)
	if err != nil {
		return err
	}
	return e.sched.Schedule(task)
}

// UpdateVoices queues a refresh of every scope's voice from reputation
func (e *Engine) UpdateVoices(ctx context.Context) error {
	return e.exec(ctx, "update_voices", func(op *opContext) error {
		return op.scheduleRefresh()
	})
}

func (op *opContext) scheduleRefresh() error {
	for _, scope := range voice.Scopes {
		err := op.schedule(TaskVoiceRefresh, scope, nil)
		// A refresh of the scope that has not started yet covers this one
		if err != nil && !errors.Is(err, scheduler.ErrDuplicateTask) {
			return err
		}
	}
	return nil
}

// advanceCycle starts the next cycle: it opens the cycle statistics and
// queues the evaluation, voice refresh and participation reward sweeps
func (e *Engine) advanceCycle(op *opContext, _ scheduler.Task) error {
	now := op.now.Unix()
	next := op.state.Cycle + 1
	op.state.Cycle = next
	op.state.CycleStartedAt = now
	op.state.LastDecayAt = now
	if err := e.db.SetCycleState(op.state, op.txn); err != nil {
		return err
	}
	active, err := e.db.CountActiveAccounts(op.txn)
	if err != nil {
		return err
	}
	if _, err := e.book.OpenCycle(
		next,
		now,
		op.params.QuorumWindow,
		active,
		FundTypes,
		op.params.Quorum,
		op.txn,
	); err != nil {
		return err
	}
	key := strconv.FormatUint(next, 10)
	if err := op.schedule(TaskProposalEvaluate, key, nil); err != nil {
		return err
	}
	if err := op.scheduleRefresh(); err != nil {
		return err
	}
	if err := op.schedule(TaskParticipantReward, key, nil); err != nil {
		return err
	}
	op.publish(event.CycleAdvancedEventType, event.CycleAdvancedEvent{
		Cycle:     next,
		StartedAt: now,
	})
	op.afterCommit(func() {
		e.metrics.cycle.Set(float64(next))
	})
	op.logger.Info("cycle advanced", "cycle", next, "active_accounts", active)
	return nil
}

// decayVoices applies every whole decay interval elapsed since the last
// decay by queueing a chunked sweep over the voice ledger
func (e *Engine) decayVoices(op *opContext, _ scheduler.Task) error {
	interval := int64(op.params.DecayInterval.Seconds())
	delay := int64(op.params.DecayDelay.Seconds())
	n := voice.DecayIntervals(
		op.now.Unix(),
		op.state.LastDecayAt,
		op.state.CycleStartedAt,
		delay,
		interval,
	)
	if n == 0 {
		return nil
	}
	start := max(op.state.LastDecayAt, op.state.CycleStartedAt+delay)
	op.state.LastDecayAt = start + int64(n)*interval //nolint:gosec
	if err := e.db.SetCycleState(op.state, op.txn); err != nil {
		return err
	}
	multiplier := voice.Multiplier(op.params.DecayPct, n)
	if err := op.schedule(
		TaskVoiceDecay,
		strconv.FormatInt(op.state.LastDecayAt, 10),
		decayPayload{Intervals: n, Multiplier: multiplier.String()},
	); err != nil {
		return err
	}
	op.publish(event.VoiceDecayedEventType, event.VoiceDecayedEvent{
		Intervals:  n,
		Multiplier: multiplier.String(),
	})
	op.logger.Info(
		"voice decay scheduled",
		"intervals", n,
		"multiplier", multiplier.String(),
	)
	return nil
}

func (e *Engine) decayVoiceChunk(op *opContext, task scheduler.Task) (string, bool, error) {
	var payload decayPayload
	if err := task.Decode(&payload); err != nil {
		return task.Cursor, false, err
	}
	multiplier, err := decimal.NewFromString(payload.Multiplier)
	if err != nil {
		return task.Cursor, false, fmt.Errorf("invalid decay multiplier: %w", err)
	}
	after, err := parseCursor(task.Cursor)
	if err != nil {
		return task.Cursor, false, err
	}
	last, done, err := e.voices.DecayChunk(after, op.params.BatchSize, multiplier, op.txn)
	if err != nil {
		return task.Cursor, false, err
	}
	return formatCursor(last), done, nil
}

func (e *Engine) refreshVoiceChunk(op *opContext, task scheduler.Task) (string, bool, error) {
	after, err := parseCursor(task.Cursor)
	if err != nil {
		return task.Cursor, false, err
	}
	last, done, err := e.voices.RefreshChunk(
		task.Key,
		after,
		op.params.BatchSize,
		func(account string) (uint64, error) {
			return e.config.Accounts.ReputationScore(op.txn, account)
		},
		op.txn,
	)
	if err != nil {
		return task.Cursor, false, err
	}
	return formatCursor(last), done, nil
}

type evaluatePayload struct {
	ProposalID uint   `json:"proposalId"`
	Cycle      uint64 `json:"cycle"`
}

// evaluateChunk queues an evaluation step for each pending proposal in the
// next chunk. The task key is the cycle being evaluated for. Every proposal
// is evaluated in its own step so a failing one is dropped alone
func (e *Engine) evaluateChunk(op *opContext, task scheduler.Task) (string, bool, error) {
	cycle, err := strconv.ParseUint(task.Key, 10, 64)
	if err != nil {
		return task.Cursor, false, fmt.Errorf("invalid evaluation cycle %q: %w", task.Key, err)
	}
	after, err := parseCursor(task.Cursor)
	if err != nil {
		return task.Cursor, false, err
	}
	proposals, err := e.db.GetProposalsAfter(after, op.params.BatchSize, op.txn)
	if err != nil {
		return task.Cursor, false, err
	}
	for i := range proposals {
		p := &proposals[i]
		after = p.ID
		if p.Done() || p.LastCycle >= cycle {
			continue
		}
		err := op.schedule(
			TaskEvaluateProposal,
			task.Key+"/"+formatCursor(p.ID),
			evaluatePayload{ProposalID: p.ID, Cycle: cycle},
		)
		if err != nil && !errors.Is(err, scheduler.ErrDuplicateTask) {
			return task.Cursor, false, err
		}
	}
	return formatCursor(after), len(proposals) < op.params.BatchSize, nil
}

// evaluateOne runs one evaluation pass for a single proposal. A proposal
// cancelled after it was queued is skipped
func (e *Engine) evaluateOne(op *opContext, task scheduler.Task) error {
	var payload evaluatePayload
	if err := task.Decode(&payload); err != nil {
		return err
	}
	p, aux, strategy, err := op.loadProposal(payload.ProposalID)
	if errors.Is(err, ErrProposalNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := op.evaluate(p, aux, strategy, payload.Cycle); err != nil {
		e.metrics.evaluations.WithLabelValues("failed").Inc()
		return fmt.Errorf("evaluate proposal %d: %w", p.ID, err)
	}
	return nil
}

// rewardChunk grants participation reputation to the next chunk of
// participants and erases their counters
func (e *Engine) rewardChunk(op *opContext, task scheduler.Task) (string, bool, error) {
	// Only counters of cycles before the one that queued the sweep
	cycle, err := strconv.ParseUint(task.Key, 10, 64)
	if err != nil {
		return task.Cursor, false, fmt.Errorf("invalid reward cycle %q: %w", task.Key, err)
	}
	after, err := parseCursor(task.Cursor)
	if err != nil {
		return task.Cursor, false, err
	}
	participants, err := e.db.GetParticipantsAfter(after, cycle, op.params.BatchSize, op.txn)
	if err != nil {
		return task.Cursor, false, err
	}
	ids := make([]uint, 0, len(participants))
	for _, participant := range participants {
		after = participant.ID
		ids = append(ids, participant.ID)
		if participant.Count == 0 || op.params.VoteRepReward == 0 {
			continue
		}
		if err := e.config.Accounts.AddRep(op.txn, participant.Account, op.params.VoteRepReward); err != nil {
			return task.Cursor, false, fmt.Errorf("reward %s: %w", participant.Account, err)
		}
	}
	if len(ids) > 0 {
		if err := e.db.DeleteParticipants(ids, op.txn); err != nil {
			return task.Cursor, false, err
		}
	}
	return formatCursor(after), len(participants) < op.params.BatchSize, nil
}
