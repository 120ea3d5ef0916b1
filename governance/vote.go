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

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/blinklabs-io/agora/voice"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

var optionNames = map[uint8]string{
	models.VoteAgainst: "against",
	models.VoteFavour:  "favour",
	models.VoteNeutral: "neutral",
}

// mimicPayload describes a vote to replay on behalf of a delegatee's
// delegators
type mimicPayload struct {
	ProposalID uint   `json:"proposalId"`
	Delegatee  string `json:"delegatee"`
	Scope      string `json:"scope"`
	Option     uint8  `json:"option"`
	// Fraction of the delegatee's voice the vote consumed
	Fraction string `json:"fraction"`
}

func voteKey(proposalId uint, voter string) string {
	return strconv.FormatUint(uint64(proposalId), 10) + "/" + voter
}

func parseCursor(cursor string) (uint, error) {
	if cursor == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(cursor, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q: %w", cursor, err)
	}
	return uint(v), nil
}

func formatCursor(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Favour commits amount of the caller's voice in favour of a proposal
func (e *Engine) Favour(ctx context.Context, caller string, id uint, amount uint64) error {
	return e.vote(ctx, caller, id, models.VoteFavour, amount)
}

// Against commits amount of the caller's voice against a proposal
func (e *Engine) Against(ctx context.Context, caller string, id uint, amount uint64) error {
	return e.vote(ctx, caller, id, models.VoteAgainst, amount)
}

// Neutral commits amount of the caller's voice without taking a side
func (e *Engine) Neutral(ctx context.Context, caller string, id uint, amount uint64) error {
	return e.vote(ctx, caller, id, models.VoteNeutral, amount)
}

func (e *Engine) vote(ctx context.Context, caller string, id uint, option uint8, amount uint64) error {
	return e.exec(ctx, "vote", func(op *opContext) error {
		return op.castVote(caller, id, option, amount, false)
	},
		attribute.String("caller", caller),
		attribute.Int("proposal", int(id)), //nolint:gosec
		attribute.String("option", optionNames[option]),
	)
}

// castVote records a vote, spends the voter's voice and queues the replay
// of the vote for the voter's delegators
func (op *opContext) castVote(voter string, id uint, option uint8, amount uint64, mimic bool) error {
	if _, ok := optionNames[option]; !ok {
		return fmt.Errorf("%w: vote option %d", ErrInvalidAttribute, option)
	}
	if amount == 0 {
		return fmt.Errorf("%w: vote amount must be positive", ErrInvalidAmount)
	}
	p, _, strategy, err := op.loadProposal(id)
	if err != nil {
		return err
	}
	if p.Stage != models.StageActive || p.Status != models.StatusOpen {
		return fmt.Errorf("%w: proposal %d is %s/%s", ErrVotingClosed, id, p.Stage, p.Status)
	}
	voted, err := op.hasVoted(id, voter)
	if err != nil {
		return err
	}
	if voted {
		return fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, id)
	}
	scope := strategy.Scope()
	fraction, err := op.e.voices.ChangeVoice(voter, amount, true, scope, op.txn)
	if err != nil {
		return err
	}
	vote := &models.Vote{
		ProposalID: id,
		Voter:      voter,
		Option:     option,
		Amount:     amount,
		Cycle:      op.cycle(),
		Mimic:      mimic,
	}
	if err := op.e.db.SetVote(vote, op.txn); err != nil {
		return err
	}
	switch option {
	case models.VoteFavour:
		p.Favour += amount
	case models.VoteAgainst:
		p.Against += amount
	}
	if err := op.e.db.SetProposal(p, op.txn); err != nil {
		return err
	}
	if _, err := op.e.book.RecordVote(op.cycle(), p.FundType, option, amount, op.params.Quorum, op.txn); err != nil {
		return err
	}
	// Only favour and against votes count as participation
	if option != models.VoteNeutral {
		if err := op.e.db.IncrementParticipant(voter, op.cycle(), op.txn); err != nil {
			return err
		}
	}
	if err := op.schedule(TaskVoteMimic, voteKey(id, voter), mimicPayload{
		ProposalID: id,
		Delegatee:  voter,
		Scope:      scope,
		Option:     option,
		Fraction:   fraction.String(),
	}); err != nil {
		return err
	}
	op.publish(event.VoteCastEventType, event.VoteCastEvent{
		ProposalID: id,
		Voter:      voter,
		Option:     option,
		Amount:     amount,
		Mimic:      mimic,
	})
	origin := "direct"
	if mimic {
		origin = "mimic"
	}
	op.afterCommit(func() {
		op.e.metrics.votes.WithLabelValues(optionNames[option], origin).Inc()
	})
	return nil
}

func (op *opContext) hasVoted(id uint, voter string) (bool, error) {
	_, err := op.e.db.GetVote(id, voter, op.txn)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, models.ErrVoteNotFound) {
		return false, nil
	}
	return false, err
}

// voteOnBehalf casts a vote for a delegator. It is used by vote propagation
// only
func (op *opContext) voteOnBehalf(delegator string, id uint, option uint8, amount uint64) error {
	return op.castVote(delegator, id, option, amount, true)
}

// mimicVoteChunk replays a delegatee's vote for the next chunk of its
// delegators. Each delegator votes the same fraction of its own voice
func (e *Engine) mimicVoteChunk(op *opContext, task scheduler.Task) (string, bool, error) {
	var payload mimicPayload
	if err := task.Decode(&payload); err != nil {
		return task.Cursor, false, err
	}
	after, err := parseCursor(task.Cursor)
	if err != nil {
		return task.Cursor, false, err
	}
	fraction, err := decimal.NewFromString(payload.Fraction)
	if err != nil {
		return task.Cursor, false, fmt.Errorf("invalid mimic fraction: %w", err)
	}
	p, err := e.db.GetProposal(payload.ProposalID, op.txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return task.Cursor, true, nil
		}
		return task.Cursor, false, err
	}
	// Voting closed since the vote was cast
	if p.Stage != models.StageActive || p.Status != models.StatusOpen {
		return task.Cursor, true, nil
	}
	edges, err := e.graph.DelegatorsAfter(
		payload.Delegatee,
		payload.Scope,
		after,
		op.params.BatchSize,
		op.txn,
	)
	if err != nil {
		return task.Cursor, false, err
	}
	for _, edge := range edges {
		after = edge.ID
		voted, err := op.hasVoted(payload.ProposalID, edge.Delegator)
		if err != nil {
			return task.Cursor, false, err
		}
		if voted {
			continue
		}
		balance, err := e.voices.Get(edge.Delegator, payload.Scope, op.txn)
		if err != nil {
			return task.Cursor, false, err
		}
		amount := voice.Apply(balance, fraction)
		if amount == 0 {
			continue
		}
		if err := op.voteOnBehalf(edge.Delegator, payload.ProposalID, payload.Option, amount); err != nil {
			return task.Cursor, false, fmt.Errorf("mimic vote for %s: %w", edge.Delegator, err)
		}
	}
	return formatCursor(after), len(edges) < op.params.BatchSize, nil
}

// RevertVote flips the caller's favour vote to against while the proposal
// is in its evaluate window
func (e *Engine) RevertVote(ctx context.Context, caller string, id uint) error {
	return e.exec(ctx, "revert_vote", func(op *opContext) error {
		p, _, strategy, err := op.loadProposal(id)
		if err != nil {
			return err
		}
		if p.Stage != models.StageActive || p.Status != models.StatusEvaluate {
			return fmt.Errorf("%w: proposal %d is %s/%s", ErrVotingClosed, id, p.Stage, p.Status)
		}
		vote, err := e.db.GetVote(id, caller, op.txn)
		if err != nil {
			if errors.Is(err, models.ErrVoteNotFound) {
				return fmt.Errorf("%w: %s has not voted on proposal %d", ErrNotRevertable, caller, id)
			}
			return err
		}
		if vote.Option != models.VoteFavour {
			return fmt.Errorf("%w: vote is %s", ErrNotRevertable, optionNames[vote.Option])
		}
		return op.revert(p, vote, strategy.Scope())
	},
		attribute.String("caller", caller),
		attribute.Int("proposal", int(id)), //nolint:gosec
	)
}

func (op *opContext) revert(p *models.Proposal, vote *models.Vote, scope string) error {
	vote.Option = models.VoteAgainst
	if err := op.e.db.SetVote(vote, op.txn); err != nil {
		return err
	}
	p.Favour -= min(p.Favour, vote.Amount)
	p.Against += vote.Amount
	if err := op.e.db.SetProposal(p, op.txn); err != nil {
		return err
	}
	if _, err := op.e.book.RecordRevert(op.cycle(), p.FundType, vote.Amount, op.params.Quorum, op.txn); err != nil {
		return err
	}
	if err := op.schedule(TaskVoteMimicRevert, voteKey(p.ID, vote.Voter), mimicPayload{
		ProposalID: p.ID,
		Delegatee:  vote.Voter,
		Scope:      scope,
		Option:     models.VoteAgainst,
	}); err != nil {
		return err
	}
	op.publish(event.VoteCastEventType, event.VoteCastEvent{
		ProposalID: p.ID,
		Voter:      vote.Voter,
		Option:     models.VoteAgainst,
		Amount:     vote.Amount,
		Mimic:      vote.Mimic,
		Revert:     true,
	})
	return nil
}

// mimicRevertChunk reverts the mimicked favour votes of the next chunk of a
// delegatee's delegators. Votes the delegators cast themselves are kept
func (e *Engine) mimicRevertChunk(op *opContext, task scheduler.Task) (string, bool, error) {
	var payload mimicPayload
	if err := task.Decode(&payload); err != nil {
		return task.Cursor, false, err
	}
	after, err := parseCursor(task.Cursor)
	if err != nil {
		return task.Cursor, false, err
	}
	p, err := e.db.GetProposal(payload.ProposalID, op.txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalNotFound) {
			return task.Cursor, true, nil
		}
		return task.Cursor, false, err
	}
	if p.Stage != models.StageActive || p.Status != models.StatusEvaluate {
		return task.Cursor, true, nil
	}
	edges, err := e.graph.DelegatorsAfter(
		payload.Delegatee,
		payload.Scope,
		after,
		op.params.BatchSize,
		op.txn,
	)
	if err != nil {
		return task.Cursor, false, err
	}
	for _, edge := range edges {
		after = edge.ID
		vote, err := e.db.GetVote(payload.ProposalID, edge.Delegator, op.txn)
		if err != nil {
			if errors.Is(err, models.ErrVoteNotFound) {
				continue
			}
			return task.Cursor, false, err
		}
		if !vote.Mimic || vote.Option != models.VoteFavour {
			continue
		}
		if err := op.revert(p, vote, payload.Scope); err != nil {
			return task.Cursor, false, fmt.Errorf("mimic revert for %s: %w", edge.Delegator, err)
		}
	}
	return formatCursor(after), len(edges) < op.params.BatchSize, nil
}
