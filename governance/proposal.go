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
	"maps"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/tally"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
)

// descriptionPolicy keeps basic markdown formatting in proposal descriptions
// and strips everything else
var descriptionPolicy = newDescriptionPolicy()

func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	p.AllowElements("ul", "ol", "li")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

// proposalText holds the validated text attributes of a proposal
type proposalText struct {
	Title       string
	Summary     string
	Description string
	Image       string
	Url         string
}

func validateText(attrs Attrs, limits TextLimits) (proposalText, error) {
	var ret proposalText
	fields := []struct {
		key    string
		maxLen int
		dest   *string
	}{
		{AttrTitle, limits.Title, &ret.Title},
		{AttrSummary, limits.Summary, &ret.Summary},
		{AttrDescription, limits.Description, &ret.Description},
		{AttrImage, limits.Image, &ret.Image},
		{AttrUrl, limits.Url, &ret.Url},
	}
	for _, field := range fields {
		v, err := attrs.Text(field.key, field.maxLen)
		if err != nil {
			return ret, err
		}
		if field.key == AttrDescription {
			v = descriptionPolicy.Sanitize(v)
			if v == "" {
				return ret, fmt.Errorf(
					"%w: %s is empty after sanitizing",
					ErrTextLength,
					field.key,
				)
			}
		}
		*field.dest = v
	}
	return ret, nil
}

func (t proposalText) apply(p *models.Proposal) {
	p.Title = t.Title
	p.Summary = t.Summary
	p.Description = t.Description
	p.Image = t.Image
	p.Url = t.Url
}

func (e *Engine) fundType(fund string) (string, error) {
	fundType, ok := e.config.Funds[fund]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFund, fund)
	}
	return fundType, nil
}

// resolveFund checks that a fund account serves the strategy's fund type
func (e *Engine) resolveFund(fund string, strategy Strategy) (string, error) {
	fundType, err := e.fundType(fund)
	if err != nil {
		return "", err
	}
	if fundType != strategy.FundType() {
		return "", fmt.Errorf(
			"%w: %s is a %s fund, type needs %s",
			ErrFundMismatch,
			fund,
			fundType,
			strategy.FundType(),
		)
	}
	return fundType, nil
}

// loadProposal returns a proposal with its auxiliary attributes and strategy
func (op *opContext) loadProposal(id uint) (*models.Proposal, Attrs, Strategy, error) {
	p, err := op.e.db.GetProposal(id, op.txn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("proposal %d: %w", id, err)
	}
	aux, err := op.e.db.GetProposalAux(id, op.txn)
	if err != nil {
		return nil, nil, nil, err
	}
	strategy, err := StrategyFor(p.Type)
	if err != nil {
		return nil, nil, nil, err
	}
	attrs := Attrs(aux.Attributes)
	if attrs == nil {
		attrs = Attrs{}
	}
	return p, attrs, strategy, nil
}

func (op *opContext) saveProposal(p *models.Proposal, aux Attrs) error {
	if err := op.e.db.SetProposal(p, op.txn); err != nil {
		return err
	}
	return op.e.db.SetProposalAux(
		&models.ProposalAux{
			ProposalID: p.ID,
			Attributes: datatypes.JSONMap(aux),
		},
		op.txn,
	)
}

// Create validates attrs and stores a new staged proposal. It returns the
// proposal ID
func (e *Engine) Create(ctx context.Context, caller string, attrs Attrs) (uint, error) {
	var id uint
	err := e.exec(ctx, "create", func(op *opContext) error {
		p, err := op.create(caller, attrs)
		if err != nil {
			return err
		}
		id = p.ID
		return nil
	}, attribute.String("caller", caller))
	return id, err
}

func (op *opContext) create(caller string, attrs Attrs) (*models.Proposal, error) {
	creator, err := attrs.String(AttrCreator)
	if err != nil {
		return nil, err
	}
	if creator != caller {
		return nil, fmt.Errorf("%w: %s cannot create for %s", ErrNotAuthorized, caller, creator)
	}
	citizen, err := op.e.config.Accounts.IsCitizen(op.txn, caller)
	if err != nil {
		return nil, err
	}
	if !citizen {
		return nil, fmt.Errorf("%w: %s", ErrNotCitizen, caller)
	}
	typ, err := attrs.String(AttrType)
	if err != nil {
		return nil, err
	}
	strategy, err := StrategyFor(typ)
	if err != nil {
		return nil, err
	}
	fund, err := attrs.String(AttrFund)
	if err != nil {
		return nil, err
	}
	fundType, err := op.e.resolveFund(fund, strategy)
	if err != nil {
		return nil, err
	}
	text, err := validateText(attrs, op.params.Text)
	if err != nil {
		return nil, err
	}
	p := &models.Proposal{
		Creator:   creator,
		Fund:      fund,
		FundType:  fundType,
		Type:      typ,
		Stage:     models.StageStaged,
		Status:    models.StatusOpen,
		LastCycle: op.cycle(),
	}
	text.apply(p)
	aux := Attrs{}
	if err := strategy.Create(op, p, attrs, aux); err != nil {
		return nil, err
	}
	if err := op.saveProposal(p, aux); err != nil {
		return nil, err
	}
	op.publish(event.ProposalCreatedEventType, event.ProposalEvent{
		ProposalID: p.ID,
		Creator:    p.Creator,
		Type:       p.Type,
	})
	op.afterCommit(func() {
		op.e.metrics.proposalsCreated.Inc()
	})
	op.logger.Info(
		"proposal created",
		"proposal", p.ID,
		"creator", p.Creator,
		"type", p.Type,
		"fund", p.Fund,
	)
	return p, nil
}

// staged loads a proposal the caller created that is still staged
func (op *opContext) staged(caller string, id uint) (*models.Proposal, Attrs, Strategy, error) {
	p, aux, strategy, err := op.loadProposal(id)
	if err != nil {
		return nil, nil, nil, err
	}
	if p.Creator != caller {
		return nil, nil, nil, fmt.Errorf("%w: %s is not the creator of proposal %d", ErrNotAuthorized, caller, id)
	}
	if p.Stage != models.StageStaged {
		return nil, nil, nil, fmt.Errorf("%w: proposal %d is %s", ErrWrongStage, id, p.Stage)
	}
	return p, aux, strategy, nil
}

// Update changes the attributes of a staged proposal. Attributes missing
// from attrs keep their current values. The creator and type are fixed
func (e *Engine) Update(ctx context.Context, caller string, id uint, attrs Attrs) error {
	return e.exec(ctx, "update", func(op *opContext) error {
		p, aux, strategy, err := op.staged(caller, id)
		if err != nil {
			return err
		}
		merged := Attrs{
			AttrCreator:     p.Creator,
			AttrType:        p.Type,
			AttrFund:        p.Fund,
			AttrTitle:       p.Title,
			AttrSummary:     p.Summary,
			AttrDescription: p.Description,
			AttrImage:       p.Image,
			AttrUrl:         p.Url,
		}
		if p.Quantity > 0 {
			merged[AttrQuantity] = p.Quantity
		}
		maps.Copy(merged, aux)
		maps.Copy(merged, attrs)
		if merged[AttrCreator] != p.Creator || merged[AttrType] != p.Type {
			return fmt.Errorf("%w: creator and type cannot change", ErrInvalidAttribute)
		}
		fund, err := merged.String(AttrFund)
		if err != nil {
			return err
		}
		fundType, err := e.resolveFund(fund, strategy)
		if err != nil {
			return err
		}
		text, err := validateText(merged, op.params.Text)
		if err != nil {
			return err
		}
		p.Fund = fund
		p.FundType = fundType
		text.apply(p)
		newAux := Attrs{}
		if err := strategy.Update(op, p, merged, newAux); err != nil {
			return err
		}
		return op.saveProposal(p, newAux)
	}, attribute.Int("proposal", int(id))) //nolint:gosec
}

// Cancel deletes a staged proposal and returns its stake to the creator
func (e *Engine) Cancel(ctx context.Context, caller string, id uint) error {
	return e.exec(ctx, "cancel", func(op *opContext) error {
		p, aux, strategy, err := op.staged(caller, id)
		if err != nil {
			return err
		}
		if err := e.db.DeleteProposal(id, op.txn); err != nil {
			return err
		}
		if err := strategy.Cancel(op, p, aux); err != nil {
			return err
		}
		op.publish(event.ProposalCancelledEventType, event.ProposalEvent{
			ProposalID: p.ID,
			Creator:    p.Creator,
			Type:       p.Type,
		})
		op.logger.Info("proposal cancelled", "proposal", id)
		return nil
	}, attribute.Int("proposal", int(id))) //nolint:gosec
}

// Stake moves quantity from the creator to the governance account and adds
// it to the proposal's stake
func (e *Engine) Stake(ctx context.Context, caller string, id uint, quantity uint64) error {
	return e.exec(ctx, "stake", func(op *opContext) error {
		p, _, _, err := op.staged(caller, id)
		if err != nil {
			return err
		}
		if quantity == 0 || p.Staked+quantity < p.Staked {
			return fmt.Errorf("%w: stake %d", ErrInvalidAmount, quantity)
		}
		if err := e.config.Tokens.Transfer(
			op.txn,
			caller,
			e.config.GovernanceAccount,
			quantity,
			fmt.Sprintf("stake proposal %d", id),
		); err != nil {
			return fmt.Errorf("transfer stake: %w", err)
		}
		p.Staked += quantity
		if err := e.db.SetProposal(p, op.txn); err != nil {
			return err
		}
		op.publish(event.ProposalStakedEventType, event.ProposalEvent{
			ProposalID: p.ID,
			Creator:    p.Creator,
			Type:       p.Type,
			Staked:     p.Staked,
		})
		return nil
	}, attribute.Int("proposal", int(id))) //nolint:gosec
}

// debitStake takes amount out of the stake held for p
func debitStake(p *models.Proposal, amount uint64) error {
	if amount > p.Staked {
		return fmt.Errorf(
			"%w: proposal %d holds %d, needs %d",
			ErrInsufficientStake,
			p.ID,
			p.Staked,
			amount,
		)
	}
	p.Staked -= amount
	return nil
}

// refundStake returns the whole stake to the creator
func (op *opContext) refundStake(p *models.Proposal) error {
	amount := p.Staked
	if amount == 0 {
		return nil
	}
	if err := debitStake(p, amount); err != nil {
		return err
	}
	return op.e.config.Tokens.Transfer(
		op.txn,
		op.e.config.GovernanceAccount,
		p.Creator,
		amount,
		fmt.Sprintf("refund stake proposal %d", p.ID),
	)
}

// burnStake destroys the whole stake
func (op *opContext) burnStake(p *models.Proposal) error {
	amount := p.Staked
	if amount == 0 {
		return nil
	}
	if err := debitStake(p, amount); err != nil {
		return err
	}
	return op.e.config.Tokens.Burn(
		op.txn,
		op.e.config.GovernanceAccount,
		amount,
		fmt.Sprintf("burn stake proposal %d", p.ID),
	)
}

// Evaluate runs one evaluation pass of a proposal for cycle
func (e *Engine) Evaluate(ctx context.Context, id uint, cycle uint64) error {
	return e.exec(ctx, "evaluate", func(op *opContext) error {
		p, aux, strategy, err := op.loadProposal(id)
		if err != nil {
			return err
		}
		return op.evaluate(p, aux, strategy, cycle)
	}, attribute.Int("proposal", int(id))) //nolint:gosec
}

// evaluate advances the state machine of a proposal by one pass. A proposal
// already evaluated for cycle is left alone
func (op *opContext) evaluate(
	p *models.Proposal,
	aux Attrs,
	strategy Strategy,
	cycle uint64,
) error {
	if p.Done() || p.LastCycle >= cycle {
		return nil
	}
	var result string
	var payout uint64
	var err error
	switch p.Stage {
	case models.StageStaged:
		result, err = op.evaluateStaged(p, strategy, cycle)
	case models.StageActive:
		result, payout, err = op.evaluateActive(p, aux, strategy, cycle)
	default:
		return fmt.Errorf("%w: proposal %d has unknown stage %q", ErrWrongStage, p.ID, p.Stage)
	}
	if err != nil {
		return err
	}
	p.LastCycle = cycle
	if err := op.saveProposal(p, aux); err != nil {
		return err
	}
	op.publish(event.ProposalEvaluatedEventType, event.ProposalEvaluatedEvent{
		ProposalID: p.ID,
		Cycle:      cycle,
		Stage:      p.Stage,
		Status:     p.Status,
		Payout:     payout,
	})
	op.afterCommit(func() {
		op.e.metrics.evaluations.WithLabelValues(result).Inc()
	})
	op.logger.Info(
		"proposal evaluated",
		"proposal", p.ID,
		"cycle", cycle,
		"result", result,
		"stage", p.Stage,
		"status", p.Status,
		"payout", payout,
	)
	return nil
}

func (op *opContext) evaluateStaged(
	p *models.Proposal,
	strategy Strategy,
	cycle uint64,
) (string, error) {
	required := strategy.RequiredStake(op.params, p)
	if p.Staked < required {
		return "understaked", nil
	}
	p.Stage = models.StageActive
	p.Status = models.StatusOpen
	p.ActiveCycle = cycle
	if _, err := op.e.book.RegisterProposal(cycle, p.FundType, op.params.Quorum, op.txn); err != nil {
		return "", err
	}
	return "activated", nil
}

func (op *opContext) evaluateActive(
	p *models.Proposal,
	aux Attrs,
	strategy Strategy,
	cycle uint64,
) (string, uint64, error) {
	level, err := op.e.db.GetSupportLevel(p.ActiveCycle, p.FundType, op.txn)
	if err != nil {
		return "", 0, err
	}
	majority := tally.HasMajority(p.Favour, p.Against, op.params.Majority)
	quorum := p.Status == models.StatusEvaluate || p.Favour >= level.VotesNeeded
	if !majority || !quorum {
		if err := op.reject(p, aux, strategy); err != nil {
			return "", 0, err
		}
		return "rejected", 0, nil
	}
	if checker, ok := strategy.(openChecker); ok && p.Status == models.StatusOpen {
		if err := checker.CheckOpen(op, aux); err != nil {
			if !errors.Is(err, ErrInvalidSetting) {
				return "", 0, err
			}
			op.logger.Warn(
				"proposal no longer applicable, rejecting",
				"proposal", p.ID,
				"error", err,
			)
			if err := op.reject(p, aux, strategy); err != nil {
				return "", 0, err
			}
			return "rejected", 0, nil
		}
	}
	var out outcome
	if p.Status == models.StatusOpen {
		if err := op.refundStake(p); err != nil {
			return "", 0, err
		}
		if op.params.RepReward > 0 {
			if err := op.e.config.Accounts.AddRep(op.txn, p.Creator, op.params.RepReward); err != nil {
				return "", 0, fmt.Errorf("award creator reputation: %w", err)
			}
		}
		out, err = strategy.StatusOpen(op, p, aux)
	} else {
		out, err = strategy.StatusEval(op, p, aux)
	}
	if err != nil {
		return "", 0, err
	}
	p.Age++
	if out.Done {
		p.Stage = models.StageDone
		p.Status = models.StatusPassed
		return "passed", out.Payout, nil
	}
	p.Status = models.StatusEvaluate
	p.ActiveCycle = cycle
	if _, err := op.e.book.RegisterProposal(cycle, p.FundType, op.params.Quorum, op.txn); err != nil {
		return "", 0, err
	}
	return "continued", out.Payout, nil
}

func (op *opContext) reject(p *models.Proposal, aux Attrs, strategy Strategy) error {
	if p.Status == models.StatusOpen {
		if err := op.burnStake(p); err != nil {
			return err
		}
	} else {
		if op.params.RepPenalty > 0 {
			if err := op.e.config.Accounts.SubRep(op.txn, p.Creator, op.params.RepPenalty); err != nil {
				return fmt.Errorf("penalize creator reputation: %w", err)
			}
		}
		paid, err := aux.Uint64Or(auxPaid, 0)
		if err != nil {
			return err
		}
		if paid > 0 {
			if err := op.e.config.Accounts.Punish(op.txn, p.Creator, 1); err != nil {
				return fmt.Errorf("punish creator: %w", err)
			}
		}
		if err := strategy.StatusRejected(op, p, aux); err != nil {
			return err
		}
	}
	p.Stage = models.StageDone
	p.Status = models.StatusRejected
	return nil
}
