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
	"fmt"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/shopspring/decimal"
)

// EscrowTrigger is the event that releases alliance funding locks
const EscrowTrigger = "golive"

type payMode int

const (
	payTransfer payMode = iota
	payLock
	payInvite
)

// fundingStrategy pays the requested quantity out of the fund account in
// tranches following a percentage schedule
type fundingStrategy struct {
	fundType string
	mode     payMode
	schedule []uint64
}

func (s *fundingStrategy) Scope() string {
	return s.fundType
}

func (s *fundingStrategy) FundType() string {
	return s.fundType
}

func (s *fundingStrategy) Create(
	op *opContext,
	p *models.Proposal,
	attrs Attrs,
	aux Attrs,
) error {
	recipient, err := attrs.String(AttrRecipient)
	if err != nil {
		return err
	}
	if recipient == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidAttribute, AttrRecipient)
	}
	quantity, err := attrs.Uint64(AttrQuantity)
	if err != nil {
		return err
	}
	if quantity == 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidAttribute, AttrQuantity)
	}
	schedule := s.schedule
	if attrs.Has(AttrPayPercentages) {
		schedule, err = attrs.Uint64List(AttrPayPercentages)
		if err != nil {
			return err
		}
	}
	if err := validateSchedule(schedule, op.params.MaxCycles); err != nil {
		return err
	}
	if s.mode == payInvite {
		if err := s.createInvite(attrs, aux, quantity); err != nil {
			return err
		}
	}
	p.Quantity = quantity
	aux[AttrRecipient] = recipient
	aux[AttrPayPercentages] = schedule
	aux[auxPaid] = formatUint(0)
	return nil
}

func (s *fundingStrategy) createInvite(
	attrs Attrs,
	aux Attrs,
	quantity uint64,
) error {
	maxPerInvite, err := attrs.Uint64(AttrMaxAmountPerInvite)
	if err != nil {
		return err
	}
	if maxPerInvite == 0 || maxPerInvite > quantity {
		return fmt.Errorf(
			"%w: %s must be in 1..%d",
			ErrInvalidAttribute,
			AttrMaxAmountPerInvite,
			quantity,
		)
	}
	planted, err := attrs.Uint64(AttrPlanted)
	if err != nil {
		return err
	}
	if planted == 0 || planted > maxPerInvite {
		return fmt.Errorf(
			"%w: %s must be in 1..%d",
			ErrInvalidAttribute,
			AttrPlanted,
			maxPerInvite,
		)
	}
	reward, err := attrs.Uint64(AttrReward)
	if err != nil {
		return err
	}
	aux[AttrMaxAmountPerInvite] = formatUint(maxPerInvite)
	aux[AttrPlanted] = formatUint(planted)
	aux[AttrReward] = formatUint(reward)
	return nil
}

func (s *fundingStrategy) Update(
	op *opContext,
	p *models.Proposal,
	attrs Attrs,
	aux Attrs,
) error {
	return s.Create(op, p, attrs, aux)
}

func (s *fundingStrategy) Cancel(
	op *opContext,
	p *models.Proposal,
	_ Attrs,
) error {
	return op.refundStake(p)
}

func (s *fundingStrategy) RequiredStake(params *Params, p *models.Proposal) uint64 {
	return params.Stake[s.fundType].Required(p.Quantity)
}

func (s *fundingStrategy) StatusOpen(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
) (outcome, error) {
	return s.payTranche(op, p, aux)
}

func (s *fundingStrategy) StatusEval(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
) (outcome, error) {
	return s.payTranche(op, p, aux)
}

func (s *fundingStrategy) payTranche(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
) (outcome, error) {
	schedule, err := aux.Uint64List(AttrPayPercentages)
	if err != nil {
		return outcome{}, err
	}
	if len(schedule) == 0 {
		return outcome{}, fmt.Errorf("%w: proposal %d has no schedule", ErrInvalidSchedule, p.ID)
	}
	paid, err := aux.Uint64Or(auxPaid, 0)
	if err != nil {
		return outcome{}, err
	}
	amount := trancheAmount(schedule, p.Age, p.Quantity, paid)
	if amount > 0 {
		if err := s.disburse(op, p, aux, amount); err != nil {
			return outcome{}, err
		}
	}
	aux[auxPaid] = formatUint(paid + amount)
	return outcome{
		Payout: amount,
		Done:   int(p.Age)+1 >= len(schedule),
	}, nil
}

func (s *fundingStrategy) disburse(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
	amount uint64,
) error {
	recipient, err := aux.String(AttrRecipient)
	if err != nil {
		return err
	}
	memo := fmt.Sprintf("proposal %d tranche %d", p.ID, p.Age+1)
	txn := op.txn
	switch s.mode {
	case payLock:
		lockId, err := op.e.config.Escrow.Lock(
			txn,
			p.Fund,
			recipient,
			amount,
			EscrowTrigger,
			memo,
		)
		if err != nil {
			return fmt.Errorf("escrow lock: %w", err)
		}
		locks, err := aux.Uint64List(auxLocks)
		if err != nil {
			return err
		}
		aux[auxLocks] = formatUintList(append(locks, lockId))
	case payInvite:
		if !aux.Has(auxCampaignId) {
			maxPerInvite, err := aux.Uint64(AttrMaxAmountPerInvite)
			if err != nil {
				return err
			}
			planted, err := aux.Uint64(AttrPlanted)
			if err != nil {
				return err
			}
			reward, err := aux.Uint64(AttrReward)
			if err != nil {
				return err
			}
			campaignId, err := op.e.config.Onboarding.CreateCampaign(
				txn,
				recipient,
				p.Fund,
				amount,
				maxPerInvite,
				planted,
				reward,
			)
			if err != nil {
				return fmt.Errorf("create campaign: %w", err)
			}
			aux[auxCampaignId] = formatUint(campaignId)
			return nil
		}
		campaignId, err := aux.Uint64(auxCampaignId)
		if err != nil {
			return err
		}
		if err := op.e.config.Onboarding.FundCampaign(txn, campaignId, p.Fund, amount); err != nil {
			return fmt.Errorf("fund campaign %d: %w", campaignId, err)
		}
	default:
		if err := op.e.config.Tokens.Transfer(txn, p.Fund, recipient, amount, memo); err != nil {
			return fmt.Errorf("transfer payout: %w", err)
		}
	}
	return nil
}

func (s *fundingStrategy) StatusRejected(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
) error {
	switch s.mode {
	case payLock:
		locks, err := aux.Uint64List(auxLocks)
		if err != nil {
			return err
		}
		memo := fmt.Sprintf("proposal %d rejected", p.ID)
		for _, lockId := range locks {
			cancelled, err := op.e.config.Escrow.CancelLock(op.txn, lockId, memo)
			if err != nil {
				return fmt.Errorf("cancel lock %d: %w", lockId, err)
			}
			if !cancelled {
				continue
			}
			if err := op.e.config.Escrow.Withdraw(op.txn, lockId); err != nil {
				return fmt.Errorf("withdraw lock %d: %w", lockId, err)
			}
		}
	case payInvite:
		if !aux.Has(auxCampaignId) {
			return nil
		}
		campaignId, err := aux.Uint64(auxCampaignId)
		if err != nil {
			return err
		}
		returned, err := op.e.config.Onboarding.ReturnFunds(op.txn, campaignId)
		if err != nil {
			return fmt.Errorf("return campaign %d funds: %w", campaignId, err)
		}
		op.logger.Info(
			"reclaimed campaign funds",
			"proposal", p.ID,
			"campaign", campaignId,
			"amount", returned,
		)
	}
	return nil
}

// trancheAmount returns the payout for the pass at index age. The last
// entry of the schedule pays whatever remains
func trancheAmount(schedule []uint64, age uint32, quantity uint64, paid uint64) uint64 {
	if paid >= quantity {
		return 0
	}
	remaining := quantity - paid
	if int(age) >= len(schedule)-1 {
		return remaining
	}
	amount := decimal.NewFromUint64(quantity).
		Mul(decimal.NewFromUint64(schedule[age])).
		Div(decimal.NewFromInt(100)).
		Floor().
		BigInt().
		Uint64()
	return min(amount, remaining)
}

func validateSchedule(schedule []uint64, maxCycles uint32) error {
	if len(schedule) == 0 || len(schedule) > int(maxCycles) {
		return fmt.Errorf(
			"%w: %d entries, allowed 1..%d",
			ErrInvalidSchedule,
			len(schedule),
			maxCycles,
		)
	}
	var sum uint64
	for _, pct := range schedule {
		if pct > 100 {
			return fmt.Errorf("%w: entry %d exceeds 100", ErrInvalidSchedule, pct)
		}
		sum += pct
	}
	if sum != 100 {
		return fmt.Errorf("%w: entries sum to %d", ErrInvalidSchedule, sum)
	}
	return nil
}
