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
)

// settingsStrategy changes a value in the settings store. After the first
// pass the new value stays on trial for testCycles + evalCycles further
// passes and is rolled back if the proposal fails during any of them
type settingsStrategy struct{}

func (s *settingsStrategy) Scope() string {
	return FundTypeReferendum
}

func (s *settingsStrategy) FundType() string {
	return FundTypeReferendum
}

func (s *settingsStrategy) Create(
	op *opContext,
	p *models.Proposal,
	attrs Attrs,
	aux Attrs,
) error {
	name, err := attrs.String(AttrSettingName)
	if err != nil {
		return err
	}
	if _, err := op.e.config.Settings.Get(op.txn, name); err != nil {
		return err
	}
	newValue, err := attrs.Decimal(AttrNewValue)
	if err != nil {
		return err
	}
	if err := CheckSetting(op.e.config.Settings, op.txn, name, newValue); err != nil {
		return err
	}
	testCycles, err := attrs.Uint64(AttrTestCycles)
	if err != nil {
		return err
	}
	evalCycles, err := attrs.Uint64(AttrEvalCycles)
	if err != nil {
		return err
	}
	if evalCycles < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidAttribute, AttrEvalCycles)
	}
	if testCycles+evalCycles > uint64(op.params.MaxCycles) {
		return fmt.Errorf(
			"%w: %s + %s exceeds %d",
			ErrInvalidAttribute,
			AttrTestCycles,
			AttrEvalCycles,
			op.params.MaxCycles,
		)
	}
	impact, err := op.e.config.Settings.Impact(op.txn, name)
	if err != nil {
		return err
	}
	p.Quantity = 0
	aux[AttrSettingName] = name
	aux[AttrNewValue] = newValue.String()
	aux[AttrTestCycles] = formatUint(testCycles)
	aux[AttrEvalCycles] = formatUint(evalCycles)
	aux[auxImpact] = formatUint(uint64(impact))
	return nil
}

func (s *settingsStrategy) Update(
	op *opContext,
	p *models.Proposal,
	attrs Attrs,
	aux Attrs,
) error {
	return s.Create(op, p, attrs, aux)
}

func (s *settingsStrategy) Cancel(
	op *opContext,
	p *models.Proposal,
	_ Attrs,
) error {
	return op.refundStake(p)
}

func (s *settingsStrategy) RequiredStake(params *Params, _ *models.Proposal) uint64 {
	return params.Stake[FundTypeReferendum].Min
}

func (s *settingsStrategy) passes(aux Attrs) (uint64, error) {
	testCycles, err := aux.Uint64(AttrTestCycles)
	if err != nil {
		return 0, err
	}
	evalCycles, err := aux.Uint64(AttrEvalCycles)
	if err != nil {
		return 0, err
	}
	return 1 + testCycles + evalCycles, nil
}

// CheckOpen fails with ErrInvalidSetting when changes applied since creation
// make the new value invalid
func (s *settingsStrategy) CheckOpen(op *opContext, aux Attrs) error {
	name, err := aux.String(AttrSettingName)
	if err != nil {
		return err
	}
	newValue, err := aux.Decimal(AttrNewValue)
	if err != nil {
		return err
	}
	return CheckSetting(op.e.config.Settings, op.txn, name, newValue)
}

func (s *settingsStrategy) StatusOpen(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
) (outcome, error) {
	name, err := aux.String(AttrSettingName)
	if err != nil {
		return outcome{}, err
	}
	newValue, err := aux.Decimal(AttrNewValue)
	if err != nil {
		return outcome{}, err
	}
	prev, err := op.e.config.Settings.Get(op.txn, name)
	if err != nil {
		return outcome{}, err
	}
	if err := op.e.config.Settings.Set(op.txn, name, newValue); err != nil {
		return outcome{}, fmt.Errorf("set %s: %w", name, err)
	}
	aux[auxPrevValue] = prev.String()
	op.logger.Info(
		"setting changed by proposal",
		"proposal", p.ID,
		"setting", name,
		"previous", prev.String(),
		"value", newValue.String(),
	)
	return s.StatusEval(op, p, aux)
}

func (s *settingsStrategy) StatusEval(
	_ *opContext,
	p *models.Proposal,
	aux Attrs,
) (outcome, error) {
	passes, err := s.passes(aux)
	if err != nil {
		return outcome{}, err
	}
	return outcome{Done: uint64(p.Age)+1 >= passes}, nil
}

func (s *settingsStrategy) StatusRejected(
	op *opContext,
	p *models.Proposal,
	aux Attrs,
) error {
	if !aux.Has(auxPrevValue) {
		return nil
	}
	name, err := aux.String(AttrSettingName)
	if err != nil {
		return err
	}
	prev, err := aux.Decimal(auxPrevValue)
	if err != nil {
		return err
	}
	if err := CheckSetting(op.e.config.Settings, op.txn, name, prev); err != nil {
		op.logger.Warn(
			"previous setting no longer valid, keeping current value",
			"proposal", p.ID,
			"setting", name,
			"previous", prev.String(),
			"error", err,
		)
		return nil
	}
	if err := op.e.config.Settings.Set(op.txn, name, prev); err != nil {
		return fmt.Errorf("restore %s: %w", name, err)
	}
	op.logger.Info(
		"setting restored after failed proposal",
		"proposal", p.ID,
		"setting", name,
		"value", prev.String(),
	)
	return nil
}
