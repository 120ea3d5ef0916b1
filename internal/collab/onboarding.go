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

const OnboardingAccount = "onboarding.agora"

var ErrCampaignNotFound = errors.New("campaign not found")

type Campaign struct {
	ID                 uint64
	Owner              string
	Funder             string
	Balance            uint64
	MaxAmountPerInvite uint64
	Planted            uint64
	Reward             uint64
	Closed             bool
}

// Onboarding holds invite campaign budgets in OnboardingAccount
type Onboarding struct {
	mu        sync.Mutex
	tokens    *Tokens
	campaigns map[uint64]*Campaign
	lastId    uint64
}

func NewOnboarding(tokens *Tokens) *Onboarding {
	return &Onboarding{
		tokens:    tokens,
		campaigns: make(map[uint64]*Campaign),
	}
}

func (o *Onboarding) CreateCampaign(
	txn *database.Txn,
	owner string,
	funder string,
	quantity uint64,
	maxAmountPerInvite uint64,
	planted uint64,
	reward uint64,
) (uint64, error) {
	if err := o.tokens.Transfer(txn, funder, OnboardingAccount, quantity, "campaign"); err != nil {
		return 0, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastId++
	id := o.lastId
	o.campaigns[id] = &Campaign{
		ID:                 id,
		Owner:              owner,
		Funder:             funder,
		Balance:            quantity,
		MaxAmountPerInvite: maxAmountPerInvite,
		Planted:            planted,
		Reward:             reward,
	}
	txn.OnRollback(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.campaigns, id)
	})
	return id, nil
}

func (o *Onboarding) open(campaignId uint64) (*Campaign, error) {
	c, ok := o.campaigns[campaignId]
	if !ok || c.Closed {
		return nil, fmt.Errorf("%w: %d", ErrCampaignNotFound, campaignId)
	}
	return c, nil
}

func (o *Onboarding) FundCampaign(
	txn *database.Txn,
	campaignId uint64,
	funder string,
	quantity uint64,
) error {
	o.mu.Lock()
	c, err := o.open(campaignId)
	o.mu.Unlock()
	if err != nil {
		return err
	}
	if err := o.tokens.Transfer(txn, funder, OnboardingAccount, quantity, "campaign"); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	c.Balance += quantity
	txn.OnRollback(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		c.Balance -= quantity
	})
	return nil
}

// Spend pays one invite out of a campaign's budget
func (o *Onboarding) Spend(txn *database.Txn, campaignId uint64, invitee string, quantity uint64) error {
	o.mu.Lock()
	c, err := o.open(campaignId)
	if err == nil && (quantity > c.MaxAmountPerInvite || quantity > c.Balance) {
		err = fmt.Errorf("%w: campaign %d cannot pay %d", ErrInsufficientBalance, campaignId, quantity)
	}
	o.mu.Unlock()
	if err != nil {
		return err
	}
	if err := o.tokens.Transfer(txn, OnboardingAccount, invitee, quantity, "invite"); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	c.Balance -= quantity
	txn.OnRollback(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		c.Balance += quantity
	})
	return nil
}

func (o *Onboarding) ReturnFunds(txn *database.Txn, campaignId uint64) (uint64, error) {
	o.mu.Lock()
	c, err := o.open(campaignId)
	if err != nil {
		o.mu.Unlock()
		return 0, err
	}
	balance := c.Balance
	c.Balance = 0
	c.Closed = true
	o.mu.Unlock()
	txn.OnRollback(func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		c.Balance = balance
		c.Closed = false
	})
	if balance == 0 {
		return 0, nil
	}
	if err := o.tokens.Transfer(txn, OnboardingAccount, c.Funder, balance, "campaign return"); err != nil {
		return 0, err
	}
	return balance, nil
}

// Get returns a copy of a campaign
func (o *Onboarding) Get(campaignId uint64) (Campaign, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	c, ok := o.campaigns[campaignId]
	if !ok {
		return Campaign{}, false
	}
	return *c, true
}
