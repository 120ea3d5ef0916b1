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

// Package voice maintains per-account, per-scope voting power and the decay
// mathematics applied to it
package voice

import (
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/shopspring/decimal"
)

const (
	ScopeAlliance   = "alliance"
	ScopeCampaign   = "campaign"
	ScopeMilestone  = "milestone"
	ScopeReferendum = "referendum"
	// ScopeAll fans an operation out to every scope
	ScopeAll = "all"
)

// Scopes lists every governance scope
var Scopes = []string{
	ScopeAlliance,
	ScopeCampaign,
	ScopeMilestone,
	ScopeReferendum,
}

var (
	ErrInsufficientVoice = errors.New("insufficient voice")
	ErrUnknownScope      = errors.New("unknown scope")
	ErrNoVoice           = errors.New("account has no voice in scope")
)

// ValidScope reports whether scope names a single governance scope
func ValidScope(scope string) bool {
	return slices.Contains(Scopes, scope)
}

func expandScope(scope string) ([]string, error) {
	if scope == ScopeAll {
		return Scopes, nil
	}
	if !ValidScope(scope) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	return []string{scope}, nil
}

// Ledger stores voice balances
type Ledger struct {
	db *database.Database
}

func NewLedger(db *database.Database) *Ledger {
	return &Ledger{db: db}
}

// Get returns the voice balance for an account in a scope. Accounts without
// a record have zero voice
func (l *Ledger) Get(
	account string,
	scope string,
	txn *database.Txn,
) (uint64, error) {
	voice, err := l.db.GetVoice(account, scope, txn)
	if err != nil {
		if errors.Is(err, models.ErrVoiceNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return voice.Balance, nil
}

// Has reports whether the account holds a voice record in scope
func (l *Ledger) Has(
	account string,
	scope string,
	txn *database.Txn,
) (bool, error) {
	_, err := l.db.GetVoice(account, scope, txn)
	if err != nil {
		if errors.Is(err, models.ErrVoiceNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Balances returns an account's balance in each scope it holds voice in
func (l *Ledger) Balances(
	account string,
	txn *database.Txn,
) (map[string]uint64, error) {
	voices, err := l.db.GetAccountVoices(account, txn)
	if err != nil {
		return nil, err
	}
	ret := make(map[string]uint64, len(voices))
	for _, v := range voices {
		ret[v.Scope] = v.Balance
	}
	return ret, nil
}

// SetVoice sets the balance for an account. ScopeAll sets every scope
func (l *Ledger) SetVoice(
	account string,
	amount uint64,
	scope string,
	txn *database.Txn,
) error {
	scopes, err := expandScope(scope)
	if err != nil {
		return err
	}
	for _, s := range scopes {
		if err := l.db.SetVoice(
			&models.Voice{
				Account: account,
				Scope:   s,
				Balance: amount,
			},
			txn,
		); err != nil {
			return err
		}
	}
	return nil
}

// ChangeVoice reduces or increases an account's balance in a single scope.
// When reducing, it returns the fraction of the prior balance consumed
func (l *Ledger) ChangeVoice(
	account string,
	amount uint64,
	reduce bool,
	scope string,
	txn *database.Txn,
) (decimal.Decimal, error) {
	if !ValidScope(scope) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	voice, err := l.db.GetVoice(account, scope, txn)
	if err != nil {
		if !errors.Is(err, models.ErrVoiceNotFound) {
			return decimal.Zero, err
		}
		if reduce {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrNoVoice, account)
		}
		voice = &models.Voice{Account: account, Scope: scope}
	}
	fraction := decimal.Zero
	if reduce {
		if amount > voice.Balance {
			return decimal.Zero, fmt.Errorf(
				"%w: %s has %d in %s, needs %d",
				ErrInsufficientVoice,
				account,
				voice.Balance,
				scope,
				amount,
			)
		}
		if voice.Balance > 0 {
			fraction = decimal.NewFromUint64(amount).
				Div(decimal.NewFromUint64(voice.Balance))
		}
		voice.Balance -= amount
	} else {
		if voice.Balance+amount < voice.Balance {
			return decimal.Zero, fmt.Errorf(
				"voice overflow for %s in %s",
				account,
				scope,
			)
		}
		voice.Balance += amount
	}
	if err := l.db.SetVoice(voice, txn); err != nil {
		return decimal.Zero, err
	}
	return fraction, nil
}

// Erase deletes an account's voice in every scope and clears its activity
// marker. Delegation edges are left in place
func (l *Ledger) Erase(account string, txn *database.Txn) error {
	if err := l.db.DeleteAccountVoices(account, txn); err != nil {
		return err
	}
	return l.db.DeleteActiveAccount(account, txn)
}

// Recover sets an account's voice in every scope from its reputation score,
// decayed over the given number of elapsed intervals
func (l *Ledger) Recover(
	account string,
	score uint64,
	decayPct decimal.Decimal,
	intervals uint64,
	txn *database.Txn,
) error {
	amount := Apply(score, Multiplier(decayPct, intervals))
	return l.SetVoice(account, amount, ScopeAll, txn)
}

// DecayChunk applies multiplier to up to limit voice records after afterId,
// across all scopes. It returns the last processed ID and whether the key
// space is exhausted
func (l *Ledger) DecayChunk(
	afterId uint,
	limit int,
	multiplier decimal.Decimal,
	txn *database.Txn,
) (uint, bool, error) {
	voices, err := l.db.GetVoicesAfter("", afterId, limit, txn)
	if err != nil {
		return afterId, false, err
	}
	lastId := afterId
	for i := range voices {
		v := &voices[i]
		lastId = v.ID
		decayed := Apply(v.Balance, multiplier)
		if decayed == v.Balance {
			continue
		}
		v.Balance = decayed
		if err := l.db.SetVoice(v, txn); err != nil {
			return afterId, false, err
		}
	}
	return lastId, len(voices) < limit, nil
}

// ScoreFunc returns the reputation score for an account
type ScoreFunc func(account string) (uint64, error)

// RefreshChunk resets up to limit voice records in scope after afterId to
// the owning account's reputation score
func (l *Ledger) RefreshChunk(
	scope string,
	afterId uint,
	limit int,
	score ScoreFunc,
	txn *database.Txn,
) (uint, bool, error) {
	if !ValidScope(scope) {
		return afterId, false, fmt.Errorf("%w: %s", ErrUnknownScope, scope)
	}
	voices, err := l.db.GetVoicesAfter(scope, afterId, limit, txn)
	if err != nil {
		return afterId, false, err
	}
	lastId := afterId
	for i := range voices {
		v := &voices[i]
		lastId = v.ID
		newBalance, err := score(v.Account)
		if err != nil {
			return afterId, false, fmt.Errorf(
				"reputation score for %s: %w",
				v.Account,
				err,
			)
		}
		if newBalance == v.Balance {
			continue
		}
		v.Balance = newBalance
		if err := l.db.SetVoice(v, txn); err != nil {
			return afterId, false, err
		}
	}
	return lastId, len(voices) < limit, nil
}
