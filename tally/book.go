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

package tally

import (
	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
)

// Bounds clamps the quorum percentage
type Bounds struct {
	MinPct uint32
	MaxPct uint32
}

// Book keeps the per-cycle and per-fund-type support statistics
type Book struct {
	db *database.Database
}

func NewBook(db *database.Database) *Book {
	return &Book{db: db}
}

// OpenCycle creates the statistics for a new cycle. The quorum base is taken
// from the window cycles preceding it
func (b *Book) OpenCycle(
	cycle uint64,
	startedAt int64,
	window uint64,
	activeAccounts uint64,
	fundTypes []string,
	bounds Bounds,
	txn *database.Txn,
) (*models.CycleStat, error) {
	var history []models.CycleStat
	if cycle > 0 && window > 0 {
		from := uint64(0)
		if cycle > window {
			from = cycle - window
		}
		var err error
		history, err = b.db.GetCycleStats(from, cycle-1, txn)
		if err != nil {
			return nil, err
		}
	}
	stat := &models.CycleStat{
		Cycle:          cycle,
		StartedAt:      startedAt,
		QuorumBase:     QuorumBase(history, activeAccounts),
		ActiveAccounts: activeAccounts,
	}
	if err := b.db.SetCycleStat(stat, txn); err != nil {
		return nil, err
	}
	for _, fundType := range fundTypes {
		level, err := b.db.GetSupportLevel(cycle, fundType, txn)
		if err != nil {
			return nil, err
		}
		level.Cycle = cycle
		level.FundType = fundType
		b.recompute(stat, level, bounds)
		if err := b.db.SetSupportLevel(level, txn); err != nil {
			return nil, err
		}
	}
	return stat, nil
}

// RegisterProposal counts a proposal entering evaluation for cycle
func (b *Book) RegisterProposal(
	cycle uint64,
	fundType string,
	bounds Bounds,
	txn *database.Txn,
) (*models.SupportLevel, error) {
	return b.update(cycle, fundType, bounds, txn, func(stat *models.CycleStat, level *models.SupportLevel) {
		stat.NumProposals++
		level.NumProposals++
	})
}

// RecordVote adds a cast vote to the statistics. Neutral votes count toward
// voice cast and vote count only
func (b *Book) RecordVote(
	cycle uint64,
	fundType string,
	option uint8,
	amount uint64,
	bounds Bounds,
	txn *database.Txn,
) (*models.SupportLevel, error) {
	return b.update(cycle, fundType, bounds, txn, func(stat *models.CycleStat, level *models.SupportLevel) {
		stat.NumVotes++
		level.NumVotes++
		stat.TotalVoiceCast += amount
		level.TotalVoiceCast += amount
		switch option {
		case models.VoteFavour:
			stat.TotalFavour += amount
			level.TotalFavour += amount
		case models.VoteAgainst:
			stat.TotalAgainst += amount
			level.TotalAgainst += amount
		}
	})
}

// RecordRevert moves amount from favour to against
func (b *Book) RecordRevert(
	cycle uint64,
	fundType string,
	amount uint64,
	bounds Bounds,
	txn *database.Txn,
) (*models.SupportLevel, error) {
	return b.update(cycle, fundType, bounds, txn, func(stat *models.CycleStat, level *models.SupportLevel) {
		stat.TotalFavour -= min(stat.TotalFavour, amount)
		level.TotalFavour -= min(level.TotalFavour, amount)
		stat.TotalAgainst += amount
		level.TotalAgainst += amount
	})
}

func (b *Book) update(
	cycle uint64,
	fundType string,
	bounds Bounds,
	txn *database.Txn,
	fn func(*models.CycleStat, *models.SupportLevel),
) (*models.SupportLevel, error) {
	stat, err := b.db.GetCycleStat(cycle, txn)
	if err != nil {
		return nil, err
	}
	level, err := b.db.GetSupportLevel(cycle, fundType, txn)
	if err != nil {
		return nil, err
	}
	level.Cycle = cycle
	level.FundType = fundType
	fn(stat, level)
	b.recompute(stat, level, bounds)
	if err := b.db.SetCycleStat(stat, txn); err != nil {
		return nil, err
	}
	if err := b.db.SetSupportLevel(level, txn); err != nil {
		return nil, err
	}
	return level, nil
}

func (b *Book) recompute(
	stat *models.CycleStat,
	level *models.SupportLevel,
	bounds Bounds,
) {
	level.QuorumPercent = QuorumPercent(
		stat.QuorumBase,
		level.NumProposals,
		bounds.MinPct,
		bounds.MaxPct,
	)
	level.VotesNeeded = VotesNeeded(level.TotalVoiceCast, level.QuorumPercent)
}
