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

package models

const cycleStateRowId = 1

// CycleState is a singleton row tracking the governance cycle and decay bookkeeping
type CycleState struct {
	ID             uint   `gorm:"primarykey"`
	Cycle          uint64 `gorm:"not null"`
	CycleStartedAt int64  `gorm:"not null"`
	LastDecayAt    int64  `gorm:"not null"`
}

func (CycleState) TableName() string {
	return "cycle_state"
}

// NewCycleState returns the initial cycle state row
func NewCycleState() *CycleState {
	return &CycleState{ID: cycleStateRowId}
}

// CycleStat holds rolling aggregates for a single cycle
type CycleStat struct {
	Cycle          uint64 `gorm:"primarykey;autoIncrement:false"`
	StartedAt      int64  `gorm:"not null"`
	QuorumBase     uint64 `gorm:"not null"`
	ActiveAccounts uint64
	NumProposals   uint32
	NumVotes       uint64
	TotalVoiceCast uint64
	TotalFavour    uint64
	TotalAgainst   uint64
}

func (CycleStat) TableName() string {
	return "cycle_stat"
}

// SupportLevel holds per-cycle, per-fund-type aggregates used for quorum
type SupportLevel struct {
	ID             uint   `gorm:"primarykey"`
	Cycle          uint64 `gorm:"uniqueIndex:idx_support_cycle_fund,priority:1;not null"`
	FundType       string `gorm:"uniqueIndex:idx_support_cycle_fund,priority:2;size:32;not null"`
	NumProposals   uint32
	NumVotes       uint64
	TotalVoiceCast uint64
	TotalFavour    uint64
	TotalAgainst   uint64
	QuorumPercent  uint32
	VotesNeeded    uint64
}

func (SupportLevel) TableName() string {
	return "support_level"
}
