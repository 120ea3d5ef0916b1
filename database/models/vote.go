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

import "errors"

var ErrVoteNotFound = errors.New("vote not found")

const (
	VoteAgainst = 0
	VoteFavour  = 1
	VoteNeutral = 2
)

type Vote struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint   `gorm:"index:idx_vote_proposal;uniqueIndex:idx_vote_unique,priority:1;not null"`
	Voter      string `gorm:"uniqueIndex:idx_vote_unique,priority:2;size:64;not null"`
	Option     uint8  `gorm:"not null"` // 0=against, 1=favour, 2=neutral
	Amount     uint64 `gorm:"not null"`
	Cycle      uint64 `gorm:"index;not null"`
	// Cast on behalf of the voter by delegation propagation
	Mimic bool
}

func (Vote) TableName() string {
	return "vote"
}

// Counted reports whether the vote contributes to favour/against totals
func (v *Vote) Counted() bool {
	return v.Option == VoteFavour || v.Option == VoteAgainst
}
