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

import (
	"errors"
	"time"

	"gorm.io/datatypes"
)

var ErrProposalNotFound = errors.New("proposal not found")

// Proposal stages
const (
	StageStaged = "staged"
	StageActive = "active"
	StageDone   = "done"
)

// Proposal statuses
const (
	StatusOpen     = "open"
	StatusEvaluate = "evaluate"
	StatusPassed   = "passed"
	StatusRejected = "rejected"
)

type Proposal struct {
	ID          uint   `gorm:"primarykey"`
	Creator     string `gorm:"size:64;index;not null"`
	Fund        string `gorm:"size:64;not null"`
	FundType    string `gorm:"size:32;index;not null"`
	Type        string `gorm:"size:32;not null"`
	Stage       string `gorm:"size:16;index;not null"`
	Status      string `gorm:"size:16;not null"`
	Title       string `gorm:"size:128;not null"`
	Summary     string `gorm:"size:1024"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"size:512"`
	Url         string `gorm:"size:512"`
	Quantity    uint64 `gorm:"not null"`
	Staked      uint64 `gorm:"not null"`
	Favour      uint64 `gorm:"not null"`
	Against     uint64 `gorm:"not null"`
	Age         uint32 `gorm:"not null"`
	// Cycle in which the proposal last became active (or was re-registered)
	ActiveCycle uint64 `gorm:"index"`
	LastCycle   uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Proposal) TableName() string {
	return "proposal"
}

// Done reports whether the proposal reached a terminal state
func (p *Proposal) Done() bool {
	return p.Stage == StageDone
}

// ProposalAux holds type-specific attributes for a proposal. Its lifetime
// mirrors the proposal it is keyed by
type ProposalAux struct {
	ProposalID uint              `gorm:"primarykey;autoIncrement:false"`
	Attributes datatypes.JSONMap `gorm:"not null"`
}

func (ProposalAux) TableName() string {
	return "proposal_aux"
}
