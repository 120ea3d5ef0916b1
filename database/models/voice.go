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

var ErrVoiceNotFound = errors.New("voice not found")

type Voice struct {
	ID      uint   `gorm:"primarykey"`
	Account string `gorm:"uniqueIndex:idx_voice_account_scope,priority:1;size:64;not null"`
	Scope   string `gorm:"uniqueIndex:idx_voice_account_scope,priority:2;index;size:32;not null"`
	Balance uint64 `gorm:"not null"`
}

func (Voice) TableName() string {
	return "voice"
}

// ActiveAccount marks an account as an active governance participant
type ActiveAccount struct {
	ID          uint   `gorm:"primarykey"`
	Account     string `gorm:"uniqueIndex;size:64;not null"`
	ActivatedAt int64  `gorm:"not null"`
}

func (ActiveAccount) TableName() string {
	return "active_account"
}

// Participant counts the non-neutral votes an account cast during one cycle
type Participant struct {
	ID      uint   `gorm:"primarykey"`
	Account string `gorm:"uniqueIndex:idx_participant_account_cycle;size:64;not null"`
	Cycle   uint64 `gorm:"uniqueIndex:idx_participant_account_cycle;not null"`
	Count   uint32 `gorm:"not null"`
}

func (Participant) TableName() string {
	return "participant"
}
