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

var ErrDelegationNotFound = errors.New("delegation not found")

// DelegationFullWeight is the weight (percent) of a plain delegation
const DelegationFullWeight = 100

type Delegation struct {
	ID        uint   `gorm:"primarykey"`
	Delegator string `gorm:"uniqueIndex:idx_delegation_delegator_scope,priority:1;size:64;not null"`
	Scope     string `gorm:"uniqueIndex:idx_delegation_delegator_scope,priority:2;index:idx_delegation_delegatee,priority:2;size:32;not null"`
	Delegatee string `gorm:"index:idx_delegation_delegatee,priority:1;size:64;not null"`
	Weight    uint32 `gorm:"not null"`
	Timestamp int64  `gorm:"not null"`
}

func (Delegation) TableName() string {
	return "delegation"
}
