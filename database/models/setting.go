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

	"github.com/shopspring/decimal"
)

var ErrSettingNotFound = errors.New("setting not found")

// Setting impact tiers
const (
	ImpactLow    = 1
	ImpactMedium = 2
	ImpactHigh   = 3
)

type Setting struct {
	ID     uint            `gorm:"primarykey"`
	Name   string          `gorm:"uniqueIndex;size:64;not null"`
	Value  decimal.Decimal `gorm:"type:text;not null"`
	Impact uint8           `gorm:"not null"`
}

func (Setting) TableName() string {
	return "setting"
}
