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

package voice

import (
	"github.com/shopspring/decimal"
)

// multiplierPrecision bounds the digits kept while raising the decay base to
// a power
const multiplierPrecision = 24

var hundred = decimal.NewFromInt(100)

// Multiplier returns (1 - pct/100)^n
func Multiplier(pct decimal.Decimal, n uint64) decimal.Decimal {
	base := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	if base.IsNegative() {
		base = decimal.Zero
	}
	result := decimal.NewFromInt(1)
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Truncate(multiplierPrecision)
		}
		base = base.Mul(base).Truncate(multiplierPrecision)
		n >>= 1
	}
	return result
}

// Apply scales a balance by a multiplier, truncating toward zero
func Apply(balance uint64, multiplier decimal.Decimal) uint64 {
	if balance == 0 || multiplier.IsZero() {
		return 0
	}
	return decimal.NewFromUint64(balance).Mul(multiplier).Floor().BigInt().Uint64()
}

// DecayIntervals returns how many whole decay intervals have elapsed at now.
// Intervals accrue from the later of the last decay and the cycle start
// plus the configured delay
func DecayIntervals(
	now int64,
	lastDecayAt int64,
	cycleStartedAt int64,
	delay int64,
	interval int64,
) uint64 {
	if interval <= 0 {
		return 0
	}
	start := max(lastDecayAt, cycleStartedAt+delay)
	if now <= start {
		return 0
	}
	return uint64((now - start) / interval) //nolint:gosec
}
