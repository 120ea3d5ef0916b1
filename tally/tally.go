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

// Package tally implements majority and quorum arithmetic and the per-cycle
// support statistics it reads from
package tally

import (
	"github.com/blinklabs-io/agora/database/models"
	"github.com/shopspring/decimal"
)

// fallbackVoicePerAccount is the assumed voice cast per active account when
// no cycle history exists
const fallbackVoicePerAccount = 50

// HasMajority reports whether favour reaches the required fraction of all
// counted voice
func HasMajority(favour uint64, against uint64, fraction decimal.Decimal) bool {
	if favour == 0 {
		return false
	}
	total := decimal.NewFromUint64(favour).Add(decimal.NewFromUint64(against))
	return decimal.NewFromUint64(favour).GreaterThanOrEqual(total.Mul(fraction))
}

// QuorumBase averages the total voice cast over the given cycle history. An
// empty history falls back to half the nominal voice of the active accounts
func QuorumBase(history []models.CycleStat, activeAccounts uint64) uint64 {
	if len(history) == 0 {
		return activeAccounts * fallbackVoicePerAccount / 2
	}
	sum := decimal.Zero
	for _, stat := range history {
		sum = sum.Add(decimal.NewFromUint64(stat.TotalVoiceCast))
	}
	return sum.Div(decimal.NewFromInt(int64(len(history)))).
		Floor().
		BigInt().
		Uint64()
}

// QuorumPercent divides the quorum base among the active proposals and
// clamps the result to [minPct, maxPct]
func QuorumPercent(
	base uint64,
	numProposals uint32,
	minPct uint32,
	maxPct uint32,
) uint32 {
	pct := base / uint64(max(numProposals, 1))
	if pct < uint64(minPct) {
		return minPct
	}
	if pct > uint64(maxPct) {
		return maxPct
	}
	return uint32(pct) //nolint:gosec
}

// VotesNeeded returns ceil(totalVoiceCast * pct / 100)
func VotesNeeded(totalVoiceCast uint64, pct uint32) uint64 {
	return decimal.NewFromUint64(totalVoiceCast).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Ceil().
		BigInt().
		Uint64()
}
