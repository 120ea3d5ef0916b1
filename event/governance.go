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

package event

const (
	ProposalCreatedEventType   = EventType("proposal.created")
	ProposalCancelledEventType = EventType("proposal.cancelled")
	ProposalStakedEventType    = EventType("proposal.staked")
	ProposalEvaluatedEventType = EventType("proposal.evaluated")
	VoteCastEventType          = EventType("vote.cast")
	DelegationEventType        = EventType("delegation.changed")
	CycleAdvancedEventType     = EventType("cycle.advanced")
	VoiceDecayedEventType      = EventType("voice.decayed")
	TrustChangedEventType      = EventType("trust.changed")
)

// ProposalEvent is emitted when a proposal is created, cancelled or staked
type ProposalEvent struct {
	ProposalID uint
	Creator    string
	Type       string
	Staked     uint64
}

// ProposalEvaluatedEvent is emitted after each evaluation of a proposal
type ProposalEvaluatedEvent struct {
	ProposalID uint
	Cycle      uint64
	Stage      string
	Status     string
	// Amount paid out or locked by this evaluation
	Payout uint64
}

// VoteCastEvent is emitted for every recorded vote, direct or mimicked
type VoteCastEvent struct {
	ProposalID uint
	Voter      string
	Option     uint8
	Amount     uint64
	Mimic      bool
	Revert     bool
}

// DelegationEvent is emitted when a delegation edge is added or removed
type DelegationEvent struct {
	Delegator string
	Delegatee string
	Scope     string
	Removed   bool
}

// CycleAdvancedEvent is emitted when the governance cycle moves forward
type CycleAdvancedEvent struct {
	Cycle     uint64
	StartedAt int64
}

// VoiceDecayedEvent is emitted when a decay sweep is started
type VoiceDecayedEvent struct {
	Intervals  uint64
	Multiplier string
}

// TrustChangedEvent is emitted when an account gains or loses trust
type TrustChangedEvent struct {
	Account string
	Trusted bool
}
