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

package governance

import (
	"errors"

	"github.com/blinklabs-io/agora/database/models"
)

var (
	ErrNotAuthorized     = errors.New("caller not authorized")
	ErrNotCitizen        = errors.New("caller is not a citizen")
	ErrMissingAttribute  = errors.New("missing attribute")
	ErrInvalidAttribute  = errors.New("invalid attribute")
	ErrTextLength        = errors.New("text attribute length out of range")
	ErrUnknownType       = errors.New("unknown proposal type")
	ErrUnknownFund       = errors.New("unknown fund")
	ErrFundMismatch      = errors.New("fund does not match proposal type")
	ErrInvalidSchedule   = errors.New("invalid payout schedule")
	ErrProposalNotFound  = models.ErrProposalNotFound
	ErrWrongStage        = errors.New("operation not allowed in current proposal stage")
	ErrVotingClosed      = errors.New("proposal is not accepting votes")
	ErrAlreadyVoted      = errors.New("voter already voted on proposal")
	ErrNotRevertable     = errors.New("vote cannot be reverted")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientStake = errors.New("insufficient stake")
	ErrUnknownSetting    = errors.New("unknown setting")
	ErrInvalidSetting    = errors.New("invalid setting value")
)
