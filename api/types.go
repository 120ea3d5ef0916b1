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

package api

import (
	"time"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/event"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type CycleResponse struct {
	Cycle          uint64            `json:"cycle"`
	CycleStartedAt int64             `json:"cycle_started_at"`
	LastDecayAt    int64             `json:"last_decay_at"`
	Stats          *models.CycleStat `json:"stats,omitempty"`
}

type CreatedResponse struct {
	ID uint `json:"id"`
}

type StakeRequest struct {
	Quantity uint64 `json:"quantity" binding:"required"`
}

type VoteRequest struct {
	Option string `json:"option" binding:"required,oneof=favour against neutral"`
	Amount uint64 `json:"amount" binding:"required"`
}

type DelegateRequest struct {
	Delegatee string `json:"delegatee" binding:"required"`
	Scope     string `json:"scope" binding:"required"`
}

type UndelegateRequest struct {
	Delegator string `form:"delegator" binding:"required"`
	Delegatee string `form:"delegatee" binding:"required"`
	Scope     string `form:"scope" binding:"required"`
}

type VoiceResponse struct {
	Account  string            `json:"account"`
	Balances map[string]uint64 `json:"balances"`
}

type EventResponse struct {
	Type      event.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      any             `json:"data"`
}
