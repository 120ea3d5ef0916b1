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
	"errors"
	"net/http"

	"github.com/blinklabs-io/agora/delegation"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/collab"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/blinklabs-io/agora/voice"
	"github.com/gin-gonic/gin"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{governance.ErrProposalNotFound, http.StatusNotFound},
	{delegation.ErrNotDelegated, http.StatusNotFound},
	{governance.ErrNotAuthorized, http.StatusForbidden},
	{governance.ErrNotCitizen, http.StatusForbidden},
	{delegation.ErrNotAuthorized, http.StatusForbidden},
	{governance.ErrWrongStage, http.StatusConflict},
	{governance.ErrVotingClosed, http.StatusConflict},
	{governance.ErrAlreadyVoted, http.StatusConflict},
	{governance.ErrNotRevertable, http.StatusConflict},
	{governance.ErrInsufficientStake, http.StatusConflict},
	{delegation.ErrCycle, http.StatusConflict},
	{scheduler.ErrDuplicateTask, http.StatusConflict},
	{governance.ErrMissingAttribute, http.StatusBadRequest},
	{governance.ErrInvalidAttribute, http.StatusBadRequest},
	{governance.ErrTextLength, http.StatusBadRequest},
	{governance.ErrUnknownType, http.StatusBadRequest},
	{governance.ErrUnknownFund, http.StatusBadRequest},
	{governance.ErrFundMismatch, http.StatusBadRequest},
	{governance.ErrInvalidSchedule, http.StatusBadRequest},
	{governance.ErrInvalidAmount, http.StatusBadRequest},
	{governance.ErrUnknownSetting, http.StatusBadRequest},
	{governance.ErrInvalidSetting, http.StatusBadRequest},
	{voice.ErrUnknownScope, http.StatusBadRequest},
	{voice.ErrInsufficientVoice, http.StatusBadRequest},
	{voice.ErrNoVoice, http.StatusBadRequest},
	{delegation.ErrSelfDelegation, http.StatusBadRequest},
	{delegation.ErrNoVoice, http.StatusBadRequest},
	{collab.ErrInsufficientBalance, http.StatusBadRequest},
	{ErrInvalidPaginationParameters, http.StatusBadRequest},
}

// statusFor maps an operation error to an HTTP status code
func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeError reports err to the client. Internal errors are logged and
// their details withheld
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(
			"request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		message = "internal error"
	}
	abortError(c, status, message)
}
