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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/governance"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var errInvalidID = errors.New("invalid proposal id")

func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(s.config.CORSAllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.config.CORSAllowOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{
				"Content-Length",
				"X-Pagination-Count-Total",
				"X-Pagination-Page-Total",
			},
		}))
	}
	if s.config.MaxRequestsPerIP > 0 {
		r.Use(newIPLimiter(s.config.MaxRequestsPerIP).middleware())
	}
	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.GET("/cycle", s.handleCycle)
	v1.GET("/proposals", s.handleProposals)
	v1.GET("/proposals/:id", s.handleProposal)
	v1.GET("/proposals/:id/votes", s.handleVotes)
	v1.GET("/voice/:account", s.handleVoice)
	v1.GET("/delegations/:account/:scope", s.handleDelegation)
	if s.config.Events != nil {
		v1.GET("/events", s.handleEvents)
	}

	secured := v1.Group("", JWTMiddleware(s.config.JWTSecret))
	secured.POST("/proposals", s.handleCreate)
	secured.PUT("/proposals/:id", s.handleUpdate)
	secured.DELETE("/proposals/:id", s.handleCancel)
	secured.POST("/proposals/:id/stake", s.handleStake)
	secured.POST("/proposals/:id/votes", s.handleVote)
	secured.POST("/proposals/:id/revert", s.handleRevert)
	secured.POST("/delegations", s.handleDelegate)
	secured.DELETE("/delegations", s.handleUndelegate)
	secured.POST("/active", s.handleAddActive)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug(
			"request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func proposalID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidID, c.Param("id"))
	}
	return uint(id), nil
}

// bindAttrs decodes a JSON object of proposal attributes, keeping numbers
// exact
func bindAttrs(c *gin.Context) (governance.Attrs, error) {
	var attrs governance.Attrs
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("invalid attributes: %w", err)
	}
	if attrs == nil {
		attrs = governance.Attrs{}
	}
	return attrs, nil
}

func badRequest(c *gin.Context, err error) {
	abortError(c, http.StatusBadRequest, err.Error())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleCycle(c *gin.Context) {
	state, err := s.node.CycleState()
	if err != nil {
		s.writeError(c, err)
		return
	}
	stat, err := s.node.CycleStat(state.Cycle)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CycleResponse{
		Cycle:          state.Cycle,
		CycleStartedAt: state.CycleStartedAt,
		LastDecayAt:    state.LastDecayAt,
		Stats:          stat,
	})
}

func (s *Server) handleProposals(c *gin.Context) {
	params, err := ParsePagination(c.Request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	proposals, total, err := s.node.Proposals(
		params.Offset(),
		params.Count,
		params.Order == PaginationOrderDesc,
	)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if proposals == nil {
		proposals = []models.Proposal{}
	}
	SetPaginationHeaders(c.Writer, int(total), params)
	c.JSON(http.StatusOK, proposals)
}

func (s *Server) handleProposal(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.node.Proposal(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleVotes(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	votes, err := s.node.Votes(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if votes == nil {
		votes = []models.Vote{}
	}
	c.JSON(http.StatusOK, votes)
}

func (s *Server) handleVoice(c *gin.Context) {
	account := c.Param("account")
	balances, err := s.node.Voice(account)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, VoiceResponse{Account: account, Balances: balances})
}

func (s *Server) handleDelegation(c *gin.Context) {
	edge, err := s.node.Delegation(c.Param("account"), c.Param("scope"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if edge == nil {
		abortError(c, http.StatusNotFound, "no delegation")
		return
	}
	c.JSON(http.StatusOK, edge)
}

func (s *Server) handleEvents(c *gin.Context) {
	params, err := ParsePagination(c.Request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	events := s.config.Events.Recent(params.Count)
	resp := make([]EventResponse, 0, len(events))
	for _, evt := range events {
		resp = append(resp, EventResponse{
			Type:      evt.Type,
			Timestamp: evt.Timestamp,
			Data:      evt.Data,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreate(c *gin.Context) {
	attrs, err := bindAttrs(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	id, err := s.node.Create(c.Request.Context(), caller(c), attrs)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (s *Server) handleUpdate(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	attrs, err := bindAttrs(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.node.Update(c.Request.Context(), caller(c), id, attrs); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCancel(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.node.Cancel(c.Request.Context(), caller(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleStake(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.node.Stake(c.Request.Context(), caller(c), id, req.Quantity); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleVote(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	switch req.Option {
	case "favour":
		err = s.node.Favour(ctx, caller(c), id, req.Amount)
	case "against":
		err = s.node.Against(ctx, caller(c), id, req.Amount)
	default:
		err = s.node.Neutral(ctx, caller(c), id, req.Amount)
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) handleRevert(c *gin.Context) {
	id, err := proposalID(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := s.node.RevertVote(c.Request.Context(), caller(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDelegate(c *gin.Context) {
	var req DelegateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.node.Delegate(c.Request.Context(), caller(c), req.Delegatee, req.Scope); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUndelegate(c *gin.Context) {
	var req UndelegateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.node.Undelegate(
		c.Request.Context(),
		caller(c),
		req.Delegator,
		req.Delegatee,
		req.Scope,
	); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddActive(c *gin.Context) {
	if err := s.node.AddActive(c.Request.Context(), caller(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
