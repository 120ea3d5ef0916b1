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

// Package governance implements the proposal lifecycle, voice weighted
// voting with delegation, and the cycle controller that drives evaluation,
// voice refresh and decay
package governance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/delegation"
	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/blinklabs-io/agora/tally"
	"github.com/blinklabs-io/agora/voice"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/agora/governance"

// Continuation task kinds
const (
	TaskCycleAdvance      = "cycle.advance"
	TaskCycleDecay        = "cycle.decay"
	TaskProposalEvaluate  = "proposal.evaluate"
	TaskEvaluateProposal  = "proposal.evaluate_one"
	TaskVoiceDecay        = "voice.decay"
	TaskVoiceRefresh      = "voice.refresh"
	TaskVoteMimic         = "vote.mimic"
	TaskVoteMimicRevert   = "vote.mimic_revert"
	TaskParticipantReward = "participant.reward"
)

const DefaultGovernanceAccount = "gov.agora"

type Config struct {
	Database     *database.Database
	Scheduler    *scheduler.Scheduler
	EventBus     *event.Bus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Tokens       TokenLedger
	Escrow       Escrow
	Accounts     Accounts
	Onboarding   Onboarding
	Settings     SettingsStore
	// GovernanceAccount holds proposal stakes
	GovernanceAccount string
	// Funds maps fund account tags to fund types
	Funds map[string]string
	Now   func() time.Time
}

type Engine struct {
	config     Config
	db         *database.Database
	sched      *scheduler.Scheduler
	logger     *slog.Logger
	metrics    engineMetrics
	tracer     trace.Tracer
	voices     *voice.Ledger
	graph      *delegation.Graph
	book       *tally.Book
	batchDelay atomic.Int64
}

func New(cfg Config) (*Engine, error) {
	if cfg.Database == nil {
		return nil, errors.New("governance: database is required")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("governance: scheduler is required")
	}
	if cfg.Tokens == nil || cfg.Escrow == nil || cfg.Accounts == nil ||
		cfg.Onboarding == nil || cfg.Settings == nil {
		return nil, errors.New("governance: all collaborators are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	if cfg.GovernanceAccount == "" {
		cfg.GovernanceAccount = DefaultGovernanceAccount
	}
	if cfg.Funds == nil {
		cfg.Funds = DefaultFunds()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	voices := voice.NewLedger(cfg.Database)
	e := &Engine{
		config: cfg,
		db:     cfg.Database,
		sched:  cfg.Scheduler,
		logger: cfg.Logger.With("component", "governance"),
		tracer: otel.Tracer(tracerName),
		voices: voices,
		graph:  delegation.NewGraph(cfg.Database, voices),
		book:   tally.NewBook(cfg.Database),
	}
	e.batchDelay.Store(int64(time.Second))
	e.metrics.init(cfg.PromRegistry)
	e.registerTasks()
	return e, nil
}

func (e *Engine) registerTasks() {
	e.sched.SetStepDelay(e.StepDelay)
	e.sched.Register(TaskCycleAdvance, e.handler("advance_cycle", e.advanceCycle))
	e.sched.Register(TaskCycleDecay, e.handler("decay_voices", e.decayVoices))
	e.sched.RegisterSweep(TaskProposalEvaluate, e.sweep("evaluate_chunk", e.evaluateChunk))
	e.sched.Register(TaskEvaluateProposal, e.handler("evaluate", e.evaluateOne))
	e.sched.RegisterSweep(TaskVoiceDecay, e.sweep("decay_voice", e.decayVoiceChunk))
	e.sched.RegisterSweep(TaskVoiceRefresh, e.sweep("update_voice", e.refreshVoiceChunk))
	e.sched.RegisterSweep(TaskVoteMimic, e.sweep("mimic_vote", e.mimicVoteChunk))
	e.sched.RegisterSweep(TaskVoteMimicRevert, e.sweep("mimic_revert", e.mimicRevertChunk))
	e.sched.RegisterSweep(TaskParticipantReward, e.sweep("reward_participants", e.rewardChunk))
}

// StepDelay returns the delay between continuation steps from the most
// recently loaded settings
func (e *Engine) StepDelay() time.Duration {
	return time.Duration(e.batchDelay.Load())
}

// opContext carries everything an operation needs. It is built once per
// operation from the settings snapshot and the cycle state
type opContext struct {
	ctx    context.Context
	e      *Engine
	txn    *database.Txn
	params *Params
	state  *models.CycleState
	now    time.Time
	logger *slog.Logger
}

func (e *Engine) newOp(ctx context.Context, txn *database.Txn) (*opContext, error) {
	params, err := LoadParams(e.config.Settings, txn)
	if err != nil {
		return nil, err
	}
	state, err := e.db.GetCycleState(txn)
	if err != nil {
		return nil, err
	}
	e.batchDelay.Store(int64(params.BatchDelay))
	return &opContext{
		ctx:    ctx,
		e:      e,
		txn:    txn,
		params: params,
		state:  state,
		now:    e.config.Now(),
		logger: e.logger,
	}, nil
}

// cycle returns the current governance cycle
func (op *opContext) cycle() uint64 {
	return op.state.Cycle
}

// afterCommit runs fn once the operation's transaction has committed
func (op *opContext) afterCommit(fn func()) {
	op.txn.OnCommit(fn)
}

func (op *opContext) publish(eventType event.EventType, data any) {
	bus := op.e.config.EventBus
	if bus == nil {
		return
	}
	evt := event.NewEvent(eventType, data)
	op.afterCommit(func() {
		bus.Publish(evt)
	})
}

func (e *Engine) startSpan(
	ctx context.Context,
	name string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return e.tracer.Start(
		ctx,
		"governance."+name,
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// exec runs fn as one atomic step under the scheduler's step lock
func (e *Engine) exec(
	ctx context.Context,
	name string,
	fn func(op *opContext) error,
	attrs ...attribute.KeyValue,
) (err error) {
	ctx, span := e.startSpan(ctx, name, attrs...)
	defer func() { endSpan(span, err) }()
	return e.sched.Exec(func(txn *database.Txn) error {
		op, err := e.newOp(ctx, txn)
		if err != nil {
			return err
		}
		return fn(op)
	})
}

// view runs fn under the step lock with a read-only transaction
func (e *Engine) view(fn func(txn *database.Txn) error) error {
	return e.sched.View(fn)
}

func (e *Engine) handler(
	name string,
	fn func(op *opContext, task scheduler.Task) error,
) scheduler.HandlerFunc {
	return func(ctx context.Context, txn *database.Txn, task scheduler.Task) (err error) {
		ctx, span := e.startSpan(ctx, name, attribute.String("task.key", task.Key))
		defer func() { endSpan(span, err) }()
		op, err := e.newOp(ctx, txn)
		if err != nil {
			return err
		}
		return fn(op, task)
	}
}

func (e *Engine) sweep(
	name string,
	fn func(op *opContext, task scheduler.Task) (string, bool, error),
) scheduler.SweepFunc {
	return func(ctx context.Context, txn *database.Txn, task scheduler.Task) (next string, done bool, err error) {
		ctx, span := e.startSpan(
			ctx,
			name,
			attribute.String("task.key", task.Key),
			attribute.String("task.cursor", task.Cursor),
		)
		defer func() { endSpan(span, err) }()
		op, err := e.newOp(ctx, txn)
		if err != nil {
			return task.Cursor, false, err
		}
		return fn(op, task)
	}
}

// schedule queues a continuation as part of the operation's transaction
func (op *opContext) schedule(kind, key string, payload any) error {
	task, err := scheduler.NewTask(kind, key, "", payload)
	if err != nil {
		return err
	}
	return op.e.sched.ScheduleTxn(op.txn, task)
}

// Bootstrap makes sure the current cycle has its statistics. It is called
// once at start-up
func (e *Engine) Bootstrap(ctx context.Context) error {
	return e.exec(ctx, "bootstrap", func(op *opContext) error {
		stats, err := e.db.GetCycleStats(op.cycle(), op.cycle(), op.txn)
		if err != nil {
			return err
		}
		cycle := op.cycle()
		op.afterCommit(func() {
			e.metrics.cycle.Set(float64(cycle))
		})
		if len(stats) > 0 {
			return nil
		}
		if op.state.CycleStartedAt == 0 {
			op.state.CycleStartedAt = op.now.Unix()
			op.state.LastDecayAt = op.now.Unix()
			if err := e.db.SetCycleState(op.state, op.txn); err != nil {
				return err
			}
		}
		active, err := e.db.CountActiveAccounts(op.txn)
		if err != nil {
			return err
		}
		_, err = e.book.OpenCycle(
			cycle,
			op.state.CycleStartedAt,
			op.params.QuorumWindow,
			active,
			FundTypes,
			op.params.Quorum,
			op.txn,
		)
		return err
	})
}
