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

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultPollInterval = 250 * time.Millisecond
)

// HandlerFunc executes one step of a task. Everything it writes through txn
// commits together with the removal of the task, or not at all
type HandlerFunc func(ctx context.Context, txn *database.Txn, task Task) error

// SweepFunc processes one chunk of an ordered key space starting after
// task.Cursor. It returns the cursor to resume from and whether the sweep is
// complete
type SweepFunc func(
	ctx context.Context,
	txn *database.Txn,
	task Task,
) (next string, done bool, err error)

type Config struct {
	Database     *database.Database
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	PollInterval time.Duration
	// StepDelay returns the delay applied to sweep continuations
	StepDelay func() time.Duration
	// Now returns the current time. It defaults to time.Now
	Now func() time.Time
}

// Scheduler runs queued tasks one at a time, in the order they were
// scheduled. All state changes in the system go through its step lock
type Scheduler struct {
	config   Config
	db       *database.Database
	logger   *slog.Logger
	metrics  schedulerMetrics
	handlers map[string]HandlerFunc
	// stepMu serializes task steps and Exec calls
	stepMu    sync.Mutex
	handlerMu sync.RWMutex
	wakeCh    chan struct{}
}

func New(cfg Config) (*Scheduler, error) {
	if cfg.Database == nil {
		return nil, errors.New("scheduler: database is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.PromRegistry == nil {
		cfg.PromRegistry = prometheus.NewRegistry()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Scheduler{
		config:   cfg,
		db:       cfg.Database,
		logger:   cfg.Logger.With("component", "scheduler"),
		handlers: make(map[string]HandlerFunc),
		wakeCh:   make(chan struct{}, 1),
	}
	s.metrics.init(cfg.PromRegistry)
	tasks, err := s.db.TaskList(0, nil)
	if err != nil {
		return nil, fmt.Errorf("load task queue: %w", err)
	}
	s.metrics.queueDepth.Set(float64(len(tasks)))
	return s, nil
}

// SetStepDelay replaces the continuation delay function. It must be called
// before Run
func (s *Scheduler) SetStepDelay(fn func() time.Duration) {
	s.config.StepDelay = fn
}

// Register sets the handler for a task kind
func (s *Scheduler) Register(kind string, handler HandlerFunc) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()
	s.handlers[kind] = handler
}

// RegisterSweep sets a chunked sweep as the handler for a task kind. When a
// chunk reports more work, the continuation is queued at the new cursor
// after the configured step delay
func (s *Scheduler) RegisterSweep(kind string, sweep SweepFunc) {
	s.Register(
		kind,
		func(ctx context.Context, txn *database.Txn, task Task) error {
			next, done, err := sweep(ctx, txn, task)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			if next == task.Cursor {
				return fmt.Errorf(
					"%s sweep made no progress at cursor %q",
					kind,
					next,
				)
			}
			cont := task.Next(next)
			if s.config.StepDelay != nil {
				cont.NotBefore = s.config.Now().Add(s.config.StepDelay()).UnixMilli()
			}
			return s.ScheduleTxn(txn, cont)
		},
	)
}

// Exec runs fn under the step lock inside a read-write transaction. The
// transaction commits if fn returns nil and rolls back otherwise
func (s *Scheduler) Exec(fn func(txn *database.Txn) error) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return s.db.Transaction(true).Do(fn)
}

// View runs fn under the step lock inside a read-only transaction
func (s *Scheduler) View(fn func(txn *database.Txn) error) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	txn := s.db.Transaction(false)
	defer txn.Release()
	return fn(txn)
}

// Schedule queues a task in its own transaction
func (s *Scheduler) Schedule(task Task) error {
	return s.Exec(func(txn *database.Txn) error {
		return s.ScheduleTxn(txn, task)
	})
}

// ScheduleTxn queues a task as part of an existing transaction. It returns
// ErrDuplicateTask if a task with the same ID is already queued
func (s *Scheduler) ScheduleTxn(txn *database.Txn, task Task) error {
	if task.ID == "" {
		task.ID = TaskID(task.Kind, task.Key, task.Cursor)
	}
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	if _, err := s.db.TaskEnqueue(task.ID, data, txn); err != nil {
		if errors.Is(err, database.ErrTaskExists) {
			return fmt.Errorf(
				"%w: %s %s@%s",
				ErrDuplicateTask,
				task.Kind,
				task.Key,
				task.Cursor,
			)
		}
		return err
	}
	s.metrics.scheduled.WithLabelValues(task.Kind).Inc()
	s.metrics.queueDepth.Inc()
	s.wake()
	return nil
}

func (s *Scheduler) wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Pending returns the queued tasks in execution order
func (s *Scheduler) Pending() ([]Task, error) {
	queued, err := s.db.TaskList(0, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]Task, 0, len(queued))
	for _, qt := range queued {
		task, err := decodeTask(qt.Payload)
		if err != nil {
			return nil, err
		}
		ret = append(ret, task)
	}
	return ret, nil
}

// RunOnce executes the task at the head of the queue if it's due. It reports
// whether a task was consumed
func (s *Scheduler) RunOnce(ctx context.Context) (bool, error) {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	return s.step(ctx, false)
}

// Drain runs queued tasks, ignoring continuation delays, until the queue is
// empty or the context is done
func (s *Scheduler) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.stepMu.Lock()
		ran, err := s.step(ctx, true)
		s.stepMu.Unlock()
		if err != nil {
			return err
		}
		if !ran {
			return nil
		}
	}
}

// Run executes tasks as they become due until the context is done
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()
	for {
		for {
			ran, err := s.RunOnce(ctx)
			if err != nil {
				return err
			}
			if !ran {
				break
			}
			if ctx.Err() != nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-s.wakeCh:
		}
	}
}

// step must be called with stepMu held. A failing handler rolls back its
// transaction and the task is dropped without retry
func (s *Scheduler) step(ctx context.Context, ignoreDelay bool) (bool, error) {
	queued, err := s.db.TaskPeek(nil)
	if err != nil {
		if errors.Is(err, database.ErrTaskQueueEmpty) {
			return false, nil
		}
		return false, fmt.Errorf("peek task queue: %w", err)
	}
	task, err := decodeTask(queued.Payload)
	if err != nil {
		s.logger.Error(
			"dropping undecodable task",
			"seq", queued.Seq,
			"error", err,
		)
		return true, s.drop(queued.Seq, task)
	}
	if !ignoreDelay && task.NotBefore > s.config.Now().UnixMilli() {
		return false, nil
	}
	s.handlerMu.RLock()
	handler, ok := s.handlers[task.Kind]
	s.handlerMu.RUnlock()
	if !ok {
		s.logger.Error(
			"dropping task with no handler",
			"kind", task.Kind,
			"id", task.ID,
		)
		return true, s.drop(queued.Seq, task)
	}
	start := time.Now()
	txn := s.db.Transaction(true)
	err = txn.Do(func(txn *database.Txn) error {
		// Remove first so a handler may queue a task with the same ID
		if err := s.db.TaskRemove(queued.Seq, task.ID, txn); err != nil {
			return err
		}
		return handler(ctx, txn, task)
	})
	s.metrics.stepTime.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error(
			"task step failed, dropping task",
			"kind", task.Kind,
			"key", task.Key,
			"cursor", task.Cursor,
			"id", task.ID,
			"error", err,
		)
		return true, s.drop(queued.Seq, task)
	}
	s.metrics.completed.WithLabelValues(task.Kind).Inc()
	s.metrics.queueDepth.Dec()
	s.logger.Debug(
		"task step completed",
		"kind", task.Kind,
		"key", task.Key,
		"cursor", task.Cursor,
	)
	return true, nil
}

func (s *Scheduler) drop(seq uint64, task Task) error {
	s.metrics.failed.WithLabelValues(task.Kind).Inc()
	s.metrics.queueDepth.Dec()
	if err := s.db.TaskRemove(seq, task.ID, nil); err != nil {
		return fmt.Errorf("drop task %s: %w", task.ID, err)
	}
	return nil
}
