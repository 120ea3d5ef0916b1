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

package scheduler_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/blinklabs-io/agora/database/models"
	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/blinklabs-io/agora/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, cfg scheduler.Config) *scheduler.Scheduler {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	cfg.Database = db
	s, err := scheduler.New(cfg)
	require.NoError(t, err)
	return s
}

func mustTask(t *testing.T, kind, key, cursor string, payload any) scheduler.Task {
	t.Helper()
	task, err := scheduler.NewTask(kind, key, cursor, payload)
	require.NoError(t, err)
	return task
}

func TestTaskIDDeterministic(t *testing.T) {
	a := scheduler.TaskID("voice.decay", "alliance", "10")
	b := scheduler.TaskID("voice.decay", "alliance", "10")
	c := scheduler.TaskID("voice.decay", "alliance", "11")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestScheduleDuplicateRejected(t *testing.T) {
	s := newTestScheduler(t, scheduler.Config{})
	task := mustTask(t, "cycle.advance", "", "", nil)
	require.NoError(t, s.Schedule(task))
	err := s.Schedule(task)
	require.ErrorIs(t, err, scheduler.ErrDuplicateTask)
	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestFifoOrder(t *testing.T) {
	s := newTestScheduler(t, scheduler.Config{})
	var order []string
	s.Register("record", func(_ context.Context, _ *database.Txn, task scheduler.Task) error {
		order = append(order, task.Key)
		return nil
	})
	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, s.Schedule(mustTask(t, "record", key, "", nil)))
	}
	require.NoError(t, s.Drain(context.Background()))
	assert.Equal(t, []string{"c", "a", "b"}, order)
}

func TestSweepResumesFromCursor(t *testing.T) {
	s := newTestScheduler(t, scheduler.Config{})
	const total = 7
	const chunk = 3
	var seen []int
	s.RegisterSweep("count", func(_ context.Context, _ *database.Txn, task scheduler.Task) (string, bool, error) {
		start := 0
		if task.Cursor != "" {
			var err error
			start, err = strconv.Atoi(task.Cursor)
			if err != nil {
				return "", false, err
			}
		}
		end := min(start+chunk, total)
		for i := start; i < end; i++ {
			seen = append(seen, i)
		}
		return strconv.Itoa(end), end >= total, nil
	})
	require.NoError(t, s.Schedule(mustTask(t, "count", "all", "", nil)))
	require.NoError(t, s.Drain(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, seen)
}

func TestFailedStepRollsBackAndDrops(t *testing.T) {
	registry := prometheus.NewRegistry()
	s := newTestScheduler(t, scheduler.Config{PromRegistry: registry})
	var db *database.Database
	s.Register("fail", func(_ context.Context, txn *database.Txn, _ scheduler.Task) error {
		db = txn.DB()
		if err := db.SetVoice(&models.Voice{
			Account: "alice",
			Scope:   "alliance",
			Balance: 1,
		}, txn); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.NoError(t, s.Schedule(mustTask(t, "fail", "", "", nil)))
	ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)

	_, err = db.GetVoice("alice", "alliance", nil)
	require.ErrorIs(t, err, models.ErrVoiceNotFound)
	pending, err := s.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.InDelta(
		t,
		1.0,
		counterValue(t, registry, "agora_scheduler_tasks_failed_total"),
		0,
	)
}

func TestDelayedContinuation(t *testing.T) {
	now := time.Unix(1000, 0)
	s := newTestScheduler(t, scheduler.Config{
		StepDelay: func() time.Duration { return time.Second },
		Now:       func() time.Time { return now },
	})
	var steps int
	s.RegisterSweep("slow", func(_ context.Context, _ *database.Txn, task scheduler.Task) (string, bool, error) {
		steps++
		return task.Cursor + "x", len(task.Cursor) >= 1, nil
	})
	require.NoError(t, s.Schedule(mustTask(t, "slow", "", "", nil)))
	ran, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, ran)
	// Continuation is not due yet
	ran, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	require.False(t, ran)
	now = now.Add(2 * time.Second)
	ran, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, ran)
	assert.Equal(t, 2, steps)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newTestScheduler(t, scheduler.Config{PollInterval: 5 * time.Millisecond})
	done := make(chan struct{})
	s.Register("ping", func(context.Context, *database.Txn, scheduler.Task) error {
		close(done)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Run(ctx)
	}()
	require.NoError(t, s.Schedule(mustTask(t, "ping", "", "", nil)))
	testutil.RequireReceive(t, done, 2*time.Second, "task did not run")
	cancel()
	err := testutil.RequireReceive(t, errCh, 2*time.Second, "Run did not return after cancel")
	require.NoError(t, err)
}

func TestPayloadDecode(t *testing.T) {
	type payload struct {
		ProposalID uint   `json:"proposalId"`
		Voter      string `json:"voter"`
	}
	task := mustTask(t, "vote.mimic", "1/alice", "", payload{ProposalID: 1, Voter: "alice"})
	var got payload
	require.NoError(t, task.Decode(&got))
	assert.Equal(t, "alice", got.Voter)
	next := task.Next("42")
	assert.Equal(t, task.Payload, next.Payload)
	assert.NotEqual(t, task.ID, next.ID)
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
