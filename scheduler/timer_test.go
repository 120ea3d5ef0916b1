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
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestTimerRegistersAndRunsTask(t *testing.T) {
	defer goleak.VerifyNone(t)
	var counter int32

	timer := NewTimer(10 * time.Millisecond)
	timer.Start()
	defer timer.Stop()

	// Run every 3 ticks
	timer.Register(3, func() {
		atomic.AddInt32(&counter, 1)
	}, nil)

	assert.Eventually(
		t,
		func() bool { return atomic.LoadInt32(&counter) >= 2 },
		time.Second,
		5*time.Millisecond,
	)
}

func TestTimerChangeInterval(t *testing.T) {
	defer goleak.VerifyNone(t)
	var counter int32

	timer := NewTimer(20 * time.Millisecond)
	timer.Start()
	defer timer.Stop()

	timer.Register(1, func() {
		atomic.AddInt32(&counter, 1)
	}, nil)

	assert.Eventually(
		t,
		func() bool { return atomic.LoadInt32(&counter) >= 2 },
		time.Second,
		5*time.Millisecond,
	)

	timer.ChangeInterval(time.Hour)
	before := atomic.LoadInt32(&counter)
	time.Sleep(100 * time.Millisecond)
	// At most one tick may already have been in flight
	assert.LessOrEqual(t, atomic.LoadInt32(&counter)-before, int32(1))
}

func TestTimerRunFailFunc(t *testing.T) {
	defer goleak.VerifyNone(t)
	var failCounter int32
	release := make(chan struct{})

	timer := NewTimer(10 * time.Millisecond)
	timer.Start()

	timer.Register(
		1,
		func() {
			<-release
		},
		func() {
			atomic.AddInt32(&failCounter, 1)
		},
	)

	assert.Eventually(
		t,
		func() bool { return atomic.LoadInt32(&failCounter) >= 3 },
		time.Second,
		5*time.Millisecond,
	)
	close(release)
	timer.Stop()
}

func TestTimerChangeIntervalBeforeStart(t *testing.T) {
	timer := NewTimer(time.Hour)
	timer.ChangeInterval(time.Minute)
	assert.Equal(t, time.Minute, timer.interval)
	timer.Stop()
}

func TestTimerStopHaltsTicks(t *testing.T) {
	defer goleak.VerifyNone(t)
	ticks := make(chan struct{}, 16)

	timer := NewTimer(5 * time.Millisecond)
	timer.Register(1, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}, nil)
	timer.Start()

	testutil.RequireReceive(t, ticks, time.Second, "timer never ticked")
	timer.Stop()
	// Drain anything sent before Stop returned
	for len(ticks) > 0 {
		<-ticks
	}
	testutil.RequireNoReceive(t, ticks, 50*time.Millisecond, "tick after Stop")
}
