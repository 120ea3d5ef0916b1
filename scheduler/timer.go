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
	"sync"
	"time"
)

type timerTask struct {
	interval          int
	ticksSinceLastRun int
	task              func()
	runFailFunc       func()
	running           bool
}

// Timer ticks at a fixed interval and runs registered functions every N
// ticks. A function that is still running when it comes due again is skipped
// and its fail function is called instead
type Timer struct {
	mutex              sync.Mutex
	interval           time.Duration
	ticker             *time.Ticker
	quit               chan struct{}
	updateIntervalChan chan time.Duration
	tasks              []*timerTask
	startOnce          sync.Once
	stopOnce           sync.Once
	wg                 sync.WaitGroup
}

func NewTimer(interval time.Duration) *Timer {
	return &Timer{
		interval:           interval,
		quit:               make(chan struct{}),
		updateIntervalChan: make(chan time.Duration),
	}
}

// Start the timer goroutine. Calling Start more than once has no effect
func (t *Timer) Start() {
	t.startOnce.Do(func() {
		t.mutex.Lock()
		t.ticker = time.NewTicker(t.interval)
		t.mutex.Unlock()
		t.wg.Add(1)
		go t.run()
	})
}

func (t *Timer) run() {
	defer t.wg.Done()
	for {
		t.mutex.Lock()
		tickCh := t.ticker.C
		t.mutex.Unlock()
		select {
		case <-tickCh:
			t.tick()
		case newInterval := <-t.updateIntervalChan:
			t.mutex.Lock()
			t.ticker.Reset(newInterval)
			t.interval = newInterval
			t.mutex.Unlock()
		case <-t.quit:
			t.mutex.Lock()
			t.ticker.Stop()
			t.mutex.Unlock()
			return
		}
	}
}

func (t *Timer) tick() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, task := range t.tasks {
		task.ticksSinceLastRun++
		if task.ticksSinceLastRun < task.interval {
			continue
		}
		task.ticksSinceLastRun = 0
		if task.running {
			if task.runFailFunc != nil {
				t.wg.Add(1)
				go func(f func()) {
					defer t.wg.Done()
					f()
				}(task.runFailFunc)
			}
			continue
		}
		task.running = true
		t.wg.Add(1)
		go func(task *timerTask) {
			defer t.wg.Done()
			defer func() {
				t.mutex.Lock()
				task.running = false
				t.mutex.Unlock()
			}()
			task.task()
		}(task)
	}
}

// Register adds a function to run every interval ticks. runFailFunc may be nil
func (t *Timer) Register(interval int, task func(), runFailFunc func()) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if interval < 1 {
		interval = 1
	}
	t.tasks = append(t.tasks, &timerTask{
		interval:    interval,
		task:        task,
		runFailFunc: runFailFunc,
	})
}

// ChangeInterval updates the tick interval at runtime
func (t *Timer) ChangeInterval(newInterval time.Duration) {
	t.mutex.Lock()
	if t.ticker == nil {
		t.interval = newInterval
		t.mutex.Unlock()
		return
	}
	t.mutex.Unlock()
	select {
	case t.updateIntervalChan <- newInterval:
	case <-t.quit:
	}
}

// Stop the timer and wait for running functions to return
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.quit)
	})
	t.wg.Wait()
}
