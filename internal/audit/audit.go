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

// Package audit records committed governance events
package audit

import (
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/agora/event"
)

const DefaultSize = 256

// Log writes every governance event to the audit logger and keeps the most
// recent ones in memory
type Log struct {
	bus    *event.Bus
	logger *slog.Logger
	mu     sync.Mutex
	ring   []event.Event
	next   int
	full   bool
	subID  event.SubscriptionID
	done   chan struct{}
}

func New(bus *event.Bus, logger *slog.Logger, size int) *Log {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Log{
		bus:    bus,
		logger: logger.With("component", "audit"),
		ring:   make([]event.Event, size),
	}
}

// Start subscribes to every event type on the bus
func (l *Log) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return
	}
	id, ch := l.bus.Subscribe()
	l.subID = id
	l.done = make(chan struct{})
	go l.consume(ch, l.done)
}

func (l *Log) consume(ch <-chan event.Event, done chan struct{}) {
	defer close(done)
	for evt := range ch {
		l.record(evt)
	}
}

func (l *Log) record(evt event.Event) {
	l.logger.Info(
		"governance event",
		"type", evt.Type,
		"at", evt.Timestamp,
		"data", evt.Data,
	)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.next] = evt
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
}

// Stop unsubscribes and waits for queued events to be recorded
func (l *Log) Stop() {
	l.mu.Lock()
	done := l.done
	l.done = nil
	l.mu.Unlock()
	if done == nil {
		return
	}
	l.bus.Unsubscribe(l.subID)
	<-done
}

// Recent returns up to limit events, newest first
func (l *Log) Recent(limit int) []event.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	size := l.next
	if l.full {
		size = len(l.ring)
	}
	limit = min(max(limit, 0), size)
	ret := make([]event.Event, 0, limit)
	for i := 1; i <= limit; i++ {
		ret = append(ret, l.ring[(l.next-i+len(l.ring))%len(l.ring)])
	}
	return ret
}
