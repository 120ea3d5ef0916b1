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

package event

import (
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueueSize is the number of undelivered events a subscriber may hold before
// further events for it are dropped
const QueueSize = 64

type EventType string

type Event struct {
	Timestamp time.Time
	Type      EventType
	Data      any
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Data:      eventData,
	}
}

type SubscriptionID uint64

type subscription struct {
	types []EventType
	ch    chan Event
}

func (s *subscription) wants(eventType EventType) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// Bus hands committed governance events to in-process subscribers. Publish
// never blocks the caller: a subscriber whose queue is full misses the event
type Bus struct {
	mu      sync.RWMutex
	subs    map[SubscriptionID]*subscription
	lastID  SubscriptionID
	stopped bool
	logger  *slog.Logger
	metrics *busMetrics
}

func NewBus(promRegistry prometheus.Registerer, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	b := &Bus{
		subs:   make(map[SubscriptionID]*subscription),
		logger: logger.With("component", "event"),
	}
	if promRegistry != nil {
		b.metrics = newBusMetrics(promRegistry)
	}
	return b
}

// Subscribe returns a channel receiving events of the given types, or of
// every type when none are given. The channel is closed by Unsubscribe or Stop
func (b *Bus) Subscribe(types ...EventType) (SubscriptionID, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &subscription{
		types: slices.Clone(types),
		ch:    make(chan Event, QueueSize),
	}
	if b.stopped {
		close(sub.ch)
		return 0, sub.ch
	}
	b.lastID++
	b.subs[b.lastID] = sub
	if b.metrics != nil {
		b.metrics.subscribers.Inc()
	}
	return b.lastID, sub.ch
}

// SubscribeFunc calls fn from a dedicated goroutine for each matching event
func (b *Bus) SubscribeFunc(fn func(Event), types ...EventType) SubscriptionID {
	id, ch := b.Subscribe(types...)
	go func() {
		for evt := range ch {
			fn(evt)
		}
	}()
	return id
}

func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
	if b.metrics != nil {
		b.metrics.subscribers.Dec()
	}
}

// Publish queues evt for every interested subscriber. It reports false when
// the bus is stopped or any subscriber dropped the event
func (b *Bus) Publish(evt Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		return false
	}
	delivered := true
	for id, sub := range b.subs {
		if !sub.wants(evt.Type) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			delivered = false
			b.logger.Warn(
				"subscriber queue full, dropping event",
				"type", evt.Type,
				"subscription", id,
			)
			if b.metrics != nil {
				b.metrics.dropped.WithLabelValues(string(evt.Type)).Inc()
			}
		}
	}
	if b.metrics != nil {
		b.metrics.published.WithLabelValues(string(evt.Type)).Inc()
	}
	return delivered
}

// Stop closes every subscription. Later publishes are refused
func (b *Bus) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
	if b.metrics != nil {
		b.metrics.subscribers.Set(0)
	}
}
