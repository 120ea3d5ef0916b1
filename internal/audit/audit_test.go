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

package audit_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/internal/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLogKeepsNewestEvents(t *testing.T) {
	defer goleak.VerifyNone(t)
	bus := event.NewBus(nil, nil)
	defer bus.Stop()
	log := audit.New(bus, nil, 3)
	log.Start()

	for cycle := range uint64(5) {
		require.True(t, bus.Publish(event.NewEvent(
			event.CycleAdvancedEventType,
			event.CycleAdvancedEvent{Cycle: cycle},
		)))
	}
	require.Eventually(t, func() bool {
		recent := log.Recent(10)
		return len(recent) == 3 &&
			recent[0].Data.(event.CycleAdvancedEvent).Cycle == 4
	}, 2*time.Second, 10*time.Millisecond)
	log.Stop()

	recent := log.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, uint64(4), recent[0].Data.(event.CycleAdvancedEvent).Cycle)
	assert.Equal(t, uint64(3), recent[1].Data.(event.CycleAdvancedEvent).Cycle)
	assert.Len(t, log.Recent(10), 3)

	// Stopped logs no longer receive events
	bus.Publish(event.NewEvent(event.CycleAdvancedEventType, event.CycleAdvancedEvent{Cycle: 9}))
	assert.Equal(t, uint64(4), log.Recent(1)[0].Data.(event.CycleAdvancedEvent).Cycle)
}

func TestLogEmpty(t *testing.T) {
	bus := event.NewBus(nil, nil)
	defer bus.Stop()
	log := audit.New(bus, nil, 0)
	assert.Empty(t, log.Recent(5))
	log.Stop()
}
