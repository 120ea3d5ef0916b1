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

package agora

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blinklabs-io/agora/event"
	"github.com/blinklabs-io/agora/governance"
	"github.com/blinklabs-io/agora/internal/test/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeAdvanceCycle(t *testing.T) {
	n, err := New(NewConfig(
		WithRunMode(runModeDev),
		WithSettings(map[string]decimal.Decimal{
			governance.SettingDecayPct: decimal.NewFromInt(20),
		}),
	))
	require.NoError(t, err)
	defer n.Stop() //nolint:errcheck
	require.NoError(t, n.Init())

	value, err := n.Settings().Get(nil, governance.SettingDecayPct)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(value))

	ctx := context.Background()
	require.NoError(t, n.AdvanceCycle(ctx))
	require.NoError(t, n.AdvanceCycle(ctx))
	state, err := n.Engine().CycleState()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), state.Cycle)

	require.NoError(t, n.DecayVoices(ctx))

	// Committed events reach the audit log
	require.Eventually(t, func() bool {
		cycles := 0
		for _, evt := range n.RecentEvents(50) {
			if evt.Type == event.CycleAdvancedEventType {
				cycles++
			}
		}
		return cycles == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNodeUnknownSetting(t *testing.T) {
	n, err := New(NewConfig(
		WithSettings(map[string]decimal.Decimal{
			"no.such.setting": decimal.NewFromInt(1),
		}),
	))
	require.NoError(t, err)
	defer n.Stop() //nolint:errcheck
	require.ErrorIs(t, n.Init(), governance.ErrUnknownSetting)
}

func TestNodeRunStop(t *testing.T) {
	n, err := New(NewConfig(
		WithRunMode(runModeDev),
		WithAPIListenAddress("127.0.0.1:0"),
		WithJWTSecret([]byte("secret")),
		WithDecayCheckInterval(time.Hour),
		WithShutdownTimeout(5*time.Second),
	))
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() {
		runErr <- n.Run()
	}()
	testutil.WaitForCondition(t, func() bool {
		n.mu.Lock()
		defer n.mu.Unlock()
		return n.apiServer != nil
	}, 5*time.Second, "API server did not start")

	rec := newRecorder()
	n.apiServer.Handler().ServeHTTP(rec, mustRequest(t, "/health"))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, n.Stop())
	err = testutil.RequireReceive(t, runErr, 5*time.Second, "Run did not return after Stop")
	require.NoError(t, err)
	// Stopping twice is harmless
	require.NoError(t, n.Stop())
}

func TestRunAfterStop(t *testing.T) {
	n, err := New(NewConfig())
	require.NoError(t, err)
	require.NoError(t, n.Stop())
	require.NoError(t, n.Run())
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

func mustRequest(t *testing.T, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(http.MethodGet, path, nil)
}
