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

package node

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/agora/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNewFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DatabasePath = ""
	cfg.RunMode = config.RunModeDev
	cfg.APIPort = 0
	cfg.Settings = map[string]string{"decay.pct": "25"}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	n, err := New(cfg, logger, prometheus.NewRegistry())
	require.NoError(t, err)
	defer n.Stop() //nolint:errcheck
	require.NoError(t, n.AdvanceCycle(context.Background()))
	state, err := n.Engine().CycleState()
	require.NoError(t, err)
	require.Equal(t, uint64(1), state.Cycle)
}

func TestNewInvalidSetting(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Settings = map[string]string{"decay.pct": "many"}
	_, err := New(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)
	require.Error(t, err)
}
