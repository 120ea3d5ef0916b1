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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	proposalsCreated prometheus.Counter
	evaluations      *prometheus.CounterVec
	votes            *prometheus.CounterVec
	delegations      *prometheus.CounterVec
	cycle            prometheus.Gauge
}

func (m *engineMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "agora_governance_proposals_created_total",
		Help: "total proposals created",
	})
	m.evaluations = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_governance_evaluations_total",
		Help: "proposal evaluations by outcome",
	}, []string{"outcome"})
	m.votes = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_governance_votes_total",
		Help: "votes cast by option and origin",
	}, []string{"option", "origin"})
	m.delegations = promautoFactory.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_governance_delegations_total",
		Help: "delegation changes by action",
	}, []string{"action"})
	m.cycle = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "agora_governance_cycle",
		Help: "current governance cycle",
	})
}
