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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type schedulerMetrics struct {
	scheduled  *prometheus.CounterVec
	completed  *prometheus.CounterVec
	failed     *prometheus.CounterVec
	queueDepth prometheus.Gauge
	stepTime   prometheus.Histogram
}

func (m *schedulerMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.scheduled = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_scheduler_tasks_scheduled_total",
			Help: "tasks scheduled by kind",
		},
		[]string{"kind"},
	)
	m.completed = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_scheduler_tasks_completed_total",
			Help: "tasks completed by kind",
		},
		[]string{"kind"},
	)
	m.failed = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agora_scheduler_tasks_failed_total",
			Help: "tasks dropped after a failed step by kind",
		},
		[]string{"kind"},
	)
	m.queueDepth = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "agora_scheduler_queue_depth",
		Help: "number of queued tasks",
	})
	m.stepTime = promautoFactory.NewHistogram(prometheus.HistogramOpts{
		Name:    "agora_scheduler_step_seconds",
		Help:    "duration of a single task step",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})
}
