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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type busMetrics struct {
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers prometheus.Gauge
}

func newBusMetrics(promRegistry prometheus.Registerer) *busMetrics {
	factory := promauto.With(promRegistry)
	return &busMetrics{
		published: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_published_total",
				Help: "events published by type",
			},
			[]string{"type"},
		),
		dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "event_dropped_total",
				Help: "events dropped on a full subscriber queue by type",
			},
			[]string{"type"},
		),
		subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "event_subscribers",
				Help: "open event subscriptions",
			},
		),
	}
}
