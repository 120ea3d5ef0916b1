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

package badger

import (
	badger "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	lsmSizeDesc = prometheus.NewDesc(
		"database_blob_lsm_size_bytes",
		"Size of the badger LSM tree in bytes",
		nil, nil,
	)
	vlogSizeDesc = prometheus.NewDesc(
		"database_blob_vlog_size_bytes",
		"Size of the badger value log in bytes",
		nil, nil,
	)
)

// sizeCollector reports the on-disk size of the store at scrape time
type sizeCollector struct {
	db *badger.DB
}

func newSizeCollector(db *badger.DB) *sizeCollector {
	return &sizeCollector{db: db}
}

func (c *sizeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- lsmSizeDesc
	ch <- vlogSizeDesc
}

func (c *sizeCollector) Collect(ch chan<- prometheus.Metric) {
	lsm, vlog := c.db.Size()
	ch <- prometheus.MustNewConstMetric(lsmSizeDesc, prometheus.GaugeValue, float64(lsm))
	ch <- prometheus.MustNewConstMetric(vlogSizeDesc, prometheus.GaugeValue, float64(vlog))
}
