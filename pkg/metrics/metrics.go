/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Result labels shared by the counters below
const (
	ResultSuccess = "success"
	ResultBusted  = "busted"
	ResultError   = "error"
	ResultCycle   = "cycle"
	ResultInvalid = "invalid"
)

// Registry holds every bindgraph metric
var Registry = prometheus.NewRegistry()

var (
	// Parse metrics
	parseTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bindgraph_parse_total",
		Help: "Total number of type signature parses",
	}, []string{"result"})

	parseCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bindgraph_parse_cache_hits_total",
		Help: "Total number of parse cache hits",
	})

	parseCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bindgraph_parse_cache_misses_total",
		Help: "Total number of parse cache misses",
	})

	// Ordering metrics
	sortTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bindgraph_sort_total",
		Help: "Total number of declaration orderings",
	}, []string{"result"})

	sortDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bindgraph_sort_duration_seconds",
		Help:    "Duration of declaration orderings",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	})

	// Emit metrics
	emitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bindgraph_emit_total",
		Help: "Total number of emitted declarations",
	}, []string{"result"})

	emitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bindgraph_emit_duration_seconds",
		Help:    "Duration of single declaration emits",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~1.6s
	})
)

func init() {
	Registry.MustRegister(
		parseTotal,
		parseCacheHitsTotal,
		parseCacheMissesTotal,
		sortTotal,
		sortDuration,
		emitTotal,
		emitDuration,
	)
}

// RecordParse records a parse
// result: "success", "busted", or "error"
func RecordParse(result string) {
	parseTotal.WithLabelValues(result).Inc()
}

// RecordCacheHit records a parse cache hit
func RecordCacheHit() {
	parseCacheHitsTotal.Inc()
}

// RecordCacheMiss records a parse cache miss
func RecordCacheMiss() {
	parseCacheMissesTotal.Inc()
}

// RecordSort records a declaration ordering
// result: "success", "cycle", or "invalid"
func RecordSort(result string, durationSeconds float64) {
	sortTotal.WithLabelValues(result).Inc()
	sortDuration.Observe(durationSeconds)
}

// RecordEmit records a single declaration emit
func RecordEmit(result string, durationSeconds float64) {
	emitTotal.WithLabelValues(result).Inc()
	emitDuration.Observe(durationSeconds)
}

// WriteText writes every registered metric to w in the text exposition format
func WriteText(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
