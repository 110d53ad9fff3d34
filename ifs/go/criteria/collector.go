// Copyright 2010-2024 Google LLC
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

package criteria

import (
	"sync"

	"github.com/ifsolver/ifs/ifs/go/model"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace          = "ifs"
	metricsSubsystemCriterion = "criterion"
	metricsSubsystemObjective = "objective"
)

// Collector exports the values of the criteria as Prometheus gauges. The search owns the
// assignment, so values are recorded with Observe from the search goroutine and a scrape only
// reads the gauges set by the last observation.
type Collector struct {
	value    *prometheus.GaugeVec
	weighted *prometheus.GaugeVec
	best     *prometheus.GaugeVec
	total    prometheus.Gauge

	mu       sync.Mutex
	observed map[string]bool // criterion names of the last observation
}

// NewCollector creates a collector with no observation.
func NewCollector() *Collector {
	labels := []string{"criterion"}
	return &Collector{
		value: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystemCriterion,
				Name:      "value",
				Help:      "Current value of the criterion.",
			},
			labels,
		),
		weighted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystemCriterion,
				Name:      "weighted_value",
				Help:      "Current weighted value of the criterion.",
			},
			labels,
		),
		best: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystemCriterion,
				Name:      "best",
				Help:      "Value of the criterion in the best saved assignment.",
			},
			labels,
		),
		total: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystemObjective,
				Name:      "total",
				Help:      "Sum of the weighted values of all criteria.",
			},
		),
		observed: make(map[string]bool),
	}
}

// Observe records the current values of the criteria of the model of `a`. Series are updated in
// place; only criteria that are no longer part of the model are deleted.
func (c *Collector) Observe(a *model.Assignment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make(map[string]bool)
	for _, mc := range a.Model().Criteria() {
		cr, ok := mc.(Criterion)
		if !ok {
			continue
		}
		name := cr.Name()
		names[name] = true
		c.value.WithLabelValues(name).Set(cr.Value(a))
		c.weighted.WithLabelValues(name).Set(cr.WeightedValue(a))
		c.best.WithLabelValues(name).Set(cr.Best())
	}
	for name := range c.observed {
		if names[name] {
			continue
		}
		c.value.DeleteLabelValues(name)
		c.weighted.DeleteLabelValues(name)
		c.best.DeleteLabelValues(name)
	}
	c.observed = names
	c.total.Set(a.Model().TotalValue(a))
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.value.Describe(ch)
	c.weighted.Describe(ch)
	c.best.Describe(ch)
	c.total.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.value.Collect(ch)
	c.weighted.Collect(ch)
	c.best.Collect(ch)
	c.total.Collect(ch)
}
