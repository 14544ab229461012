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

package routing

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics exports search counters to Prometheus. A nil *SearchMetrics
// records nothing.
type SearchMetrics struct {
	solves        *prometheus.CounterVec
	movesAccepted *prometheus.CounterVec
	penaltyCycles prometheus.Counter
	solveDuration prometheus.Histogram
	bestObjective prometheus.Gauge
}

// NewSearchMetrics creates the search collectors and registers them with
// `reg`. It returns an error if a collector is already registered.
func NewSearchMetrics(reg prometheus.Registerer) (*SearchMetrics, error) {
	m := &SearchMetrics{
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "routing_solves_total", Help: "Routing solves by final status."},
			[]string{"status"},
		),
		movesAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "routing_moves_accepted_total", Help: "Local search moves committed, by operator."},
			[]string{"operator"},
		),
		penaltyCycles: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "routing_gls_penalty_cycles_total", Help: "Guided local search penalty cycles."},
		),
		solveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Name: "routing_solve_duration_seconds", Help: "Wall time of routing solves in seconds.", Buckets: prometheus.DefBuckets},
		),
		bestObjective: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "routing_best_objective", Help: "Objective of the last solve that found a solution."},
		),
	}
	for _, c := range []prometheus.Collector{m.solves, m.movesAccepted, m.penaltyCycles, m.solveDuration, m.bestObjective} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *SearchMetrics) acceptedMove(op Operator) {
	if m == nil {
		return
	}
	m.movesAccepted.WithLabelValues(op.String()).Inc()
}

func (m *SearchMetrics) penaltyCycle() {
	if m == nil {
		return
	}
	m.penaltyCycles.Inc()
}

func (m *SearchMetrics) observeSolve(res *SolveResult) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(res.Status.String()).Inc()
	m.solveDuration.Observe(res.WallTime.Seconds())
	if res.Status.HasSolution() {
		m.bestObjective.Set(float64(res.Objective))
	}
}
