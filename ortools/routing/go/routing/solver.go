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
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	log "github.com/golang/glog"
)

// SolveOption configures a call to SolveWithParameters.
type SolveOption func(*solveOptions)

type solveOptions struct {
	metrics *SearchMetrics
}

// WithMetrics reports the search to `m`.
func WithMetrics(m *SearchMetrics) SolveOption {
	return func(o *solveOptions) {
		o.metrics = m
	}
}

// SolveWithParameters closes the model if needed and searches for a solution
// until the time limit of `params` or the cancellation of `ctx`. The returned
// error is non-nil only when the model or the parameters are rejected; every
// search outcome, infeasibility included, is a SolveResult.
//
// A closed model is read-only, so several searches may run concurrently on
// it. CloseModel must have been called before doing so.
func (m *Model) SolveWithParameters(ctx context.Context, params *SearchParameters, opts ...SolveOption) (*SolveResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := m.CloseModel(); err != nil {
		return nil, err
	}
	var o solveOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, params.TimeLimit.AsDuration())
	defer cancel()

	var res *SolveResult
	if params.NumWorkers > 1 {
		res = solveParallel(ctx, m, params, o.metrics)
	} else {
		res = newSearch(m, params, 0, o.metrics).run(ctx)
	}
	res.WallTime = time.Since(start)
	o.metrics.observeSolve(res)
	logf(params, 0, "solve finished: status %v, objective %v, wall time %v", res.Status, res.Objective, res.WallTime)
	return res, nil
}

// logf logs search progress at INFO level when the parameters ask for it,
// and at verbosity `level` otherwise.
func logf(params *SearchParameters, level log.Level, format string, args ...any) {
	if params.LogSearch {
		log.InfoDepth(1, fmt.Sprintf(format, args...))
		return
	}
	log.V(max(level, 1)).InfoDepth(1, fmt.Sprintf(format, args...))
}

// search owns the state of one search trial.
type search struct {
	m       *Model
	params  *SearchParameters
	worker  int
	metrics *SearchMetrics

	sol *solution
	ls  *localSearch

	// firstArcs is the number of arcs used by the first solution.
	firstArcs int

	best          [][]int
	bestCosts     []int64
	bestObjective int64
	stats         SearchStats
}

func newSearch(m *Model, params *SearchParameters, worker int, metrics *SearchMetrics) *search {
	return &search{m: m, params: params, worker: worker, metrics: metrics}
}

// run builds a first solution, descends to a local optimum, then keeps
// searching with guided local search if configured.
func (s *search) run(ctx context.Context) *SolveResult {
	if res := s.start(ctx); res != nil {
		return res
	}
	return s.improve(ctx)
}

// start builds the first solution and the local search over it. When the
// configured strategy leaves nodes unrouted, the other strategies are tried
// in turn; the instance is reported infeasible only if all of them fail,
// with the unrouted nodes of the configured one. start returns a result only
// on failure.
func (s *search) start(ctx context.Context) *SolveResult {
	manager := s.m.manager
	var first *InfeasibleError
	for _, strategy := range firstSolutionStrategies(s.params.FirstSolutionStrategy) {
		sol, ok := newSolution(s.m)
		if !ok {
			return s.failure(StatusInfeasible, newInfeasibleError(manager, strategy, visitableIndices(manager)))
		}
		err := buildFirstSolution(ctx, sol, strategy)
		if err == nil {
			s.begin(sol, strategy)
			return nil
		}
		var infeasible *InfeasibleError
		if !errors.As(err, &infeasible) {
			logf(s.params, 0, "worker %v: no first solution: %v", s.worker, err)
			return s.failure(StatusTimedOutNoSolution, nil)
		}
		logf(s.params, 0, "worker %v: %v", s.worker, infeasible)
		if first == nil {
			first = infeasible
		}
	}
	return s.failure(StatusInfeasible, first)
}

// begin makes `sol`, built by `strategy`, the current and best solution.
func (s *search) begin(sol *solution, strategy FirstSolutionStrategy) {
	checkPartition(s.m.manager, sol.routes, true)
	s.sol = sol
	s.firstArcs = usedArcs(sol)
	s.stats.InitialObjective = sol.objective
	s.record()
	logf(s.params, 0, "worker %v: first solution (%v) with objective %v on %v vehicles",
		s.worker, strategy, sol.objective, sol.usedVehicles())

	s.ls = newLocalSearch(sol, s.params.operators(), s.params.ImprovementRule)
	s.ls.onAccept = func(mv move) {
		s.metrics.acceptedMove(mv.op)
		if sol.objective < s.bestObjective {
			s.record()
		}
	}
}

// improve descends from the first solution and runs guided local search.
func (s *search) improve(ctx context.Context) *SolveResult {
	if !s.ls.descend(ctx) {
		return s.result(StatusTimedOutWithFeasible)
	}
	logf(s.params, 1, "worker %v: local optimum with objective %v", s.worker, s.sol.objective)
	if s.params.LocalSearchMode == GuidedLocalSearch {
		s.guide(ctx)
	}
	return s.result(StatusFeasible)
}

// guide runs penalty cycles until the context is done, the iteration limit is
// reached or no arc is left to penalize.
func (s *search) guide(ctx context.Context) {
	g := newGuidedLocalSearch(s.ls, s.params.GuidedLocalSearchLambdaCoefficient, s.stats.InitialObjective, s.firstArcs)
	logf(s.params, 1, "worker %v: guided local search with lambda %v", s.worker, g.lambda)
	for {
		if s.params.IterationLimit > 0 && s.stats.Cycles >= s.params.IterationLimit {
			return
		}
		if g.penalize() == 0 {
			return
		}
		s.stats.Cycles++
		s.metrics.penaltyCycle()
		if ctx.Err() != nil {
			return
		}
		if !s.ls.descend(ctx) {
			return
		}
		logf(s.params, 2, "worker %v: cycle %v, objective %v, penalized %v, best %v",
			s.worker, s.stats.Cycles, s.sol.objective, g.penalizedObjective(), s.bestObjective)
	}
}

// record snapshots the current solution as the best one.
func (s *search) record() {
	s.best, s.bestCosts = s.sol.snapshot()
	s.bestObjective = s.sol.objective
	s.stats.BestObjectiveTrace = append(s.stats.BestObjectiveTrace, s.bestObjective)
	logf(s.params, 1, "worker %v: new best objective %v", s.worker, s.bestObjective)
}

func (s *search) failure(status Status, infeasible *InfeasibleError) *SolveResult {
	return &SolveResult{
		Status:        status,
		Infeasibility: infeasible,
		Stats:         s.finalStats(),
		Worker:        s.worker,
	}
}

func (s *search) finalStats() SearchStats {
	stats := s.stats
	stats.AcceptedMoves = map[Operator]int64{}
	if s.ls != nil {
		stats.AcceptedMoves = maps.Clone(s.ls.accepted)
	}
	stats.BestObjectiveTrace = append([]int64(nil), s.stats.BestObjectiveTrace...)
	return stats
}

// result finalizes the schedules of the best solution and returns it.
func (s *search) result(status Status) *SolveResult {
	manager := s.m.manager
	checkPartition(manager, s.best, true)
	cumuls := make(map[string][][]CumulValue, len(s.m.dimensions))
	for _, d := range s.m.dimensions {
		cumuls[d.name] = make([][]CumulValue, len(s.best))
	}
	res := &SolveResult{
		Status:    status,
		Objective: s.bestObjective,
		Feasible:  true,
		Stats:     s.finalStats(),
		Worker:    s.worker,
	}
	for v, r := range s.best {
		route := RouteResult{
			Vehicle: v,
			Indices: append([]int(nil), r...),
			Nodes:   make([]int, len(r)),
			Cost:    s.bestCosts[v],
			Cumuls:  make(map[string][]CumulValue, len(s.m.dimensions)),
		}
		for k, idx := range r {
			route.Nodes[k] = manager.IndexToNode(idx)
		}
		for _, d := range s.m.dimensions {
			values, ok := d.schedule(v, r)
			if !ok {
				log.Fatalf("best route of vehicle %v violates dimension %q: %v", v, d.name, r)
			}
			route.Cumuls[d.name] = values
			cumuls[d.name][v] = values
		}
		res.Routes = append(res.Routes, route)
	}
	res.Assignment = newAssignment(s.m, s.best, s.bestCosts, cumuls)
	return res
}
