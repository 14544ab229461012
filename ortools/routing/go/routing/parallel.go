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
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// lambdaScales spreads the guided local search coefficient of parallel
// trials.
var lambdaScales = []float64{1, 0.5, 2, 0.25, 4}

// workerParameters returns the parameters of parallel trial `worker`. Trial
// 0 runs `params` unchanged. Odd trials switch the first solution strategy
// and successive pairs of trials scale the guided local search coefficient.
func workerParameters(params *SearchParameters, worker int) *SearchParameters {
	p := params.Clone()
	p.NumWorkers = 1
	if worker%2 == 1 {
		switch params.FirstSolutionStrategy {
		case CheapestArcInsertion:
			p.FirstSolutionStrategy = NearestNeighbor
		case NearestNeighbor:
			p.FirstSolutionStrategy = CheapestArcInsertion
		}
	}
	p.GuidedLocalSearchLambdaCoefficient *= lambdaScales[(worker/2)%len(lambdaScales)]
	return p
}

// publishBest lowers `best` to `objective` and reports whether it did.
func publishBest(best *atomic.Int64, objective int64) bool {
	for {
		cur := best.Load()
		if objective >= cur {
			return false
		}
		if best.CompareAndSwap(cur, objective) {
			return true
		}
	}
}

// solveParallel runs `params.NumWorkers` independent trials, each with its own
// solution and penalty state, and returns the best result: the lowest
// objective among those with a solution, ties going to the lowest worker.
// Without any solution, the result of worker 0 is returned.
func solveParallel(ctx context.Context, m *Model, params *SearchParameters, metrics *SearchMetrics) *SolveResult {
	results := make([]*SolveResult, params.NumWorkers)
	var best atomic.Int64
	best.Store(math.MaxInt64)

	var g errgroup.Group
	for w := range results {
		g.Go(func() error {
			res := newSearch(m, workerParameters(params, w), w, metrics).run(ctx)
			results[w] = res
			if res.Status.HasSolution() && publishBest(&best, res.Objective) {
				logf(params, 0, "worker %v: new global best objective %v", w, res.Objective)
			}
			return nil
		})
	}
	// Trials report failures through their result, never as an error.
	_ = g.Wait()

	chosen := results[0]
	for _, res := range results[1:] {
		if !res.Status.HasSolution() {
			continue
		}
		if !chosen.Status.HasSolution() || res.Objective < chosen.Objective {
			chosen = res
		}
	}
	return chosen
}
