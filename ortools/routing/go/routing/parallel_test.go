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
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerParameters(t *testing.T) {
	params := DefaultSearchParameters().WithTimeLimit(time.Second)
	params.NumWorkers = 6
	params.GuidedLocalSearchLambdaCoefficient = 0.2
	tests := []struct {
		worker       int
		wantStrategy FirstSolutionStrategy
		wantCoef     float64
	}{
		{0, CheapestArcInsertion, 0.2},
		{1, NearestNeighbor, 0.2},
		{2, CheapestArcInsertion, 0.1},
		{3, NearestNeighbor, 0.1},
		{4, CheapestArcInsertion, 0.4},
		{11, NearestNeighbor, 0.2},
	}
	for _, test := range tests {
		got := workerParameters(params, test.worker)
		if got.FirstSolutionStrategy != test.wantStrategy {
			t.Errorf("workerParameters(%v).FirstSolutionStrategy = %v, want %v", test.worker, got.FirstSolutionStrategy, test.wantStrategy)
		}
		if math.Abs(got.GuidedLocalSearchLambdaCoefficient-test.wantCoef) > 1e-12 {
			t.Errorf("workerParameters(%v).GuidedLocalSearchLambdaCoefficient = %v, want %v", test.worker, got.GuidedLocalSearchLambdaCoefficient, test.wantCoef)
		}
		if got.NumWorkers != 1 {
			t.Errorf("workerParameters(%v).NumWorkers = %v, want 1", test.worker, got.NumWorkers)
		}
	}
	if params.NumWorkers != 6 || params.GuidedLocalSearchLambdaCoefficient != 0.2 {
		t.Errorf("workerParameters() modified its input: %+v", params)
	}
}

func TestPublishBest(t *testing.T) {
	var best atomic.Int64
	best.Store(math.MaxInt64)
	if !publishBest(&best, 50) {
		t.Errorf("publishBest(50) = false, want true")
	}
	if publishBest(&best, 50) || publishBest(&best, 70) {
		t.Errorf("publishBest() accepted an objective that is not lower than 50")
	}

	var wg sync.WaitGroup
	for i := int64(0); i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			publishBest(&best, 10+i)
		}()
	}
	wg.Wait()
	if got := best.Load(); got != 10 {
		t.Errorf("best = %v, want 10", got)
	}
}

func TestSolve_Parallel(t *testing.T) {
	p := diamondProblem()
	params := testParams(2 * time.Second)
	params.NumWorkers = 4
	params.IterationLimit = 30
	res, err := Solve(context.Background(), p, params)
	if err != nil {
		t.Fatalf("Solve() returned with unexpected error %v", err)
	}
	if res.Status != StatusFeasible {
		t.Fatalf("Status = %v, want %v", res.Status, StatusFeasible)
	}
	checkResult(t, p, res)
	if got, want := res.Objective, int64(68); got != want {
		t.Errorf("Objective = %v, want %v", got, want)
	}
	if res.Worker < 0 || res.Worker >= 4 {
		t.Errorf("Worker = %v, want in [0, 4)", res.Worker)
	}
}

func TestSolve_ParallelInfeasible(t *testing.T) {
	p := diamondProblem()
	p.Demands[2] = 12
	params := testParams(time.Second)
	params.NumWorkers = 3
	res, err := Solve(context.Background(), p, params)
	if err != nil {
		t.Fatalf("Solve() returned with unexpected error %v", err)
	}
	if res.Status != StatusInfeasible {
		t.Errorf("Status = %v, want %v", res.Status, StatusInfeasible)
	}
	if res.Worker != 0 {
		t.Errorf("Worker = %v, want 0", res.Worker)
	}
}
