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
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// randomProblem returns an asymmetric instance with unit demands where no
// vehicle can serve more than four customers.
func randomProblem(seed int64, numNodes, numVehicles int) *Problem {
	rng := rand.New(rand.NewSource(seed))
	p := &Problem{
		CostMatrix:        make([][]int64, numNodes),
		Demands:           make([]int64, numNodes),
		VehicleCapacities: make([]int64, numVehicles),
	}
	for i := range p.CostMatrix {
		p.CostMatrix[i] = make([]int64, numNodes)
		for j := range p.CostMatrix[i] {
			if i != j {
				p.CostMatrix[i][j] = 1 + rng.Int63n(100)
			}
		}
		if i != p.Depot {
			p.Demands[i] = 1
		}
	}
	for v := range p.VehicleCapacities {
		p.VehicleCapacities[v] = 4
	}
	return p
}

func newTestLocalSearch(t *testing.T, p *Problem, ops []Operator, rule ImprovementRule) *localSearch {
	t.Helper()
	s := newTestSolution(t, p)
	if err := buildFirstSolution(context.Background(), s, CheapestArcInsertion); err != nil {
		t.Fatalf("buildFirstSolution() returned with unexpected error %v", err)
	}
	return newLocalSearch(s, ops, rule)
}

// allMoves returns every move of `nb`, improving or not.
func allMoves(ls *localSearch, nb neighborhood) []move {
	var moves []move
	collect := func(mv move) bool {
		moves = append(moves, mv)
		return false
	}
	switch nb.op {
	case Relocate:
		ls.scanChain(nb, 1, collect)
	case OrOpt:
		ls.scanChain(nb, 2, collect)
		ls.scanChain(nb, 3, collect)
	case Exchange:
		ls.scanExchange(nb, collect)
	case TwoOpt:
		ls.scanTwoOpt(nb, collect)
	case Cross:
		ls.scanCross(nb, collect)
	}
	return moves
}

func pathCost(ls *localSearch, route []int) int64 {
	var c int64
	for k := 1; k < len(route); k++ {
		c += ls.cost(route[k-1], route[k])
	}
	return c
}

func TestLocalSearch_MoveDeltas(t *testing.T) {
	ls := newTestLocalSearch(t, randomProblem(1, 12, 3), allOperators, FirstImprovement)
	counts := map[Operator]int{}
	for _, nb := range ls.neighborhoods {
		for _, mv := range allMoves(ls, nb) {
			counts[mv.op]++
			a, b := ls.s.routes[mv.v1], ls.s.routes[mv.v2]
			r1, from1, r2, from2 := ls.build(mv)
			r1 = slices.Clone(r1)
			before := pathCost(ls, a)
			after := pathCost(ls, r1)
			if r2 != nil {
				before += pathCost(ls, b)
				after += pathCost(ls, r2)
			}
			if got := after - before; got != mv.delta {
				t.Errorf("move %+v: cost change %v, want delta %v", mv, got, mv.delta)
			}

			if !slices.Equal(r1[:from1], a[:from1]) {
				t.Errorf("move %+v: route %v does not share its first %v positions with %v", mv, r1, from1, a)
			}
			gotIndices := slices.Clone(r1)
			wantIndices := slices.Clone(a)
			if r2 != nil {
				if !slices.Equal(r2[:from2], b[:from2]) {
					t.Errorf("move %+v: route %v does not share its first %v positions with %v", mv, r2, from2, b)
				}
				gotIndices = append(gotIndices, r2...)
				wantIndices = append(wantIndices, b...)
			}
			slices.Sort(gotIndices)
			slices.Sort(wantIndices)
			if !slices.Equal(gotIndices, wantIndices) {
				t.Errorf("move %+v: routes %v %v do not hold the indices of %v %v", mv, r1, r2, a, b)
			}
			if r1[0] != a[0] || r1[len(r1)-1] != a[len(a)-1] {
				t.Errorf("move %+v: route %v does not keep the start and end of %v", mv, r1, a)
			}
		}
	}
	for _, op := range allOperators {
		if counts[op] == 0 {
			t.Errorf("no %v move generated", op)
		}
	}
}

func TestLocalSearch_Descend(t *testing.T) {
	for _, rule := range []ImprovementRule{FirstImprovement, BestImprovement} {
		t.Run(rule.String(), func(t *testing.T) {
			ls := newTestLocalSearch(t, randomProblem(2, 14, 4), allOperators, rule)
			initial := ls.s.objective
			var trace []int64
			ls.onAccept = func(mv move) {
				if mv.delta >= 0 {
					t.Errorf("accepted non improving move %+v", mv)
				}
				trace = append(trace, ls.s.objective)
			}
			if !ls.descend(context.Background()) {
				t.Fatalf("descend() = false, want true")
			}
			if ls.s.objective > initial {
				t.Errorf("objective %v is worse than initial %v", ls.s.objective, initial)
			}
			if !slices.IsSortedFunc(trace, func(a, b int64) int { return int(b - a) }) {
				t.Errorf("objective trace %v is not decreasing", trace)
			}
			for _, nb := range ls.neighborhoods {
				if mv, ok := ls.scan(nb, false); ok {
					t.Errorf("improving move %+v left at local optimum", mv)
				}
			}

			checkPartition(ls.s.m.manager, ls.s.routes, true)
			var total int64
			for v, r := range ls.s.routes {
				total += ls.s.m.routeCost(r)
				for _, d := range ls.s.m.dimensions {
					if _, err := d.Propagate(v, r); err != nil {
						t.Errorf("route %v of vehicle %v: %v", r, v, err)
					}
				}
			}
			if total != ls.s.objective {
				t.Errorf("objective = %v, want the sum of route costs %v", ls.s.objective, total)
			}
		})
	}
}

func TestLocalSearch_SingleOperators(t *testing.T) {
	// Route 0 -> 2 -> 1 -> 3 -> 0 on a line: reversing 2 -> 1 fixes it.
	p := &Problem{
		CostMatrix: [][]int64{
			{0, 10, 20, 30},
			{10, 0, 10, 20},
			{20, 10, 0, 10},
			{30, 20, 10, 0},
		},
		VehicleCapacities: []int64{10},
	}
	for _, op := range []Operator{Relocate, Exchange, TwoOpt, OrOpt} {
		t.Run(op.String(), func(t *testing.T) {
			s := newTestSolution(t, p)
			route := []int{0, 2, 1, 3, 4}
			if !s.check(0, 0, route, 0) {
				t.Fatalf("check(%v) = false, want true", route)
			}
			s.commit(0, 0, route)
			ls := newLocalSearch(s, []Operator{op}, FirstImprovement)
			if !ls.descend(context.Background()) {
				t.Fatalf("descend() = false, want true")
			}
			if got, want := s.objective, int64(60); got != want {
				t.Errorf("objective = %v, want %v (routes %v)", got, want, s.routes)
			}
			if ls.accepted[op] == 0 {
				t.Errorf("accepted[%v] = 0, want > 0", op)
			}
		})
	}
}

func TestLocalSearch_CrossRespectsEnds(t *testing.T) {
	// Vehicle 0 ends at node 3 and vehicle 1 at node 4. Customers 1 and 2 are
	// next to the opposite vehicle end.
	p := &Problem{
		CostMatrix: [][]int64{
			{0, 10, 10, 50, 50},
			{10, 0, 50, 50, 1},
			{10, 50, 0, 1, 50},
			{50, 50, 1, 0, 60},
			{50, 1, 50, 60, 0},
		},
		VehicleCapacities: []int64{10, 10},
		Starts:            []int{0, 0},
		Ends:              []int{3, 4},
	}
	s := newTestSolution(t, p)
	manager := s.m.manager
	n1, n2 := manager.NodeToIndex(1), manager.NodeToIndex(2)
	for v, r := range [][]int{{s.m.Start(0), n1, s.m.End(0)}, {s.m.Start(1), n2, s.m.End(1)}} {
		if !s.check(0, v, r, 0) {
			t.Fatalf("check(%v) = false, want true", r)
		}
		s.commit(0, v, r)
	}
	if got, want := s.objective, int64(120); got != want {
		t.Fatalf("objective = %v, want %v", got, want)
	}
	ls := newLocalSearch(s, []Operator{Cross}, FirstImprovement)
	if !ls.descend(context.Background()) {
		t.Fatalf("descend() = false, want true")
	}
	want := [][]int{{s.m.Start(0), n2, s.m.End(0)}, {s.m.Start(1), n1, s.m.End(1)}}
	if diff := cmp.Diff(want, s.routes); diff != "" {
		t.Errorf("routes returned with unexpected diff (-want+got);\n%s", diff)
	}
	if got, want := s.objective, int64(22); got != want {
		t.Errorf("objective = %v, want %v", got, want)
	}
}

func TestLocalSearch_StopsOnContext(t *testing.T) {
	ls := newTestLocalSearch(t, randomProblem(3, 14, 4), allOperators, FirstImprovement)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	before := ls.s.objective
	if ls.descend(ctx) {
		t.Errorf("descend() with a canceled context = true, want false")
	}
	// At most one move is applied before the context is checked.
	var moves int64
	for _, n := range ls.accepted {
		moves += n
	}
	if moves > 1 {
		t.Errorf("descend() applied %v moves after cancellation", moves)
	}
	if ls.s.objective > before {
		t.Errorf("objective %v is worse than %v", ls.s.objective, before)
	}
}
