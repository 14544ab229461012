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
	"testing"
)

func penalty(g *guidedLocalSearch, from, to int) int64 {
	return g.penalties[from*g.n+to]
}

func TestGuidedLocalSearch_Penalize(t *testing.T) {
	p := &Problem{
		CostMatrix: [][]int64{
			{0, 5, 20},
			{20, 0, 9},
			{3, 20, 0},
		},
		VehicleCapacities: []int64{1, 1},
	}
	s := newTestSolution(t, p)
	manager := s.m.manager
	start, n1, n2, end := s.m.Start(0), manager.NodeToIndex(1), manager.NodeToIndex(2), s.m.End(0)
	route := []int{start, n1, n2, end}
	if !s.check(0, 0, route, 0) {
		t.Fatalf("check(%v) = false, want true", route)
	}
	s.commit(0, 0, route)
	ls := newLocalSearch(s, allOperators, FirstImprovement)

	g := newGuidedLocalSearch(ls, 0.9, s.objective, usedArcs(s))
	// round(0.9 * 17 / 3)
	if got, want := g.lambda, int64(5); got != want {
		t.Errorf("lambda = %v, want %v", got, want)
	}
	if &ls.arcs[0] != &g.arcs[0] {
		t.Errorf("local search does not minimize the penalized costs")
	}

	// Utilities are 5, 9 and 3, then 5, 4.5 and 3, then 2.5, 4.5 and 3.
	for i, want := range [][2]int{{n1, n2}, {start, n1}, {n1, n2}} {
		if got := g.penalize(); got != 1 {
			t.Fatalf("penalize() #%v = %v, want 1", i, got)
		}
		if penalty(g, want[0], want[1]) == 0 {
			t.Errorf("penalize() #%v did not penalize arc %v", i, want)
		}
	}
	if got, want := penalty(g, n1, n2), int64(2); got != want {
		t.Errorf("penalty(1, 2) = %v, want %v", got, want)
	}
	if got, want := penalty(g, n2, end), int64(0); got != want {
		t.Errorf("penalty(2, end) = %v, want %v", got, want)
	}
	// 17 + 3 penalties of 5.
	if got, want := g.penalizedObjective(), int64(32); got != want {
		t.Errorf("penalizedObjective() = %v, want %v", got, want)
	}
	if got, want := s.objective, int64(17); got != want {
		t.Errorf("true objective = %v, want %v", got, want)
	}
	if got, want := s.m.ArcCost(n1, n2), int64(9); got != want {
		t.Errorf("ArcCost(1, 2) = %v, want %v", got, want)
	}
}

func TestGuidedLocalSearch_PenalizeTies(t *testing.T) {
	p := crossProblem()
	s := newTestSolution(t, p)
	manager := s.m.manager
	n1, n2 := manager.NodeToIndex(1), manager.NodeToIndex(2)
	for v, r := range [][]int{{s.m.Start(0), n1, s.m.End(0)}, {s.m.Start(1), n2, s.m.End(1)}} {
		if !s.check(0, v, r, 0) {
			t.Fatalf("check(%v) = false, want true", r)
		}
		s.commit(0, v, r)
	}
	g := newGuidedLocalSearch(newLocalSearch(s, allOperators, FirstImprovement), 0.1, s.objective, usedArcs(s))
	if got, want := g.lambda, int64(1); got != want {
		t.Errorf("lambda = %v, want %v", got, want)
	}
	// The four used arcs cost 10.
	if got := g.penalize(); got != 4 {
		t.Errorf("penalize() = %v, want 4", got)
	}
}

func TestGuidedLocalSearch_NothingToPenalize(t *testing.T) {
	s := newTestSolution(t, crossProblem())
	g := newGuidedLocalSearch(newLocalSearch(s, allOperators, FirstImprovement), 0.1, s.objective, usedArcs(s))
	if got := g.penalize(); got != 0 {
		t.Errorf("penalize() on empty routes = %v, want 0", got)
	}
}

func TestGuidedLocalSearch_LambdaFromFirstSolution(t *testing.T) {
	tests := []struct {
		coef      float64
		objective int64
		used      int
		want      int64
	}{
		{coef: 0.5, objective: 100, used: 4, want: 13},
		{coef: 0.1, objective: 300, used: 3, want: 10},
		{coef: 0.1, objective: 5, used: 5, want: 1},
		{coef: 0, objective: 100, used: 4, want: 1},
		{coef: 0.1, objective: 0, used: 0, want: 1},
	}
	for _, test := range tests {
		// The current solution has empty routes: lambda only depends on the
		// first solution it is given.
		s := newTestSolution(t, crossProblem())
		g := newGuidedLocalSearch(newLocalSearch(s, allOperators, FirstImprovement), test.coef, test.objective, test.used)
		if g.lambda != test.want {
			t.Errorf("newGuidedLocalSearch(%v, %v, %v).lambda = %v, want %v", test.coef, test.objective, test.used, g.lambda, test.want)
		}
	}
}
