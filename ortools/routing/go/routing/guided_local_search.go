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
	"math"
)

// guidedLocalSearch penalizes the arcs of local optima. The local search it
// wraps minimizes `cost(i,j) + lambda * penalty(i,j)`; the true cost of the
// solution is tracked by the solution itself.
type guidedLocalSearch struct {
	ls        *localSearch
	n         int
	base      []int64
	arcs      []int64
	penalties []int64
	lambda    int64
}

// newGuidedLocalSearch derives lambda from the first solution, of cost
// `objective` over `used` arcs: `coef` times its average arc cost, at least 1.
// From then on `ls` minimizes the penalized costs.
func newGuidedLocalSearch(ls *localSearch, coef float64, objective int64, used int) *guidedLocalSearch {
	m := ls.s.m
	g := &guidedLocalSearch{
		ls:        ls,
		n:         m.n,
		base:      m.arcCosts,
		arcs:      append([]int64(nil), m.arcCosts...),
		penalties: make([]int64, len(m.arcCosts)),
		lambda:    1,
	}
	if used > 0 {
		g.lambda = max(1, int64(math.Round(coef*float64(objective)/float64(used))))
	}
	ls.arcs = g.arcs
	return g
}

// usedArcs returns the number of arcs of the non-empty routes of `s`.
func usedArcs(s *solution) int {
	used := 0
	for _, r := range s.routes {
		if len(r) > 2 {
			used += len(r) - 1
		}
	}
	return used
}

// penalize increments by one the penalty of every used arc of maximal utility
// `cost / (1 + penalty)`, and returns the number of arcs penalized. Arcs of
// empty routes are never penalized; if every route is empty it returns 0.
func (g *guidedLocalSearch) penalize() int {
	bestUtility := -1.0
	var selected []int
	for _, r := range g.ls.s.routes {
		if len(r) <= 2 {
			continue
		}
		for k := 0; k+1 < len(r); k++ {
			a := r[k]*g.n + r[k+1]
			u := float64(g.base[a]) / float64(1+g.penalties[a])
			switch {
			case u > bestUtility:
				bestUtility = u
				selected = append(selected[:0], a)
			case u == bestUtility:
				selected = append(selected, a)
			}
		}
	}
	for _, a := range selected {
		g.penalties[a]++
		g.arcs[a] = CapAdd(g.base[a], g.lambda*g.penalties[a])
	}
	return len(selected)
}

// penalizedObjective returns the cost of the current solution under the
// penalized arc costs.
func (g *guidedLocalSearch) penalizedObjective() int64 {
	var total int64
	for _, r := range g.ls.s.routes {
		for k := 0; k+1 < len(r); k++ {
			total += g.arcs[r[k]*g.n+r[k+1]]
		}
	}
	return total
}
