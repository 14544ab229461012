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

	log "github.com/golang/glog"
)

// buildFirstSolution routes every visitable index of `s` with `strategy`.
// It returns an *InfeasibleError if some index has no feasible position, or
// the context error if `ctx` is done first. On error `s` holds the partial
// routes built so far.
func buildFirstSolution(ctx context.Context, s *solution, strategy FirstSolutionStrategy) error {
	switch strategy {
	case CheapestArcInsertion:
		return cheapestInsertion(ctx, s)
	case NearestNeighbor:
		return nearestNeighbor(ctx, s)
	}
	log.Fatalf("unknown first solution strategy %v", strategy)
	return nil
}

// insertAt writes into `buf` the route `r` with `index` inserted after
// position `pos`, and returns it.
func insertAt(buf, r []int, pos, index int) []int {
	buf = append(buf[:0], r[:pos+1]...)
	buf = append(buf, index)
	return append(buf, r[pos+1:]...)
}

func visitableIndices(manager *IndexManager) []int {
	indices := make([]int, 0, manager.NumVisitable())
	for idx := manager.NumVehicles(); idx < manager.Size(); idx++ {
		indices = append(indices, idx)
	}
	return indices
}

func newInfeasibleError(manager *IndexManager, strategy FirstSolutionStrategy, unrouted []int) *InfeasibleError {
	nodes := make([]int, len(unrouted))
	for i, idx := range unrouted {
		nodes[i] = manager.IndexToNode(idx)
	}
	return &InfeasibleError{Strategy: strategy, Unrouted: nodes}
}

type insertion struct {
	delta int64
	// pos is the route position after which the index is inserted, or
	// Unassigned if no position is feasible.
	pos int
}

// bestInsertion returns the cheapest feasible insertion of `index` in the
// route of vehicle `v`, the lowest position winning ties.
func (s *solution) bestInsertion(index, v int, buf []int) insertion {
	r := s.routes[v]
	n := s.m.n
	arcs := s.m.arcCosts
	best := insertion{pos: Unassigned}
	for j := 0; j+1 < len(r); j++ {
		delta := arcs[r[j]*n+index] + arcs[index*n+r[j+1]] - arcs[r[j]*n+r[j+1]]
		if best.pos != Unassigned && delta >= best.delta {
			continue
		}
		if s.check(0, v, insertAt(buf, r, j, index), j+1) {
			best = insertion{delta: delta, pos: j}
		}
	}
	return best
}

// cheapestInsertion repeatedly inserts the unrouted index whose cheapest
// feasible insertion over all routes and positions adds the least cost. Ties
// go to the lowest node, then the lowest vehicle, then the lowest position.
// Only the entries of the route that just changed are recomputed.
func cheapestInsertion(ctx context.Context, s *solution) error {
	manager := s.m.manager
	numVehicles := manager.NumVehicles()
	unrouted := visitableIndices(manager)
	buf := make([]int, 0, s.m.n)

	best := make([][]insertion, manager.NumIndices())
	for _, idx := range unrouted {
		if err := ctx.Err(); err != nil {
			return err
		}
		best[idx] = make([]insertion, numVehicles)
		for v := 0; v < numVehicles; v++ {
			best[idx][v] = s.bestInsertion(idx, v, buf)
		}
	}

	for len(unrouted) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		bi, bv := Unassigned, Unassigned
		for i, idx := range unrouted {
			for v, ins := range best[idx] {
				if ins.pos == Unassigned {
					continue
				}
				if bi == Unassigned || ins.delta < best[unrouted[bi]][bv].delta {
					bi, bv = i, v
				}
			}
		}
		if bi == Unassigned {
			return newInfeasibleError(manager, CheapestArcInsertion, unrouted)
		}
		idx := unrouted[bi]
		pos := best[idx][bv].pos
		route := insertAt(buf, s.routes[bv], pos, idx)
		if !s.check(0, bv, route, pos+1) {
			log.Fatalf("cached insertion of index %v after position %v of vehicle %v is infeasible", idx, pos, bv)
		}
		s.commit(0, bv, route)
		unrouted = append(unrouted[:bi], unrouted[bi+1:]...)
		for _, other := range unrouted {
			best[other][bv] = s.bestInsertion(other, bv, buf)
		}
	}
	return nil
}

// nearestNeighbor extends the route of vehicle 0 with the unrouted index
// closest to its last visit as long as one can be appended feasibly, then
// moves on to vehicle 1, and so on.
func nearestNeighbor(ctx context.Context, s *solution) error {
	manager := s.m.manager
	unrouted := visitableIndices(manager)
	buf := make([]int, 0, s.m.n)
	n := s.m.n
	arcs := s.m.arcCosts

	for v := 0; v < manager.NumVehicles() && len(unrouted) > 0; v++ {
		for len(unrouted) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := s.routes[v]
			last := len(r) - 2
			pick := Unassigned
			var pickCost int64
			for i, idx := range unrouted {
				c := arcs[r[last]*n+idx]
				if pick != Unassigned && c >= pickCost {
					continue
				}
				if s.check(0, v, insertAt(buf, r, last, idx), last+1) {
					pick, pickCost = i, c
				}
			}
			if pick == Unassigned {
				break
			}
			route := insertAt(buf, r, last, unrouted[pick])
			if !s.check(0, v, route, last+1) {
				log.Fatalf("append of index %v to vehicle %v is infeasible", unrouted[pick], v)
			}
			s.commit(0, v, route)
			unrouted = append(unrouted[:pick], unrouted[pick+1:]...)
		}
	}
	if len(unrouted) > 0 {
		return newInfeasibleError(manager, NearestNeighbor, unrouted)
	}
	return nil
}

// firstSolutionStrategies returns `configured` followed by the other
// strategies, in the order they are tried.
func firstSolutionStrategies(configured FirstSolutionStrategy) []FirstSolutionStrategy {
	strategies := []FirstSolutionStrategy{configured}
	for _, strategy := range []FirstSolutionStrategy{CheapestArcInsertion, NearestNeighbor} {
		if strategy != configured {
			strategies = append(strategies, strategy)
		}
	}
	return strategies
}
