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
	log "github.com/golang/glog"
)

// solution is the mutable state of one search: a route per vehicle and, for
// every dimension, the forward propagated cumul ranges along each route.
//
// Routes are only changed through check followed by commit: check propagates
// a candidate route into a scratch slot, commit replaces the route and its
// ranges with the candidate and the slot content.
type solution struct {
	m      *Model
	routes [][]int
	// mins[d][v][k] and maxs[d][v][k] bound the cumul of dimension d at
	// position k of the route of vehicle v.
	mins [][][]int64
	maxs [][][]int64
	// costs[v] is the true cost of the route of vehicle v.
	costs     []int64
	objective int64

	scratchMins [2][][]int64
	scratchMaxs [2][][]int64
}

// newSolution returns a solution where every vehicle goes straight from its
// start to its end. It reports false if one of these empty routes violates a
// dimension.
func newSolution(m *Model) (*solution, bool) {
	numVehicles := m.NumVehicles()
	numDims := len(m.dimensions)
	s := &solution{
		m:      m,
		routes: make([][]int, numVehicles),
		mins:   make([][][]int64, numDims),
		maxs:   make([][][]int64, numDims),
		costs:  make([]int64, numVehicles),
	}
	for slot := range s.scratchMins {
		s.scratchMins[slot] = make([][]int64, numDims)
		s.scratchMaxs[slot] = make([][]int64, numDims)
		for d := 0; d < numDims; d++ {
			s.scratchMins[slot][d] = make([]int64, m.n)
			s.scratchMaxs[slot][d] = make([]int64, m.n)
		}
	}
	for d := 0; d < numDims; d++ {
		s.mins[d] = make([][]int64, numVehicles)
		s.maxs[d] = make([][]int64, numVehicles)
	}
	feasible := true
	for v := 0; v < numVehicles; v++ {
		route := []int{m.Start(v), m.End(v)}
		if !s.check(0, v, route, 0) {
			feasible = false
			s.routes[v] = route
			continue
		}
		s.commit(0, v, route)
	}
	return s, feasible
}

// check propagates every dimension along `route`, a candidate for vehicle
// `v` sharing its first `from` positions with the current route of `v`, and
// leaves the ranges in scratch slot `slot`. It reports whether the candidate
// is feasible.
func (s *solution) check(slot, v int, route []int, from int) bool {
	for d, dim := range s.m.dimensions {
		mins := s.scratchMins[slot][d][:len(route)]
		maxs := s.scratchMaxs[slot][d][:len(route)]
		copy(mins[:from], s.mins[d][v][:from])
		copy(maxs[:from], s.maxs[d][v][:from])
		if dim.forwardFrom(v, route, from, mins, maxs) >= 0 {
			return false
		}
	}
	return true
}

// commit replaces the route of vehicle `v` with `route`, whose ranges were
// left in scratch slot `slot` by a successful check.
func (s *solution) commit(slot, v int, route []int) {
	s.routes[v] = append([]int(nil), route...)
	for d := range s.m.dimensions {
		s.mins[d][v] = append([]int64(nil), s.scratchMins[slot][d][:len(route)]...)
		s.maxs[d][v] = append([]int64(nil), s.scratchMaxs[slot][d][:len(route)]...)
	}
	c := s.m.routeCost(route)
	s.objective += c - s.costs[v]
	s.costs[v] = c
}

// usedVehicles returns the number of non-empty routes.
func (s *solution) usedVehicles() int {
	used := 0
	for _, r := range s.routes {
		if len(r) > 2 {
			used++
		}
	}
	return used
}

// snapshot returns a deep copy of the routes and route costs.
func (s *solution) snapshot() ([][]int, []int64) {
	routes := make([][]int, len(s.routes))
	for v, r := range s.routes {
		routes[v] = append([]int(nil), r...)
	}
	return routes, append([]int64(nil), s.costs...)
}

// checkPartition fails if `routes` is not a partition of the visitable
// indices into vehicle paths. With `complete` unset, indices missing from
// every route are tolerated.
func checkPartition(manager *IndexManager, routes [][]int, complete bool) {
	seen := make([]int, manager.NumIndices())
	for i := range seen {
		seen[i] = Unassigned
	}
	for v, r := range routes {
		if len(r) < 2 || r[0] != manager.StartIndex(v) || r[len(r)-1] != manager.EndIndex(v) {
			log.Fatalf("route of vehicle %v does not go from its start to its end: %v", v, r)
		}
		for _, idx := range r[1 : len(r)-1] {
			if !manager.isVisitable(idx) {
				log.Fatalf("route of vehicle %v visits start or end index %v: %v", v, idx, r)
			}
			if seen[idx] != Unassigned {
				log.Fatalf("index %v is routed by vehicles %v and %v", idx, seen[idx], v)
			}
			seen[idx] = v
		}
	}
	if !complete {
		return
	}
	for idx := manager.NumVehicles(); idx < manager.Size(); idx++ {
		if seen[idx] == Unassigned {
			log.Fatalf("index %v (node %v) is not routed", idx, manager.IndexToNode(idx))
		}
	}
}
