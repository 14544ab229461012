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
	"fmt"
	"time"
)

// Status is the outcome of a solve.
type Status int

const (
	// StatusFeasible means the search reached at least one local optimum and
	// returned the best feasible solution it found.
	StatusFeasible Status = iota
	// StatusInfeasible means no first solution satisfies the hard constraints.
	StatusInfeasible
	// StatusTimedOutWithFeasible means the time limit fired after a first
	// solution was built but before local search reached a local optimum.
	StatusTimedOutWithFeasible
	// StatusTimedOutNoSolution means the time limit fired while the first
	// solution was being built.
	StatusTimedOutNoSolution
)

var statusNames = map[Status]string{
	StatusFeasible:             "FEASIBLE",
	StatusInfeasible:           "INFEASIBLE",
	StatusTimedOutWithFeasible: "TIMED_OUT_WITH_FEASIBLE",
	StatusTimedOutNoSolution:   "TIMED_OUT_NO_SOLUTION",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HasSolution reports whether a result with this status carries routes.
func (s Status) HasSolution() bool {
	return s == StatusFeasible || s == StatusTimedOutWithFeasible
}

// CumulValue is the finalized cumul of a dimension at one route position,
// together with the propagated range it was picked from.
type CumulValue struct {
	Value int64
	Min   int64
	Max   int64
}

// RouteResult describes the route of one vehicle.
type RouteResult struct {
	Vehicle int
	// Indices is the sequence of routing indices, vehicle start and end included.
	Indices []int
	// Nodes is the sequence of problem nodes matching Indices.
	Nodes []int
	// Cost is the sum of the arc costs along the route.
	Cost int64
	// Cumuls holds, per dimension name, one value per position of Indices.
	Cumuls map[string][]CumulValue
}

// IsEmpty reports whether the vehicle goes straight from its start to its end.
func (r *RouteResult) IsEmpty() bool { return len(r.Indices) <= 2 }

// Duration returns the cumul of dimension `dim` at the end of the route minus
// its cumul at the start, for instance the time spent on the route.
func (r *RouteResult) Duration(dim string) int64 {
	c := r.Cumuls[dim]
	if len(c) == 0 {
		return 0
	}
	return c[len(c)-1].Value - c[0].Value
}

// SearchStats summarizes the search.
type SearchStats struct {
	// InitialObjective is the objective of the first solution.
	InitialObjective int64
	// Cycles counts guided local search penalty cycles.
	Cycles int64
	// AcceptedMoves counts moves committed by local search, per operator.
	AcceptedMoves map[Operator]int64
	// BestObjectiveTrace lists the objective of every new best solution, in
	// the order they were found. It is strictly decreasing.
	BestObjectiveTrace []int64
}

// SolveResult is the outcome of a solve. It is a snapshot: it shares no state
// with the search that produced it.
type SolveResult struct {
	Status Status
	// Objective is the sum of the arc costs of all routes.
	Objective int64
	Routes    []RouteResult
	WallTime  time.Duration
	// Feasible reports whether every cumul lies in its range on every route.
	Feasible bool
	// Infeasibility is set when Status is StatusInfeasible.
	Infeasibility *InfeasibleError
	Stats         SearchStats
	Assignment    *Assignment
	// Worker is the parallel trial that produced the result.
	Worker int
}

// Assignment is a solution snapshot in routing index space.
type Assignment struct {
	manager   *IndexManager
	next      []int
	vehicleOf []int
	routes    [][]int
	costs     []int64
	objective int64
	cumuls    map[string][]CumulValue
}

func newAssignment(m *Model, routes [][]int, costs []int64, cumuls map[string][][]CumulValue) *Assignment {
	n := m.manager.NumIndices()
	a := &Assignment{
		manager:   m.manager,
		next:      make([]int, n),
		vehicleOf: make([]int, n),
		routes:    make([][]int, len(routes)),
		costs:     append([]int64(nil), costs...),
		cumuls:    make(map[string][]CumulValue, len(cumuls)),
	}
	for i := range a.next {
		a.next[i] = Unassigned
		a.vehicleOf[i] = Unassigned
	}
	for v, r := range routes {
		a.routes[v] = append([]int(nil), r...)
		for k, idx := range r {
			a.vehicleOf[idx] = v
			if k+1 < len(r) {
				a.next[idx] = r[k+1]
			}
		}
		a.objective += costs[v]
	}
	for name, perVehicle := range cumuls {
		values := make([]CumulValue, n)
		for v, cv := range perVehicle {
			for k, idx := range routes[v] {
				values[idx] = cv[k]
			}
		}
		a.cumuls[name] = values
	}
	return a
}

// Next returns the index following `index` on its route, or Unassigned for
// vehicle ends.
func (a *Assignment) Next(index int) int {
	a.manager.checkIndex(index)
	return a.next[index]
}

// Vehicle returns the vehicle serving `index`.
func (a *Assignment) Vehicle(index int) int {
	a.manager.checkIndex(index)
	return a.vehicleOf[index]
}

// Route returns the indices visited by vehicle `v`, start and end included.
func (a *Assignment) Route(v int) []int {
	a.manager.checkVehicle(v)
	return append([]int(nil), a.routes[v]...)
}

// RouteCost returns the cost of the route of vehicle `v`.
func (a *Assignment) RouteCost(v int) int64 {
	a.manager.checkVehicle(v)
	return a.costs[v]
}

// Objective returns the sum of the route costs.
func (a *Assignment) Objective() int64 { return a.objective }

// Cumul returns the finalized cumul of dimension `dim` at `index`.
func (a *Assignment) Cumul(dim string, index int) (CumulValue, error) {
	values, ok := a.cumuls[dim]
	if !ok {
		return CumulValue{}, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	a.manager.checkIndex(index)
	return values[index], nil
}
