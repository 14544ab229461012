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

// Package routing offers a vehicle routing engine for capacitated problems
// with time windows (CVRPTW).
//
// The `IndexManager` maps problem nodes to routing indices, one start and one
// end index per vehicle.
// The `Model` holds the arc cost evaluator and the `Dimension`s, cumulative
// quantities such as load or time accumulated along each route through a
// transit callback and bounded per index by a cumul range.
// `SolveWithParameters` builds a first solution, improves it by local search
// and, by default, keeps improving it with guided local search until the time
// limit fires.
// `Problem` and `Solve` cover the common case where the instance is given as a
// cost matrix plus demand, time window and service time arrays.
package routing

import (
	"fmt"

	log "github.com/golang/glog"
)

// TransitCallback returns the quantity accumulated traversing the arc between
// two routing indices.
type TransitCallback func(fromIndex, toIndex int) int64

// UnaryTransitCallback returns the quantity accumulated when leaving a routing
// index, whatever the next index is.
type UnaryTransitCallback func(fromIndex int) int64

type callback struct {
	binary TransitCallback
	unary  UnaryTransitCallback
}

func (c callback) eval(from, to int) int64 {
	if c.unary != nil {
		return c.unary(from)
	}
	return c.binary(from, to)
}

// Model is a routing model: an index manager, an arc cost evaluator and a set
// of dimensions. A Model is built once, closed, then solved; it is read-only
// during the search and may be shared by concurrent searches.
type Model struct {
	manager      *IndexManager
	callbacks    []callback
	costCallback int

	dimensions     []*Dimension
	dimensionIndex map[string]int

	closed bool
	// n is the number of indices; arcCosts[i*n+j] caches the cost of arc i->j.
	n        int
	arcCosts []int64
}

// NewModel creates an empty model on top of `manager`.
func NewModel(manager *IndexManager) *Model {
	return &Model{
		manager:        manager,
		costCallback:   Unassigned,
		dimensionIndex: map[string]int{},
	}
}

// Manager returns the index manager of the model.
func (m *Model) Manager() *IndexManager { return m.manager }

// RegisterTransitCallback registers `cb` and returns its index.
func (m *Model) RegisterTransitCallback(cb TransitCallback) int {
	m.callbacks = append(m.callbacks, callback{binary: cb})
	return len(m.callbacks) - 1
}

// RegisterUnaryTransitCallback registers `cb` and returns its index.
func (m *Model) RegisterUnaryTransitCallback(cb UnaryTransitCallback) int {
	m.callbacks = append(m.callbacks, callback{unary: cb})
	return len(m.callbacks) - 1
}

func (m *Model) checkCallback(cb int) {
	if cb < 0 || cb >= len(m.callbacks) {
		log.Fatalf("unknown transit callback %v, %v registered", cb, len(m.callbacks))
	}
}

// SetArcCostEvaluatorOfAllVehicles sets the callback defining the cost of each
// arc. Without an evaluator every arc costs zero.
func (m *Model) SetArcCostEvaluatorOfAllVehicles(cb int) error {
	if m.closed {
		return ErrModelClosed
	}
	m.checkCallback(cb)
	m.costCallback = cb
	return nil
}

// AddDimension adds a dimension where every vehicle has the same `capacity`.
func (m *Model) AddDimension(cb int, slackMax, capacity int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	capacities := make([]int64, m.manager.NumVehicles())
	for v := range capacities {
		capacities[v] = capacity
	}
	return m.AddDimensionWithVehicleCapacity(cb, slackMax, capacities, fixStartCumulToZero, name)
}

// AddDimensionWithVehicleCapacity adds a dimension named `name`. The cumul of
// the index following `i` on a route lies between `cumul(i) + transit(i, next)`
// and that value plus `slackMax`. Every cumul of vehicle v lies in
// `[0, capacities[v]]`. If `fixStartCumulToZero` is set, the cumul of each
// vehicle start is zero.
func (m *Model) AddDimensionWithVehicleCapacity(cb int, slackMax int64, capacities []int64, fixStartCumulToZero bool, name string) (*Dimension, error) {
	if m.closed {
		return nil, ErrModelClosed
	}
	m.checkCallback(cb)
	if _, ok := m.dimensionIndex[name]; ok {
		return nil, fmt.Errorf("%w: dimension %q already exists", ErrInvalidConfiguration, name)
	}
	if len(capacities) != m.manager.NumVehicles() {
		return nil, fmt.Errorf("%w: dimension %q has %v capacities for %v vehicles",
			ErrInvalidConfiguration, name, len(capacities), m.manager.NumVehicles())
	}
	if slackMax < 0 {
		return nil, fmt.Errorf("%w: dimension %q has negative slack %v", ErrInvalidConfiguration, name, slackMax)
	}
	for v, c := range capacities {
		if c < 0 {
			return nil, fmt.Errorf("%w: dimension %q has negative capacity %v for vehicle %v",
				ErrInvalidConfiguration, name, c, v)
		}
	}
	d := newDimension(m, name, cb, slackMax, capacities, fixStartCumulToZero)
	m.dimensionIndex[name] = len(m.dimensions)
	m.dimensions = append(m.dimensions, d)
	return d, nil
}

// Dimensions returns the dimensions in registration order.
func (m *Model) Dimensions() []*Dimension {
	return append([]*Dimension(nil), m.dimensions...)
}

// Dimension returns the dimension named `name`.
func (m *Model) Dimension(name string) (*Dimension, error) {
	i, ok := m.dimensionIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return m.dimensions[i], nil
}

// DimensionOrDie returns the dimension named `name` and fails if it does not
// exist.
func (m *Model) DimensionOrDie(name string) *Dimension {
	d, err := m.Dimension(name)
	if err != nil {
		log.Fatalf("DimensionOrDie(%q): %v", name, err)
	}
	return d
}

// AddVariableMinimizedByFinalizer asks the finalizer to assign the smallest
// feasible value to the cumul of `dim` at `index`.
func (m *Model) AddVariableMinimizedByFinalizer(dim *Dimension, index int) error {
	return m.addFinalizer(dim, index, finalizeMin)
}

// AddVariableMaximizedByFinalizer asks the finalizer to assign the largest
// feasible value to the cumul of `dim` at `index`.
func (m *Model) AddVariableMaximizedByFinalizer(dim *Dimension, index int) error {
	return m.addFinalizer(dim, index, finalizeMax)
}

func (m *Model) addFinalizer(dim *Dimension, index int, kind finalizeKind) error {
	if m.closed {
		return ErrModelClosed
	}
	if dim.model != m {
		return fmt.Errorf("%w: dimension %q belongs to another model", ErrInvalidConfiguration, dim.name)
	}
	m.manager.checkIndex(index)
	dim.finalizers[index] = kind
	return nil
}

// Start returns the start index of vehicle `v`.
func (m *Model) Start(v int) int { return m.manager.StartIndex(v) }

// End returns the end index of vehicle `v`.
func (m *Model) End(v int) int { return m.manager.EndIndex(v) }

// IsStart reports whether `index` is a vehicle start.
func (m *Model) IsStart(index int) bool { return m.manager.IsStart(index) }

// IsEnd reports whether `index` is a vehicle end.
func (m *Model) IsEnd(index int) bool { return m.manager.IsEnd(index) }

// NumVehicles returns the number of vehicles.
func (m *Model) NumVehicles() int { return m.manager.NumVehicles() }

// CloseModel evaluates every callback once and caches the results in dense
// index matrices. The model cannot be modified afterwards. Calling it several
// times has no effect.
func (m *Model) CloseModel() error {
	if m.closed {
		return nil
	}
	n := m.manager.NumIndices()
	arcCosts := make([]int64, n*n)
	if m.costCallback != Unassigned {
		cb := m.callbacks[m.costCallback]
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				c := cb.eval(i, j)
				if c < 0 {
					return fmt.Errorf("%w: arc %v->%v has negative cost %v", ErrInvalidConfiguration, i, j, c)
				}
				arcCosts[i*n+j] = c
			}
		}
	}
	// An unused vehicle goes straight from its start to its end for free.
	for v := 0; v < m.manager.NumVehicles(); v++ {
		arcCosts[m.manager.StartIndex(v)*n+m.manager.EndIndex(v)] = 0
	}
	for _, d := range m.dimensions {
		d.cacheTransits(n)
	}
	m.n = n
	m.arcCosts = arcCosts
	m.closed = true
	return nil
}

// ArcCost returns the cost of the arc `from -> to`. The model must be closed.
func (m *Model) ArcCost(from, to int) int64 {
	if !m.closed {
		log.Fatalf("ArcCost called before CloseModel")
	}
	return m.arcCosts[from*m.n+to]
}

// routeCost returns the sum of the arc costs along `route`.
func (m *Model) routeCost(route []int) int64 {
	var c int64
	for k := 1; k < len(route); k++ {
		c += m.arcCosts[route[k-1]*m.n+route[k]]
	}
	return c
}
