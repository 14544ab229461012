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
	"fmt"
	"slices"
)

// Dimension names used by NewModelFromProblem.
const (
	CapacityDimension = "Capacity"
	TimeDimension     = "Time"
)

// DefaultHorizon bounds the time dimension when Problem.Horizon is zero. It
// is large enough to never constrain realistic instances.
const DefaultHorizon int64 = 1_000_000_000_000_000

// ServiceTimeConvention selects where the service time of a node is added to
// the time dimension.
type ServiceTimeConvention int

const (
	// ServiceTimeAtDeparture adds the service time of i to the transit of every
	// arc leaving i: transit(i, j) = service(i) + time(i, j). The time cumul
	// of a node is the time its service starts, which is what its time window
	// constrains.
	ServiceTimeAtDeparture ServiceTimeConvention = iota
	// ServiceTimeAtArrival adds the service time of j to the transit of every
	// arc entering j: transit(i, j) = time(i, j) + service(j). The time cumul
	// of a node is the time its service completes.
	ServiceTimeAtArrival
)

func (c ServiceTimeConvention) String() string {
	switch c {
	case ServiceTimeAtDeparture:
		return "SERVICE_TIME_AT_DEPARTURE"
	case ServiceTimeAtArrival:
		return "SERVICE_TIME_AT_ARRIVAL"
	}
	return fmt.Sprintf("ServiceTimeConvention(%d)", int(c))
}

// TimeWindow is an inclusive `[Earliest, Latest]` range.
type TimeWindow struct {
	Earliest int64
	Latest   int64
}

// Problem is a CVRPTW instance given as dense node arrays.
type Problem struct {
	// CostMatrix[i][j] is the cost of going from node i to node j.
	CostMatrix [][]int64
	// TimeMatrix[i][j] is the travel time from node i to node j. Defaults to
	// CostMatrix.
	TimeMatrix [][]int64
	// Demands[i] is the load picked up at node i. Optional.
	Demands []int64
	// TimeWindows[i] constrains the time at node i. Optional.
	TimeWindows []TimeWindow
	// ServiceTimes[i] is the time spent at node i. Optional.
	ServiceTimes []int64
	// VehicleCapacities has one entry per vehicle.
	VehicleCapacities []int64
	// Starts and Ends give the start and end node of every vehicle. Both
	// default to Depot. When both are given, Depot must be one of them.
	Starts []int
	Ends   []int
	Depot  int
	// ServiceTime selects how service times enter the time dimension.
	ServiceTime ServiceTimeConvention
	// Horizon bounds every time cumul and the waiting time on any arc.
	// Defaults to DefaultHorizon.
	Horizon int64
}

// NumNodes returns the number of nodes of the problem.
func (p *Problem) NumNodes() int { return len(p.CostMatrix) }

// NumVehicles returns the number of vehicles of the problem.
func (p *Problem) NumVehicles() int { return len(p.VehicleCapacities) }

func (p *Problem) timeMatrix() [][]int64 {
	if p.TimeMatrix != nil {
		return p.TimeMatrix
	}
	return p.CostMatrix
}

func (p *Problem) horizon() int64 {
	if p.Horizon > 0 {
		return p.Horizon
	}
	return DefaultHorizon
}

func (p *Problem) startsEnds() ([]int, []int) {
	starts, ends := p.Starts, p.Ends
	if starts == nil {
		starts = make([]int, p.NumVehicles())
		for v := range starts {
			starts[v] = p.Depot
		}
	}
	if ends == nil {
		ends = make([]int, p.NumVehicles())
		for v := range ends {
			ends[v] = p.Depot
		}
	}
	return starts, ends
}

func (p *Problem) demand(node int) int64 {
	if p.Demands == nil {
		return 0
	}
	return p.Demands[node]
}

func (p *Problem) service(node int) int64 {
	if p.ServiceTimes == nil {
		return 0
	}
	return p.ServiceTimes[node]
}

// Validate checks the problem and returns an error wrapping
// ErrInvalidConfiguration describing the first inconsistency found.
func (p *Problem) Validate() error {
	n := p.NumNodes()
	if n == 0 {
		return fmt.Errorf("%w: empty cost matrix", ErrInvalidConfiguration)
	}
	if err := validateMatrix("cost matrix", p.CostMatrix, n); err != nil {
		return err
	}
	if p.TimeMatrix != nil {
		if err := validateMatrix("time matrix", p.TimeMatrix, n); err != nil {
			return err
		}
	}
	if err := validateNodeArray("demands", p.Demands, n); err != nil {
		return err
	}
	if err := validateNodeArray("service times", p.ServiceTimes, n); err != nil {
		return err
	}
	if p.TimeWindows != nil {
		if len(p.TimeWindows) != n {
			return fmt.Errorf("%w: %v time windows for %v nodes", ErrInvalidConfiguration, len(p.TimeWindows), n)
		}
		for i, tw := range p.TimeWindows {
			if tw.Earliest > tw.Latest {
				return fmt.Errorf("%w: node %v has time window [%v,%v] with earliest > latest",
					ErrInvalidConfiguration, i, tw.Earliest, tw.Latest)
			}
		}
	}
	if p.Horizon < 0 {
		return fmt.Errorf("%w: negative horizon %v", ErrInvalidConfiguration, p.Horizon)
	}
	if p.ServiceTime != ServiceTimeAtDeparture && p.ServiceTime != ServiceTimeAtArrival {
		return fmt.Errorf("%w: unknown service time convention %v", ErrInvalidConfiguration, p.ServiceTime)
	}
	numVehicles := p.NumVehicles()
	if numVehicles == 0 {
		return fmt.Errorf("%w: no vehicle", ErrInvalidConfiguration)
	}
	for v, c := range p.VehicleCapacities {
		if c <= 0 {
			return fmt.Errorf("%w: vehicle %v has non-positive capacity %v", ErrInvalidConfiguration, v, c)
		}
	}
	if p.Depot < 0 || p.Depot >= n {
		return fmt.Errorf("%w: depot %v out of range [0, %v)", ErrInvalidConfiguration, p.Depot, n)
	}
	for _, nodes := range []struct {
		name string
		ids  []int
	}{{"starts", p.Starts}, {"ends", p.Ends}} {
		if nodes.ids == nil {
			continue
		}
		if len(nodes.ids) != numVehicles {
			return fmt.Errorf("%w: %v %v for %v vehicles", ErrInvalidConfiguration, len(nodes.ids), nodes.name, numVehicles)
		}
		for v, id := range nodes.ids {
			if id < 0 || id >= n {
				return fmt.Errorf("%w: %v of vehicle %v is node %v, out of range [0, %v)",
					ErrInvalidConfiguration, nodes.name, v, id, n)
			}
		}
	}
	// With explicit starts and ends, a depot on neither would be routed as a
	// customer.
	if p.Starts != nil && p.Ends != nil &&
		!slices.Contains(p.Starts, p.Depot) && !slices.Contains(p.Ends, p.Depot) {
		return fmt.Errorf("%w: depot %v is neither a vehicle start nor a vehicle end", ErrInvalidConfiguration, p.Depot)
	}
	return nil
}

func validateMatrix(name string, m [][]int64, n int) error {
	if len(m) != n {
		return fmt.Errorf("%w: %v has %v rows, want %v", ErrInvalidConfiguration, name, len(m), n)
	}
	for i, row := range m {
		if len(row) != n {
			return fmt.Errorf("%w: %v row %v has %v columns, want %v", ErrInvalidConfiguration, name, i, len(row), n)
		}
		for j, c := range row {
			if c < 0 {
				return fmt.Errorf("%w: %v[%v][%v] = %v is negative", ErrInvalidConfiguration, name, i, j, c)
			}
		}
		if row[i] != 0 {
			return fmt.Errorf("%w: %v[%v][%v] = %v, want 0 on the diagonal", ErrInvalidConfiguration, name, i, i, row[i])
		}
	}
	return nil
}

func validateNodeArray(name string, values []int64, n int) error {
	if values == nil {
		return nil
	}
	if len(values) != n {
		return fmt.Errorf("%w: %v %v for %v nodes", ErrInvalidConfiguration, len(values), name, n)
	}
	for i, v := range values {
		if v < 0 {
			return fmt.Errorf("%w: node %v has negative %v %v", ErrInvalidConfiguration, i, name, v)
		}
	}
	return nil
}

// NewModelFromProblem validates `p` and builds the CVRPTW model: arc costs
// from the cost matrix, a "Capacity" dimension accumulating demands with no
// slack and a start cumul fixed to zero, and a "Time" dimension accumulating
// travel and service times with waiting allowed up to the horizon. Every
// node's time window is set on its visit index and on the vehicle starts and
// ends located there. The time cumuls of route starts and ends are minimized
// by the finalizer, which yields the earliest schedules.
func NewModelFromProblem(p *Problem) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	starts, ends := p.startsEnds()
	manager := NewIndexManagerWithStartsEnds(p.NumNodes(), starts, ends)
	m := NewModel(manager)

	cost := p.CostMatrix
	costCallback := m.RegisterTransitCallback(func(from, to int) int64 {
		return cost[manager.IndexToNode(from)][manager.IndexToNode(to)]
	})
	if err := m.SetArcCostEvaluatorOfAllVehicles(costCallback); err != nil {
		return nil, err
	}

	demandCallback := m.RegisterUnaryTransitCallback(func(from int) int64 {
		return p.demand(manager.IndexToNode(from))
	})
	if _, err := m.AddDimensionWithVehicleCapacity(demandCallback, 0, p.VehicleCapacities, true, CapacityDimension); err != nil {
		return nil, err
	}

	travel := p.timeMatrix()
	var timeCallback int
	switch p.ServiceTime {
	case ServiceTimeAtDeparture:
		timeCallback = m.RegisterTransitCallback(func(from, to int) int64 {
			i, j := manager.IndexToNode(from), manager.IndexToNode(to)
			return p.service(i) + travel[i][j]
		})
	case ServiceTimeAtArrival:
		timeCallback = m.RegisterTransitCallback(func(from, to int) int64 {
			i, j := manager.IndexToNode(from), manager.IndexToNode(to)
			return travel[i][j] + p.service(j)
		})
	}
	horizon := p.horizon()
	timeDim, err := m.AddDimension(timeCallback, horizon, horizon, false, TimeDimension)
	if err != nil {
		return nil, err
	}
	if p.TimeWindows != nil {
		for index := 0; index < manager.NumIndices(); index++ {
			tw := p.TimeWindows[manager.IndexToNode(index)]
			if err := timeDim.SetCumulVarRange(index, tw.Earliest, tw.Latest); err != nil {
				return nil, err
			}
		}
	}
	for v := 0; v < manager.NumVehicles(); v++ {
		if err := m.AddVariableMinimizedByFinalizer(timeDim, m.Start(v)); err != nil {
			return nil, err
		}
		if err := m.AddVariableMinimizedByFinalizer(timeDim, m.End(v)); err != nil {
			return nil, err
		}
	}
	if err := m.CloseModel(); err != nil {
		return nil, err
	}
	return m, nil
}

// Solve builds the model of `p` and solves it with `params`. The returned
// error is non-nil only when the problem or the parameters are rejected;
// an instance without feasible solution yields a result with status
// StatusInfeasible.
func Solve(ctx context.Context, p *Problem, params *SearchParameters, opts ...SolveOption) (*SolveResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	m, err := NewModelFromProblem(p)
	if err != nil {
		return nil, err
	}
	return m.SolveWithParameters(ctx, params, opts...)
}
