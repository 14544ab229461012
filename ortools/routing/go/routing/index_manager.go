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

// Unassigned is returned by lookups that have no corresponding index.
const Unassigned = -1

// IndexManager maps problem nodes to routing indices. A depot shared by
// several vehicles is a single node but owns one start (and one end) index per
// vehicle.
//
// Indices are laid out as follows:
//   - `[0, V)`: the start of vehicle v is index v,
//   - `[V, V+K)`: the K visitable nodes (nodes that are neither a start nor an
//     end), in increasing node order,
//   - `[V+K, 2V+K)`: the end of vehicle v is index V+K+v.
//
// Indices below Size() have a successor in a route; end indices do not.
type IndexManager struct {
	numNodes    int
	numVehicles int
	starts      []int
	ends        []int

	indexToNode []int
	nodeToIndex []int
	// vehicleOf holds the vehicle owning a start or end index, Unassigned for
	// visitable indices.
	vehicleOf  []int
	numVisited int
}

// NewIndexManager creates a manager where every vehicle starts and ends at
// `depot`.
func NewIndexManager(numNodes, numVehicles, depot int) *IndexManager {
	starts := make([]int, numVehicles)
	ends := make([]int, numVehicles)
	for v := range starts {
		starts[v] = depot
		ends[v] = depot
	}
	return NewIndexManagerWithStartsEnds(numNodes, starts, ends)
}

// NewIndexManagerWithStartsEnds creates a manager where vehicle v starts at
// node `starts[v]` and ends at node `ends[v]`.
func NewIndexManagerWithStartsEnds(numNodes int, starts, ends []int) *IndexManager {
	if len(starts) != len(ends) {
		log.Fatalf("starts and ends must be the same length: %v != %v", len(starts), len(ends))
	}
	if len(starts) == 0 {
		log.Fatalf("at least one vehicle is required")
	}
	numVehicles := len(starts)
	isDepot := make([]bool, numNodes)
	for v := 0; v < numVehicles; v++ {
		for _, n := range []int{starts[v], ends[v]} {
			if n < 0 || n >= numNodes {
				log.Fatalf("vehicle %v uses node %v, want node in [0, %v)", v, n, numNodes)
			}
			isDepot[n] = true
		}
	}

	m := &IndexManager{
		numNodes:    numNodes,
		numVehicles: numVehicles,
		starts:      append([]int(nil), starts...),
		ends:        append([]int(nil), ends...),
		nodeToIndex: make([]int, numNodes),
	}
	for n := range m.nodeToIndex {
		m.nodeToIndex[n] = Unassigned
	}
	for v := 0; v < numVehicles; v++ {
		m.indexToNode = append(m.indexToNode, starts[v])
		m.vehicleOf = append(m.vehicleOf, v)
		if m.nodeToIndex[starts[v]] == Unassigned {
			m.nodeToIndex[starts[v]] = v
		}
	}
	for n := 0; n < numNodes; n++ {
		if isDepot[n] {
			continue
		}
		m.nodeToIndex[n] = len(m.indexToNode)
		m.indexToNode = append(m.indexToNode, n)
		m.vehicleOf = append(m.vehicleOf, Unassigned)
		m.numVisited++
	}
	for v := 0; v < numVehicles; v++ {
		idx := len(m.indexToNode)
		m.indexToNode = append(m.indexToNode, ends[v])
		m.vehicleOf = append(m.vehicleOf, v)
		if m.nodeToIndex[ends[v]] == Unassigned {
			m.nodeToIndex[ends[v]] = idx
		}
	}
	return m
}

// NumNodes returns the number of problem nodes.
func (m *IndexManager) NumNodes() int { return m.numNodes }

// NumVehicles returns the number of vehicles.
func (m *IndexManager) NumVehicles() int { return m.numVehicles }

// NumIndices returns the total number of routing indices, end indices included.
func (m *IndexManager) NumIndices() int { return len(m.indexToNode) }

// Size returns the number of indices that have a successor (all but the ends).
func (m *IndexManager) Size() int { return m.numVehicles + m.numVisited }

// NumVisitable returns the number of nodes that must be visited by some route.
func (m *IndexManager) NumVisitable() int { return m.numVisited }

// NodeToIndex returns the index of `node`. For a node used as a start, this is
// the start index of the lowest vehicle starting there; use StartIndex or
// EndIndex to get the index of a specific vehicle.
func (m *IndexManager) NodeToIndex(node int) int {
	if node < 0 || node >= m.numNodes {
		log.Fatalf("NodeToIndex(%v): node out of range [0, %v)", node, m.numNodes)
	}
	return m.nodeToIndex[node]
}

// IndexToNode returns the problem node visited at `index`.
func (m *IndexManager) IndexToNode(index int) int {
	m.checkIndex(index)
	return m.indexToNode[index]
}

// StartIndex returns the start index of vehicle `v`.
func (m *IndexManager) StartIndex(v int) int {
	m.checkVehicle(v)
	return v
}

// EndIndex returns the end index of vehicle `v`.
func (m *IndexManager) EndIndex(v int) int {
	m.checkVehicle(v)
	return m.numVehicles + m.numVisited + v
}

// IsStart reports whether `index` is the start of a vehicle.
func (m *IndexManager) IsStart(index int) bool {
	m.checkIndex(index)
	return index < m.numVehicles
}

// IsEnd reports whether `index` is the end of a vehicle.
func (m *IndexManager) IsEnd(index int) bool {
	m.checkIndex(index)
	return index >= m.Size()
}

// VehicleOfStartOrEnd returns the vehicle owning a start or end index, and
// Unassigned for visitable indices.
func (m *IndexManager) VehicleOfStartOrEnd(index int) int {
	m.checkIndex(index)
	return m.vehicleOf[index]
}

// isVisitable reports whether `index` must be visited by some route.
func (m *IndexManager) isVisitable(index int) bool {
	return index >= m.numVehicles && index < m.Size()
}

func (m *IndexManager) checkIndex(index int) {
	if index < 0 || index >= len(m.indexToNode) {
		log.Fatalf("index %v out of range [0, %v)", index, len(m.indexToNode))
	}
}

func (m *IndexManager) checkVehicle(v int) {
	if v < 0 || v >= m.numVehicles {
		log.Fatalf("vehicle %v out of range [0, %v)", v, m.numVehicles)
	}
}
