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

	"github.com/google/go-cmp/cmp"
)

func TestIndexManager_SingleDepot(t *testing.T) {
	m := NewIndexManager(5, 2, 0)

	if got, want := m.NumIndices(), 8; got != want {
		t.Errorf("NumIndices() = %v, want %v", got, want)
	}
	if got, want := m.Size(), 6; got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}
	if got, want := m.NumVisitable(), 4; got != want {
		t.Errorf("NumVisitable() = %v, want %v", got, want)
	}

	var gotNodes []int
	for i := 0; i < m.NumIndices(); i++ {
		gotNodes = append(gotNodes, m.IndexToNode(i))
	}
	wantNodes := []int{0, 0, 1, 2, 3, 4, 0, 0}
	if diff := cmp.Diff(wantNodes, gotNodes); diff != "" {
		t.Errorf("IndexToNode() returned with unexpected diff (-want+got);\n%s", diff)
	}

	if got, want := m.NodeToIndex(0), 0; got != want {
		t.Errorf("NodeToIndex(depot) = %v, want %v", got, want)
	}
	if got, want := m.NodeToIndex(3), 4; got != want {
		t.Errorf("NodeToIndex(3) = %v, want %v", got, want)
	}
	for v, want := range []struct{ start, end int }{{0, 6}, {1, 7}} {
		if got := m.StartIndex(v); got != want.start {
			t.Errorf("StartIndex(%v) = %v, want %v", v, got, want.start)
		}
		if got := m.EndIndex(v); got != want.end {
			t.Errorf("EndIndex(%v) = %v, want %v", v, got, want.end)
		}
		if !m.IsStart(want.start) || m.IsEnd(want.start) {
			t.Errorf("IsStart/IsEnd(%v) = %v/%v, want true/false", want.start, m.IsStart(want.start), m.IsEnd(want.start))
		}
		if !m.IsEnd(want.end) || m.IsStart(want.end) {
			t.Errorf("IsEnd/IsStart(%v) = %v/%v, want true/false", want.end, m.IsEnd(want.end), m.IsStart(want.end))
		}
		if got := m.VehicleOfStartOrEnd(want.end); got != v {
			t.Errorf("VehicleOfStartOrEnd(%v) = %v, want %v", want.end, got, v)
		}
	}
	if got := m.VehicleOfStartOrEnd(3); got != Unassigned {
		t.Errorf("VehicleOfStartOrEnd(3) = %v, want Unassigned", got)
	}
}

func TestIndexManager_DistinctStartsEnds(t *testing.T) {
	// Vehicle 0 goes 0 -> 4, vehicle 1 goes 1 -> 1.
	m := NewIndexManagerWithStartsEnds(6, []int{0, 1}, []int{4, 1})

	if got, want := m.NumVisitable(), 3; got != want {
		t.Errorf("NumVisitable() = %v, want %v", got, want)
	}
	var gotNodes []int
	for i := 0; i < m.NumIndices(); i++ {
		gotNodes = append(gotNodes, m.IndexToNode(i))
	}
	wantNodes := []int{0, 1, 2, 3, 5, 4, 1}
	if diff := cmp.Diff(wantNodes, gotNodes); diff != "" {
		t.Errorf("IndexToNode() returned with unexpected diff (-want+got);\n%s", diff)
	}
	// Node 4 is only an end: NodeToIndex falls back to the end index.
	if got, want := m.NodeToIndex(4), m.EndIndex(0); got != want {
		t.Errorf("NodeToIndex(4) = %v, want %v", got, want)
	}
	if got, want := m.NodeToIndex(1), m.StartIndex(1); got != want {
		t.Errorf("NodeToIndex(1) = %v, want %v", got, want)
	}
	if got, want := m.NodeToIndex(5), 4; got != want {
		t.Errorf("NodeToIndex(5) = %v, want %v", got, want)
	}
}
