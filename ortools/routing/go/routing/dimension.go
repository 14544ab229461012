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

	log "github.com/golang/glog"
)

type finalizeKind int8

const (
	finalizeNone finalizeKind = iota
	finalizeMin
	finalizeMax
)

// Dimension is a quantity accumulated along routes, such as the load of a
// vehicle or the time at which it reaches each visit. Every index of a route
// owns a cumul variable whose range is narrowed by propagation.
type Dimension struct {
	name                string
	model               *Model
	callback            int
	slackMax            int64
	capacities          []int64
	fixStartCumulToZero bool

	cumulRanges []Interval
	finalizers  []finalizeKind

	// transits[i*n+j] caches the transit of arc i->j once the model is closed.
	n        int
	transits []int64
}

func newDimension(m *Model, name string, cb int, slackMax int64, capacities []int64, fixStartCumulToZero bool) *Dimension {
	n := m.manager.NumIndices()
	d := &Dimension{
		name:                name,
		model:               m,
		callback:            cb,
		slackMax:            slackMax,
		capacities:          append([]int64(nil), capacities...),
		fixStartCumulToZero: fixStartCumulToZero,
		cumulRanges:         make([]Interval, n),
		finalizers:          make([]finalizeKind, n),
	}
	for i := range d.cumulRanges {
		d.cumulRanges[i] = fullInterval
	}
	return d
}

// Name returns the name of the dimension.
func (d *Dimension) Name() string { return d.name }

// SlackMax returns the largest amount that may be accumulated on an arc on top
// of its transit.
func (d *Dimension) SlackMax() int64 { return d.slackMax }

// VehicleCapacity returns the upper bound of every cumul of vehicle `v`.
func (d *Dimension) VehicleCapacity(v int) int64 { return d.capacities[v] }

// FixStartCumulToZero reports whether vehicle starts have a zero cumul.
func (d *Dimension) FixStartCumulToZero() bool { return d.fixStartCumulToZero }

// SetCumulVarRange restricts the cumul at `index` to `[lo,hi]`. Successive
// calls narrow the range: it is intersected with the current one.
func (d *Dimension) SetCumulVarRange(index int, lo, hi int64) error {
	if d.model.closed {
		return ErrModelClosed
	}
	d.model.manager.checkIndex(index)
	if lo > hi {
		return fmt.Errorf("%w: dimension %q: empty range [%v,%v] at index %v", ErrInvalidConfiguration, d.name, lo, hi, index)
	}
	r := d.cumulRanges[index].Intersect(Interval{lo, hi})
	if r.IsEmpty() {
		return fmt.Errorf("%w: dimension %q: range [%v,%v] at index %v does not intersect %v",
			ErrInvalidConfiguration, d.name, lo, hi, index, d.cumulRanges[index])
	}
	d.cumulRanges[index] = r
	return nil
}

// CumulVarRange returns the range set on the cumul at `index`.
func (d *Dimension) CumulVarRange(index int) Interval {
	d.model.manager.checkIndex(index)
	return d.cumulRanges[index]
}

// Transit returns the quantity accumulated on the arc `from -> to`.
func (d *Dimension) Transit(from, to int) int64 {
	if d.transits != nil {
		return d.transits[from*d.n+to]
	}
	return d.model.callbacks[d.callback].eval(from, to)
}

func (d *Dimension) cacheTransits(n int) {
	cb := d.model.callbacks[d.callback]
	d.transits = make([]int64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.transits[i*n+j] = cb.eval(i, j)
		}
	}
	d.n = n
}

// Propagate computes the tightest cumul range at every position of `route`,
// a sequence of indices served by vehicle `v` starting at its start and ending
// at its end. It returns a *PropagationError naming the first position whose
// range is empty.
func (d *Dimension) Propagate(v int, route []int) ([]Interval, error) {
	mins := make([]int64, len(route))
	maxs := make([]int64, len(route))
	if pos := d.forward(v, route, mins, maxs); pos >= 0 {
		return nil, &PropagationError{Dimension: d.name, Vehicle: v, Position: pos, Index: route[pos]}
	}
	d.backward(route, mins, maxs)
	out := make([]Interval, len(route))
	for k := range route {
		out[k] = Interval{mins[k], maxs[k]}
	}
	return out, nil
}

// forward propagates ranges from the start of the route towards its end:
//
//	min[k] = max(window_min[k], min[k-1] + transit(k-1, k))
//	max[k] = min(window_max[k], max[k-1] + transit(k-1, k) + slack)
//
// where every window is intersected with `[0, capacity(v)]`. It returns the
// first position whose range is empty, or -1. On a chain this pass alone
// decides feasibility.
func (d *Dimension) forward(v int, route []int, mins, maxs []int64) int {
	return d.forwardFrom(v, route, 0, mins, maxs)
}

// forwardFrom is forward where positions before `from` already hold
// propagated ranges.
func (d *Dimension) forwardFrom(v int, route []int, from int, mins, maxs []int64) int {
	capacity := d.capacities[v]
	for k := from; k < len(route); k++ {
		idx := route[k]
		r := d.cumulRanges[idx]
		lo, hi := max(r.Min, 0), min(r.Max, capacity)
		if k == 0 {
			if d.fixStartCumulToZero {
				lo, hi = max(lo, 0), min(hi, 0)
			}
		} else {
			t := d.Transit(route[k-1], idx)
			lo = max(lo, CapAdd(mins[k-1], t))
			hi = min(hi, CapAdd(CapAdd(maxs[k-1], t), d.slackMax))
		}
		mins[k], maxs[k] = lo, hi
		if lo > hi {
			return k
		}
	}
	return -1
}

// backward tightens forward ranges from the end of the route towards its
// start so that every value left in a range has a support on both sides.
func (d *Dimension) backward(route []int, mins, maxs []int64) {
	for k := len(route) - 1; k > 0; k-- {
		t := d.Transit(route[k-1], route[k])
		maxs[k-1] = min(maxs[k-1], CapSub(maxs[k], t))
		mins[k-1] = max(mins[k-1], CapSub(CapSub(mins[k], t), d.slackMax))
	}
}

// finalize picks one value per position from tight ranges: the largest
// supported value where a maximizing finalizer is registered, the smallest
// otherwise, which yields the earliest schedule.
func (d *Dimension) finalize(route []int, mins, maxs, values []int64) {
	for k, idx := range route {
		lo, hi := mins[k], maxs[k]
		if k > 0 {
			t := d.Transit(route[k-1], idx)
			lo = max(lo, CapAdd(values[k-1], t))
			hi = min(hi, CapAdd(CapAdd(values[k-1], t), d.slackMax))
		}
		if lo > hi {
			log.Fatalf("dimension %q: no supported value at position %v of route %v", d.name, k, route)
		}
		if d.finalizers[idx] == finalizeMax {
			values[k] = hi
		} else {
			values[k] = lo
		}
	}
}

// schedule propagates `route` in both directions and finalizes its values.
// It reports false if the route is infeasible for this dimension.
func (d *Dimension) schedule(v int, route []int) ([]CumulValue, bool) {
	mins := make([]int64, len(route))
	maxs := make([]int64, len(route))
	if d.forward(v, route, mins, maxs) >= 0 {
		return nil, false
	}
	d.backward(route, mins, maxs)
	values := make([]int64, len(route))
	d.finalize(route, mins, maxs, values)
	out := make([]CumulValue, len(route))
	for k := range route {
		out[k] = CumulValue{Value: values[k], Min: mins[k], Max: maxs[k]}
	}
	return out, true
}
