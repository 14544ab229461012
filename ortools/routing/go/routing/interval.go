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
	"math"
)

// Interval stores the closed range `[Min,Max]` of a cumul variable. If `Min` is
// greater than `Max`, the interval is considered empty.
type Interval struct {
	Min int64
	Max int64
}

// fullInterval is the range of an unconstrained cumul variable.
var fullInterval = Interval{0, math.MaxInt64}

// NewInterval creates the interval `[lo,hi]`.
func NewInterval(lo, hi int64) Interval {
	return Interval{lo, hi}
}

// CapAdd returns `a+b`, saturating at math.MinInt64 and math.MaxInt64. Both
// saturated values are sticky: they represent an unbounded quantity and adding
// a finite delta to them leaves them unchanged.
func CapAdd(a, b int64) int64 {
	if a == math.MinInt64 || a == math.MaxInt64 {
		return a
	}
	if b == math.MinInt64 || b == math.MaxInt64 {
		return b
	}
	s := a + b
	if b < 0 && s > a {
		return math.MinInt64
	}
	if b > 0 && s < a {
		return math.MaxInt64
	}
	return s
}

// CapSub returns `a-b` with the same saturation rules as CapAdd.
func CapSub(a, b int64) int64 {
	if b == math.MinInt64 {
		return CapAdd(a, math.MaxInt64)
	}
	if b == math.MaxInt64 {
		return CapAdd(a, math.MinInt64)
	}
	return CapAdd(a, -b)
}

// IsEmpty reports whether the interval contains no value.
func (i Interval) IsEmpty() bool {
	return i.Min > i.Max
}

// Contains reports whether `v` lies in the interval, bounds included.
func (i Interval) Contains(v int64) bool {
	return i.Min <= v && v <= i.Max
}

// Intersect returns the intersection of `i` and `o`. The result may be empty.
func (i Interval) Intersect(o Interval) Interval {
	return Interval{max(i.Min, o.Min), min(i.Max, o.Max)}
}

// Offset shifts the minimum by `lo` and the maximum by `hi`. Unbounded ends
// stay unbounded.
func (i Interval) Offset(lo, hi int64) Interval {
	return Interval{CapAdd(i.Min, lo), CapAdd(i.Max, hi)}
}

// String returns the interval as `[min,max]`.
func (i Interval) String() string {
	if i.IsEmpty() {
		return "[]"
	}
	return fmt.Sprintf("[%d,%d]", i.Min, i.Max)
}
