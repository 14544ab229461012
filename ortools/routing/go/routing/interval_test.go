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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCapAdd(t *testing.T) {
	testCases := []struct {
		a, b int64
		want int64
	}{
		{a: 1, b: 2, want: 3},
		{a: -5, b: 3, want: -2},
		{a: math.MaxInt64 - 1, b: 5, want: math.MaxInt64},
		{a: math.MinInt64 + 1, b: -5, want: math.MinInt64},
		{a: math.MaxInt64, b: -10, want: math.MaxInt64},
		{a: math.MinInt64, b: 10, want: math.MinInt64},
		{a: 7, b: math.MaxInt64, want: math.MaxInt64},
	}

	for _, test := range testCases {
		if got := CapAdd(test.a, test.b); got != test.want {
			t.Errorf("CapAdd(%v, %v) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}

func TestCapSub(t *testing.T) {
	testCases := []struct {
		a, b int64
		want int64
	}{
		{a: 10, b: 4, want: 6},
		{a: math.MaxInt64, b: 4, want: math.MaxInt64},
		{a: 3, b: math.MaxInt64, want: math.MinInt64},
		{a: math.MinInt64 + 2, b: 5, want: math.MinInt64},
	}

	for _, test := range testCases {
		if got := CapSub(test.a, test.b); got != test.want {
			t.Errorf("CapSub(%v, %v) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}

func TestInterval_Intersect(t *testing.T) {
	testCases := []struct {
		a, b      Interval
		want      Interval
		wantEmpty bool
	}{
		{a: Interval{0, 10}, b: Interval{5, 20}, want: Interval{5, 10}},
		{a: Interval{0, 10}, b: Interval{10, 20}, want: Interval{10, 10}},
		{a: Interval{0, 10}, b: Interval{11, 20}, want: Interval{11, 10}, wantEmpty: true},
		{a: fullInterval, b: Interval{3, 4}, want: Interval{3, 4}},
	}

	for _, test := range testCases {
		got := test.a.Intersect(test.b)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v.Intersect(%v) returned with unexpected diff (-want+got);\n%s", test.a, test.b, diff)
		}
		if got.IsEmpty() != test.wantEmpty {
			t.Errorf("%v.IsEmpty() = %v, want %v", got, got.IsEmpty(), test.wantEmpty)
		}
	}
}

func TestInterval_Offset(t *testing.T) {
	testCases := []struct {
		in     Interval
		lo, hi int64
		want   Interval
	}{
		{in: Interval{0, 10}, lo: 3, hi: 8, want: Interval{3, 18}},
		{in: Interval{0, math.MaxInt64}, lo: 3, hi: 8, want: Interval{3, math.MaxInt64}},
		{in: Interval{5, 5}, lo: -5, hi: -5, want: Interval{0, 0}},
	}

	for _, test := range testCases {
		got := test.in.Offset(test.lo, test.hi)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v.Offset(%v, %v) returned with unexpected diff (-want+got);\n%s", test.in, test.lo, test.hi, diff)
		}
	}
}

func TestInterval_ContainsAndString(t *testing.T) {
	i := NewInterval(2, 4)
	for _, v := range []int64{2, 3, 4} {
		if !i.Contains(v) {
			t.Errorf("%v.Contains(%v) = false, want true", i, v)
		}
	}
	for _, v := range []int64{1, 5} {
		if i.Contains(v) {
			t.Errorf("%v.Contains(%v) = true, want false", i, v)
		}
	}
	if got, want := i.String(), "[2,4]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := NewInterval(4, 2).String(), "[]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
