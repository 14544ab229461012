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

// move describes a candidate change of one or two routes. Positions refer to
// the routes as they were when the move was proposed.
type move struct {
	op     Operator
	v1, v2 int
	// i is a position in the route of v1 and j a position in the route of v2,
	// with an operator dependent meaning:
	//   - Relocate, OrOpt: the chain starting at i, of `length` indices, is
	//     inserted after j.
	//   - Exchange: the indices at i and j are swapped.
	//   - TwoOpt: the segment [i, j] is reversed (v1 == v2).
	//   - Cross: the tails following i and j are swapped.
	i, j   int
	length int
	// delta is the change of the cost being minimized.
	delta int64
}

// neighborhood is one step of the scan: an operator applied to a pair of
// vehicles.
type neighborhood struct {
	op     Operator
	v1, v2 int
}

// localSearch improves a solution with the configured operators until no
// improving feasible move is left.
type localSearch struct {
	s    *solution
	rule ImprovementRule
	// arcs holds the cost minimized by the search, n*n, row-major. It is the
	// true arc cost matrix unless guided local search penalizes it.
	arcs []int64
	n    int

	neighborhoods []neighborhood
	cursor        int

	buf [2][]int

	accepted map[Operator]int64
	// onAccept is called after every committed move.
	onAccept func(mv move)
}

func newLocalSearch(s *solution, ops []Operator, rule ImprovementRule) *localSearch {
	ls := &localSearch{
		s:        s,
		rule:     rule,
		arcs:     s.m.arcCosts,
		n:        s.m.n,
		accepted: map[Operator]int64{},
	}
	for slot := range ls.buf {
		ls.buf[slot] = make([]int, 0, s.m.n)
	}
	numVehicles := s.m.NumVehicles()
	for _, op := range ops {
		for v1 := 0; v1 < numVehicles; v1++ {
			for v2 := 0; v2 < numVehicles; v2++ {
				switch op {
				case TwoOpt:
					if v1 != v2 {
						continue
					}
				case Exchange:
					if v1 > v2 {
						continue
					}
				case Cross:
					if v1 >= v2 {
						continue
					}
				}
				ls.neighborhoods = append(ls.neighborhoods, neighborhood{op: op, v1: v1, v2: v2})
			}
		}
	}
	return ls
}

func (ls *localSearch) cost(from, to int) int64 { return ls.arcs[from*ls.n+to] }

// descend applies improving moves until a local optimum is reached, and
// reports whether it was. It returns false as soon as `ctx` is done, which is
// checked after every accepted move and every neighborhood scan.
func (ls *localSearch) descend(ctx context.Context) bool {
	if len(ls.neighborhoods) == 0 {
		return true
	}
	if ls.rule == BestImprovement {
		return ls.descendBest(ctx)
	}
	misses := 0
	for misses < len(ls.neighborhoods) {
		mv, ok := ls.scan(ls.neighborhoods[ls.cursor], true)
		if ok {
			ls.apply(mv)
			misses = 0
		} else {
			misses++
			ls.cursor = (ls.cursor + 1) % len(ls.neighborhoods)
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return true
}

func (ls *localSearch) descendBest(ctx context.Context) bool {
	for {
		var best move
		found := false
		for _, nb := range ls.neighborhoods {
			mv, ok := ls.scan(nb, false)
			if ok && (!found || mv.delta < best.delta) {
				best, found = mv, true
			}
			if ctx.Err() != nil {
				return false
			}
		}
		if !found {
			return true
		}
		ls.apply(best)
		if ctx.Err() != nil {
			return false
		}
	}
}

// scan looks for an improving feasible move in `nb`. With `first` set it
// returns the first one in scan order, otherwise the best one.
func (ls *localSearch) scan(nb neighborhood, first bool) (move, bool) {
	var best move
	found := false
	consider := func(mv move) bool {
		if mv.delta >= 0 || (found && mv.delta >= best.delta) {
			return false
		}
		if !ls.feasible(mv) {
			return false
		}
		best, found = mv, true
		return first
	}
	switch nb.op {
	case Relocate:
		ls.scanChain(nb, 1, consider)
	case OrOpt:
		for length := 2; length <= 3; length++ {
			if ls.scanChain(nb, length, consider) {
				break
			}
		}
	case Exchange:
		ls.scanExchange(nb, consider)
	case TwoOpt:
		ls.scanTwoOpt(nb, consider)
	case Cross:
		ls.scanCross(nb, consider)
	default:
		log.Fatalf("unknown operator %v", nb.op)
	}
	return best, found
}

// scanChain enumerates the moves of the chain of `length` indices starting at
// every position of route v1 to every position of route v2. It stops and
// returns true when `consider` does.
func (ls *localSearch) scanChain(nb neighborhood, length int, consider func(move) bool) bool {
	a, b := ls.s.routes[nb.v1], ls.s.routes[nb.v2]
	for i := 1; i+length-1 <= len(a)-2; i++ {
		x, y := a[i], a[i+length-1]
		prev, next := a[i-1], a[i+length]
		removal := ls.cost(prev, next) - ls.cost(prev, x) - ls.cost(y, next)
		for j := 0; j <= len(b)-2; j++ {
			if nb.v1 == nb.v2 && j >= i-1 && j <= i+length-1 {
				continue
			}
			delta := removal + ls.cost(b[j], x) + ls.cost(y, b[j+1]) - ls.cost(b[j], b[j+1])
			if consider(move{op: nb.op, v1: nb.v1, v2: nb.v2, i: i, j: j, length: length, delta: delta}) {
				return true
			}
		}
	}
	return false
}

func (ls *localSearch) scanExchange(nb neighborhood, consider func(move) bool) {
	a, b := ls.s.routes[nb.v1], ls.s.routes[nb.v2]
	for i := 1; i <= len(a)-2; i++ {
		x := a[i]
		jStart := 1
		if nb.v1 == nb.v2 {
			jStart = i + 1
		}
		for j := jStart; j <= len(b)-2; j++ {
			y := b[j]
			var delta int64
			if nb.v1 == nb.v2 && j == i+1 {
				p, q := a[i-1], a[j+1]
				delta = ls.cost(p, y) + ls.cost(y, x) + ls.cost(x, q) -
					ls.cost(p, x) - ls.cost(x, y) - ls.cost(y, q)
			} else {
				delta = ls.cost(a[i-1], y) + ls.cost(y, a[i+1]) - ls.cost(a[i-1], x) - ls.cost(x, a[i+1]) +
					ls.cost(b[j-1], x) + ls.cost(x, b[j+1]) - ls.cost(b[j-1], y) - ls.cost(y, b[j+1])
			}
			if consider(move{op: Exchange, v1: nb.v1, v2: nb.v2, i: i, j: j, delta: delta}) {
				return
			}
		}
	}
}

// scanTwoOpt enumerates segment reversals. The cost change of the reversed
// inner arcs is accumulated as the segment grows, so asymmetric costs are
// handled exactly.
func (ls *localSearch) scanTwoOpt(nb neighborhood, consider func(move) bool) {
	a := ls.s.routes[nb.v1]
	for i := 1; i < len(a)-2; i++ {
		var reversed int64
		for j := i + 1; j <= len(a)-2; j++ {
			reversed += ls.cost(a[j], a[j-1]) - ls.cost(a[j-1], a[j])
			delta := ls.cost(a[i-1], a[j]) + ls.cost(a[i], a[j+1]) -
				ls.cost(a[i-1], a[i]) - ls.cost(a[j], a[j+1]) + reversed
			if consider(move{op: TwoOpt, v1: nb.v1, v2: nb.v1, i: i, j: j, delta: delta}) {
				return
			}
		}
	}
}

// link returns the cost of going from `from` through `tail` to `end`, the
// inner arcs of `tail` excluded.
func (ls *localSearch) link(from int, tail []int, end int) int64 {
	if len(tail) == 0 {
		return ls.cost(from, end)
	}
	return ls.cost(from, tail[0]) + ls.cost(tail[len(tail)-1], end)
}

func (ls *localSearch) scanCross(nb neighborhood, consider func(move) bool) {
	a, b := ls.s.routes[nb.v1], ls.s.routes[nb.v2]
	ea, eb := a[len(a)-1], b[len(b)-1]
	for i := 0; i <= len(a)-2; i++ {
		ta := a[i+1 : len(a)-1]
		for j := 0; j <= len(b)-2; j++ {
			tb := b[j+1 : len(b)-1]
			if len(ta) == 0 && len(tb) == 0 {
				continue
			}
			delta := ls.link(a[i], tb, ea) + ls.link(b[j], ta, eb) -
				ls.link(a[i], ta, ea) - ls.link(b[j], tb, eb)
			if consider(move{op: Cross, v1: nb.v1, v2: nb.v2, i: i, j: j, delta: delta}) {
				return
			}
		}
	}
}

// build writes the routes produced by `mv` into the search buffers. It
// returns the new route of v1 and the first position where it differs, and
// the same for v2, which is nil when the move changes a single route.
func (ls *localSearch) build(mv move) (r1 []int, from1 int, r2 []int, from2 int) {
	a, b := ls.s.routes[mv.v1], ls.s.routes[mv.v2]
	buf1, buf2 := ls.buf[0][:0], ls.buf[1][:0]
	switch mv.op {
	case Relocate, OrOpt:
		i, j, l := mv.i, mv.j, mv.length
		chain := a[i : i+l]
		if mv.v1 != mv.v2 {
			r1 = append(append(buf1, a[:i]...), a[i+l:]...)
			r2 = append(append(append(buf2, b[:j+1]...), chain...), b[j+1:]...)
			return r1, i, r2, j + 1
		}
		if j < i {
			r1 = append(append(append(append(buf1, a[:j+1]...), chain...), a[j+1:i]...), a[i+l:]...)
			return r1, j + 1, nil, 0
		}
		r1 = append(append(append(append(buf1, a[:i]...), a[i+l:j+1]...), chain...), a[j+1:]...)
		return r1, i, nil, 0
	case Exchange:
		r1 = append(buf1, a...)
		if mv.v1 == mv.v2 {
			r1[mv.i], r1[mv.j] = r1[mv.j], r1[mv.i]
			return r1, mv.i, nil, 0
		}
		r2 = append(buf2, b...)
		r1[mv.i], r2[mv.j] = b[mv.j], a[mv.i]
		return r1, mv.i, r2, mv.j
	case TwoOpt:
		r1 = append(buf1, a...)
		for lo, hi := mv.i, mv.j; lo < hi; lo, hi = lo+1, hi-1 {
			r1[lo], r1[hi] = r1[hi], r1[lo]
		}
		return r1, mv.i, nil, 0
	case Cross:
		r1 = append(append(append(buf1, a[:mv.i+1]...), b[mv.j+1:len(b)-1]...), a[len(a)-1])
		r2 = append(append(append(buf2, b[:mv.j+1]...), a[mv.i+1:len(a)-1]...), b[len(b)-1])
		return r1, mv.i + 1, r2, mv.j + 1
	}
	log.Fatalf("unknown operator %v", mv.op)
	return nil, 0, nil, 0
}

// feasible builds the routes of `mv` and checks them against every
// dimension. On success the scratch slots hold their cumul ranges.
func (ls *localSearch) feasible(mv move) bool {
	r1, from1, r2, from2 := ls.build(mv)
	if !ls.s.check(0, mv.v1, r1, from1) {
		return false
	}
	return r2 == nil || ls.s.check(1, mv.v2, r2, from2)
}

// apply validates `mv` against the current routes and commits it.
func (ls *localSearch) apply(mv move) {
	r1, from1, r2, from2 := ls.build(mv)
	if !ls.s.check(0, mv.v1, r1, from1) || (r2 != nil && !ls.s.check(1, mv.v2, r2, from2)) {
		log.Fatalf("move %+v became infeasible before commit", mv)
	}
	ls.s.commit(0, mv.v1, r1)
	if r2 != nil {
		ls.s.commit(1, mv.v2, r2)
	}
	ls.accepted[mv.op]++
	if ls.onAccept != nil {
		ls.onAccept(mv)
	}
}
