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
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is wrapped by every error rejecting a problem, a
	// model or search parameters before the search starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrModelClosed holds the error when a model is modified after CloseModel.
	ErrModelClosed = errors.New("model is closed")
	// ErrUnknownDimension holds the error when a dimension name is not registered.
	ErrUnknownDimension = errors.New("unknown dimension")
)

// InfeasibleError reports that a first solution strategy could not route every
// node while satisfying the hard constraints.
type InfeasibleError struct {
	// Strategy is the first solution strategy that failed.
	Strategy FirstSolutionStrategy
	// Unrouted lists the problem node ids left without a feasible position.
	Unrouted []int
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("%v: no feasible insertion for nodes %v", e.Strategy, e.Unrouted)
}

// PropagationError reports the first route position whose cumul range became
// empty while propagating a dimension.
type PropagationError struct {
	Dimension string
	Vehicle   int
	Position  int
	// Index is the routing index visited at Position.
	Index int
}

func (e *PropagationError) Error() string {
	return fmt.Sprintf("dimension %q: empty cumul range for vehicle %d at position %d (index %d)",
		e.Dimension, e.Vehicle, e.Position, e.Index)
}
