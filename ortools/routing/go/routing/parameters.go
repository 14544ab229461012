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
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"gopkg.in/yaml.v3"
)

// FirstSolutionStrategy selects the heuristic building the first solution.
type FirstSolutionStrategy int

const (
	// CheapestArcInsertion repeatedly inserts the unrouted node whose cheapest
	// feasible insertion, over every route and position, adds the least cost.
	CheapestArcInsertion FirstSolutionStrategy = iota
	// NearestNeighbor extends one vehicle path at a time with the cheapest
	// feasible next node.
	NearestNeighbor
)

var firstSolutionStrategyNames = map[FirstSolutionStrategy]string{
	CheapestArcInsertion: "CHEAPEST_ARC_INSERTION",
	NearestNeighbor:      "NEAREST_NEIGHBOR",
}

func (s FirstSolutionStrategy) String() string {
	if name, ok := firstSolutionStrategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("FirstSolutionStrategy(%d)", int(s))
}

// UnmarshalYAML parses a strategy name such as CHEAPEST_ARC_INSERTION.
func (s *FirstSolutionStrategy) UnmarshalYAML(value *yaml.Node) error {
	return unmarshalEnum(value, firstSolutionStrategyNames, s)
}

// LocalSearchMode selects what happens once local search is stuck in a local
// optimum.
type LocalSearchMode int

const (
	// GuidedLocalSearch penalizes arcs of the local optimum and keeps searching
	// until the time or iteration limit.
	GuidedLocalSearch LocalSearchMode = iota
	// FirstImprovementOnly stops at the first local optimum.
	FirstImprovementOnly
)

var localSearchModeNames = map[LocalSearchMode]string{
	GuidedLocalSearch:    "GUIDED_LOCAL_SEARCH",
	FirstImprovementOnly: "FIRST_IMPROVEMENT_ONLY",
}

func (m LocalSearchMode) String() string {
	if name, ok := localSearchModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("LocalSearchMode(%d)", int(m))
}

// UnmarshalYAML parses a mode name such as GUIDED_LOCAL_SEARCH.
func (m *LocalSearchMode) UnmarshalYAML(value *yaml.Node) error {
	return unmarshalEnum(value, localSearchModeNames, m)
}

// ImprovementRule selects which improving move the local search applies.
type ImprovementRule int

const (
	// FirstImprovement applies the first improving move found and resumes the
	// scan from the same neighborhood.
	FirstImprovement ImprovementRule = iota
	// BestImprovement scans every neighborhood and applies the best move.
	BestImprovement
)

var improvementRuleNames = map[ImprovementRule]string{
	FirstImprovement: "FIRST_IMPROVEMENT",
	BestImprovement:  "BEST_IMPROVEMENT",
}

func (r ImprovementRule) String() string {
	if name, ok := improvementRuleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("ImprovementRule(%d)", int(r))
}

// UnmarshalYAML parses a rule name such as BEST_IMPROVEMENT.
func (r *ImprovementRule) UnmarshalYAML(value *yaml.Node) error {
	return unmarshalEnum(value, improvementRuleNames, r)
}

// Operator identifies a local search neighborhood.
type Operator int

const (
	// Relocate moves one node to another position, on the same or another route.
	Relocate Operator = iota
	// Exchange swaps two nodes.
	Exchange
	// TwoOpt reverses a segment of a route.
	TwoOpt
	// OrOpt moves a chain of two or three consecutive nodes.
	OrOpt
	// Cross exchanges the tails of two routes, each vehicle keeping its end.
	Cross
)

var operatorNames = map[Operator]string{
	Relocate: "RELOCATE",
	Exchange: "EXCHANGE",
	TwoOpt:   "TWO_OPT",
	OrOpt:    "OR_OPT",
	Cross:    "CROSS",
}

// allOperators is the default operator order, which is also the scan order.
var allOperators = []Operator{Relocate, Exchange, TwoOpt, OrOpt, Cross}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// UnmarshalYAML parses an operator name such as TWO_OPT.
func (o *Operator) UnmarshalYAML(value *yaml.Node) error {
	return unmarshalEnum(value, operatorNames, o)
}

func unmarshalEnum[T comparable](value *yaml.Node, names map[T]string, out *T) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	for v, name := range names {
		if strings.EqualFold(name, s) {
			*out = v
			return nil
		}
	}
	return fmt.Errorf("%w: unknown value %q at line %v", ErrInvalidConfiguration, s, value.Line)
}

// SearchParameters holds the options of a solve.
type SearchParameters struct {
	// TimeLimit bounds the wall-clock time of the search. It is required.
	TimeLimit             *durationpb.Duration
	FirstSolutionStrategy FirstSolutionStrategy
	LocalSearchMode       LocalSearchMode
	ImprovementRule       ImprovementRule
	// GuidedLocalSearchLambdaCoefficient scales the penalty of an arc relative
	// to the average arc cost of the first local optimum.
	GuidedLocalSearchLambdaCoefficient float64
	// IterationLimit caps the number of guided local search penalty cycles.
	// Zero means no cap.
	IterationLimit int64
	// Operators restricts the neighborhoods explored, in this order. Empty
	// means every operator.
	Operators []Operator
	// NumWorkers is the number of independent search trials run in parallel.
	NumWorkers int
	// LogSearch logs search progress at INFO level instead of verbose level.
	LogSearch bool
}

// DefaultSearchParameters returns the default parameters. The time limit is
// left unset: callers must provide one.
func DefaultSearchParameters() *SearchParameters {
	return &SearchParameters{
		FirstSolutionStrategy:              CheapestArcInsertion,
		LocalSearchMode:                    GuidedLocalSearch,
		ImprovementRule:                    FirstImprovement,
		GuidedLocalSearchLambdaCoefficient: 0.1,
		NumWorkers:                         1,
	}
}

// Clone returns a deep copy of the parameters.
func (p *SearchParameters) Clone() *SearchParameters {
	c := *p
	if p.TimeLimit != nil {
		c.TimeLimit = proto.Clone(p.TimeLimit).(*durationpb.Duration)
	}
	c.Operators = append([]Operator(nil), p.Operators...)
	return &c
}

// WithTimeLimit sets the time limit and returns the parameters.
func (p *SearchParameters) WithTimeLimit(d time.Duration) *SearchParameters {
	p.TimeLimit = durationpb.New(d)
	return p
}

// Validate checks the parameters and returns an error wrapping
// ErrInvalidConfiguration if they cannot drive a search.
func (p *SearchParameters) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil search parameters", ErrInvalidConfiguration)
	}
	if p.TimeLimit == nil {
		return fmt.Errorf("%w: time_limit is required", ErrInvalidConfiguration)
	}
	if err := p.TimeLimit.CheckValid(); err != nil {
		return fmt.Errorf("%w: time_limit: %v", ErrInvalidConfiguration, err)
	}
	if p.TimeLimit.AsDuration() <= 0 {
		return fmt.Errorf("%w: time_limit must be positive, got %v", ErrInvalidConfiguration, p.TimeLimit.AsDuration())
	}
	if _, ok := firstSolutionStrategyNames[p.FirstSolutionStrategy]; !ok {
		return fmt.Errorf("%w: unknown first solution strategy %v", ErrInvalidConfiguration, p.FirstSolutionStrategy)
	}
	if _, ok := localSearchModeNames[p.LocalSearchMode]; !ok {
		return fmt.Errorf("%w: unknown local search mode %v", ErrInvalidConfiguration, p.LocalSearchMode)
	}
	if _, ok := improvementRuleNames[p.ImprovementRule]; !ok {
		return fmt.Errorf("%w: unknown improvement rule %v", ErrInvalidConfiguration, p.ImprovementRule)
	}
	if p.GuidedLocalSearchLambdaCoefficient < 0 {
		return fmt.Errorf("%w: guided_local_search_lambda_coefficient must be >= 0", ErrInvalidConfiguration)
	}
	if p.IterationLimit < 0 {
		return fmt.Errorf("%w: iteration_limit must be >= 0", ErrInvalidConfiguration)
	}
	if p.NumWorkers < 1 {
		return fmt.Errorf("%w: num_workers must be >= 1", ErrInvalidConfiguration)
	}
	for _, o := range p.Operators {
		if _, ok := operatorNames[o]; !ok {
			return fmt.Errorf("%w: unknown operator %v", ErrInvalidConfiguration, o)
		}
	}
	return nil
}

func (p *SearchParameters) operators() []Operator {
	if len(p.Operators) == 0 {
		return allOperators
	}
	return p.Operators
}

// yamlSearchParameters is the YAML document layout of SearchParameters.
type yamlSearchParameters struct {
	TimeLimit                          string                 `yaml:"time_limit"`
	FirstSolutionStrategy              *FirstSolutionStrategy `yaml:"first_solution_strategy"`
	LocalSearchMode                    *LocalSearchMode       `yaml:"local_search_mode"`
	ImprovementRule                    *ImprovementRule       `yaml:"improvement_rule"`
	GuidedLocalSearchLambdaCoefficient *float64               `yaml:"guided_local_search_lambda_coefficient"`
	IterationLimit                     int64                  `yaml:"iteration_limit"`
	Operators                          []Operator             `yaml:"operators"`
	NumWorkers                         int                    `yaml:"num_workers"`
	LogSearch                          bool                   `yaml:"log_search"`
}

// SearchParametersFromYAML parses a YAML document on top of the default
// parameters. For instance:
//
//	time_limit: 15s
//	first_solution_strategy: CHEAPEST_ARC_INSERTION
//	local_search_mode: GUIDED_LOCAL_SEARCH
//	improvement_rule: FIRST_IMPROVEMENT
//	operators: [RELOCATE, TWO_OPT]
//
// The returned parameters are validated.
func SearchParametersFromYAML(data []byte) (*SearchParameters, error) {
	var doc yamlSearchParameters
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing search parameters: %w", err)
	}
	p := DefaultSearchParameters()
	if doc.TimeLimit != "" {
		d, err := time.ParseDuration(doc.TimeLimit)
		if err != nil {
			return nil, fmt.Errorf("%w: time_limit: %v", ErrInvalidConfiguration, err)
		}
		p.TimeLimit = durationpb.New(d)
	}
	if doc.FirstSolutionStrategy != nil {
		p.FirstSolutionStrategy = *doc.FirstSolutionStrategy
	}
	if doc.LocalSearchMode != nil {
		p.LocalSearchMode = *doc.LocalSearchMode
	}
	if doc.ImprovementRule != nil {
		p.ImprovementRule = *doc.ImprovementRule
	}
	if doc.GuidedLocalSearchLambdaCoefficient != nil {
		p.GuidedLocalSearchLambdaCoefficient = *doc.GuidedLocalSearchLambdaCoefficient
	}
	if doc.NumWorkers != 0 {
		p.NumWorkers = doc.NumWorkers
	}
	p.IterationLimit = doc.IterationLimit
	p.Operators = doc.Operators
	p.LogSearch = doc.LogSearch
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
