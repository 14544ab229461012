// Copyright 2010-2025 Google LLC
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

// The cvrp_sample command solves a capacitated problem with search parameters
// read from a YAML document, using the model level API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/or-routing/vrptw/ortools/routing/go/routing"
)

var paramsFile = flag.String("params", "", "YAML file holding the search parameters. Uses built-in parameters if empty.")

const defaultParams = `
time_limit: 2s
first_solution_strategy: CHEAPEST_ARC_INSERTION
local_search_mode: GUIDED_LOCAL_SEARCH
improvement_rule: FIRST_IMPROVEMENT
guided_local_search_lambda_coefficient: 0.1
operators: [RELOCATE, EXCHANGE, TWO_OPT, OR_OPT, CROSS]
`

var (
	locations = [][2]int64{
		{456, 320}, {228, 0}, {912, 0}, {0, 80}, {114, 80}, {570, 160},
		{798, 160}, {342, 240}, {684, 240}, {570, 400}, {912, 400},
		{114, 480}, {228, 480}, {342, 560}, {684, 560}, {0, 640}, {798, 640},
	}
	demands    = []int64{0, 1, 1, 2, 4, 2, 4, 8, 8, 1, 2, 1, 2, 4, 4, 8, 8}
	capacities = []int64{15, 15, 15, 15}
)

func manhattan(a, b [2]int64) int64 {
	dx, dy := a[0]-b[0], a[1]-b[1]
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

func loadParams() (*routing.SearchParameters, error) {
	data := []byte(defaultParams)
	if *paramsFile != "" {
		var err error
		if data, err = os.ReadFile(*paramsFile); err != nil {
			return nil, err
		}
	}
	return routing.SearchParametersFromYAML(data)
}

func cvrpSample() error {
	params, err := loadParams()
	if err != nil {
		return fmt.Errorf("failed to load the search parameters: %w", err)
	}

	manager := routing.NewIndexManager(len(locations), len(capacities), 0)
	model := routing.NewModel(manager)

	distance := model.RegisterTransitCallback(func(from, to int) int64 {
		return manhattan(locations[manager.IndexToNode(from)], locations[manager.IndexToNode(to)])
	})
	if err := model.SetArcCostEvaluatorOfAllVehicles(distance); err != nil {
		return err
	}
	demand := model.RegisterUnaryTransitCallback(func(from int) int64 {
		return demands[manager.IndexToNode(from)]
	})
	if _, err := model.AddDimensionWithVehicleCapacity(demand, 0, capacities, true, "Capacity"); err != nil {
		return fmt.Errorf("failed to add the capacity dimension: %w", err)
	}

	res, err := model.SolveWithParameters(context.Background(), params)
	if err != nil {
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	fmt.Printf("Status: %v\n", res.Status)
	if !res.Status.HasSolution() {
		return nil
	}
	fmt.Printf("Objective: %v\n", res.Objective)
	var totalLoad int64
	for _, route := range res.Routes {
		loads := route.Cumuls["Capacity"]
		fmt.Printf("Route for vehicle %v:\n", route.Vehicle)
		for k, node := range route.Nodes {
			fmt.Printf(" %v Load(%v)", node, loads[k].Value)
		}
		fmt.Printf("\nDistance of the route: %vm\n", route.Cost)
		load := route.Duration("Capacity")
		fmt.Printf("Load of the route: %v\n\n", load)
		totalLoad += load
	}
	fmt.Printf("Total load of all routes: %v\n", totalLoad)
	fmt.Printf("Accepted moves: %v, penalty cycles: %v\n", res.Stats.AcceptedMoves, res.Stats.Cycles)
	return nil
}

func main() {
	flag.Parse()
	if err := cvrpSample(); err != nil {
		log.Exitf("cvrpSample returned with error: %v", err)
	}
}
