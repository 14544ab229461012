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

// The vrptw_sample command solves the 25 customer Solomon C101 instance with
// guided local search and prints the time window of every visit.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/golang/glog"
	"github.com/or-routing/vrptw/ortools/routing/go/routing"
)

var (
	timeLimit    = flag.Duration("time_limit", 15*time.Second, "Time limit of the search.")
	scale        = flag.Float64("scale", 500, "Factor applied to distances and time windows before rounding.")
	serviceTimes = flag.Bool("service_times", false, "Add the instance service times to the time dimension.")
	numWorkers   = flag.Int("num_workers", 1, "Number of parallel search trials.")
)

const (
	numVehicles     = 25
	vehicleCapacity = 200
	serviceTime     = 90
)

type customer struct {
	x, y             float64
	demand           int64
	earliest, latest float64
}

// Node 0 is the depot.
var c101 = []customer{
	{40, 50, 0, 0, 1236},
	{45, 68, 10, 912, 967},
	{45, 70, 30, 825, 870},
	{42, 66, 10, 65, 146},
	{42, 68, 10, 727, 782},
	{42, 65, 10, 15, 67},
	{40, 69, 20, 621, 702},
	{40, 66, 20, 170, 225},
	{38, 68, 20, 255, 324},
	{38, 70, 10, 534, 605},
	{35, 66, 10, 357, 410},
	{35, 69, 10, 448, 505},
	{25, 85, 20, 652, 721},
	{22, 75, 30, 30, 92},
	{22, 85, 10, 567, 620},
	{20, 80, 40, 384, 429},
	{20, 85, 40, 475, 528},
	{18, 75, 20, 99, 148},
	{15, 75, 20, 179, 254},
	{15, 80, 10, 278, 345},
	{30, 50, 10, 10, 73},
	{30, 52, 20, 914, 965},
	{28, 52, 20, 812, 883},
	{28, 55, 10, 732, 777},
	{25, 50, 10, 65, 144},
	{25, 52, 40, 169, 224},
}

func buildProblem() *routing.Problem {
	n := len(c101)
	p := &routing.Problem{
		CostMatrix:        make([][]int64, n),
		Demands:           make([]int64, n),
		TimeWindows:       make([]routing.TimeWindow, n),
		VehicleCapacities: make([]int64, numVehicles),
		Depot:             0,
	}
	for i, from := range c101 {
		p.CostMatrix[i] = make([]int64, n)
		for j, to := range c101 {
			p.CostMatrix[i][j] = int64(math.Hypot(from.x-to.x, from.y-to.y) * *scale)
		}
		p.Demands[i] = from.demand
		p.TimeWindows[i] = routing.TimeWindow{
			Earliest: int64(from.earliest * *scale),
			Latest:   int64(from.latest * *scale),
		}
	}
	for v := range p.VehicleCapacities {
		p.VehicleCapacities[v] = vehicleCapacity
	}
	if *serviceTimes {
		p.ServiceTimes = make([]int64, n)
		for i := 1; i < n; i++ {
			p.ServiceTimes[i] = int64(serviceTime * *scale)
		}
	}
	return p
}

func printSolution(res *routing.SolveResult) {
	fmt.Printf("Objective: %v\n", res.Objective)
	var totalTime int64
	for _, route := range res.Routes {
		times := route.Cumuls[routing.TimeDimension]
		var b strings.Builder
		fmt.Fprintf(&b, "Route for vehicle %v:\n", route.Vehicle)
		for k, node := range route.Nodes {
			if k > 0 {
				b.WriteString(" -> ")
			}
			fmt.Fprintf(&b, "%v Time(%v,%v)", node, times[k].Min, times[k].Max)
		}
		end := times[len(times)-1]
		fmt.Fprintf(&b, "\nTime of the route: %vmin\n", end.Min)
		fmt.Println(b.String())
		totalTime += end.Min
	}
	fmt.Printf("Total time of all routes: %vmin\n", totalTime)
}

func vrptwSample() error {
	p := buildProblem()
	params := routing.DefaultSearchParameters().WithTimeLimit(*timeLimit)
	params.LocalSearchMode = routing.GuidedLocalSearch
	params.NumWorkers = *numWorkers

	fmt.Println("Start solving...")
	res, err := routing.Solve(context.Background(), p, params)
	if err != nil {
		return fmt.Errorf("failed to solve the problem: %w", err)
	}
	fmt.Printf("Status: %v\n", res.Status)
	if !res.Status.HasSolution() {
		if res.Infeasibility != nil {
			return res.Infeasibility
		}
		return nil
	}
	printSolution(res)
	return nil
}

func main() {
	flag.Parse()
	if err := vrptwSample(); err != nil {
		log.Exitf("vrptwSample returned with error: %v", err)
	}
}
