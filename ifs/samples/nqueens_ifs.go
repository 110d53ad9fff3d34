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

// The nqueens_ifs command places N queens with an iterative forward search. Conflicting queens are
// unassigned by hard binary constraints; among the placements with the fewest conflicts, the one
// with the best weighted criteria is chosen.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"slices"

	log "github.com/golang/glog"
	"github.com/ifsolver/ifs/ifs/go/config"
	"github.com/ifsolver/ifs/ifs/go/constraint"
	"github.com/ifsolver/ifs/ifs/go/criteria"
	"github.com/ifsolver/ifs/ifs/go/model"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/protobuf/encoding/protojson"
)

var (
	boardSize     = flag.Int("size", 8, "number of queens")
	maxIterations = flag.Int64("iterations", 10000, "iteration limit")
	seed          = flag.Int64("seed", 1, "random seed")
	configPath    = flag.String("config", "", "optional YAML file with Weight.* and Debug.* keys")
)

var errBoardSize = errors.New("the board needs at least one queen")

// RowPreference prefers queens close to the top row.
type RowPreference struct {
	*criteria.Base
}

func newRowPreference() *RowPreference {
	c := &RowPreference{}
	c.Base = criteria.NewBase(c)
	return c
}

func (c *RowPreference) ValueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64 {
	return v.Weight()
}

func (c *RowPreference) WeightDefault(p *config.Properties) float64 {
	return 1.0
}

// Displacements counts the queens removed by conflicts. It is maintained manually with Inc.
type Displacements struct {
	*criteria.Base
}

func newDisplacements() *Displacements {
	c := &Displacements{}
	c.Base = criteria.NewBase(c, criteria.WithPolicy(criteria.NoUpdate))
	return c
}

func (c *Displacements) ValueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64 {
	return float64(len(conflicts))
}

func (c *Displacements) ComputeBounds(a *model.Assignment) [2]float64 {
	return [2]float64{0, float64(a.Iteration())}
}

func queensAttack(first, second *model.Value) bool {
	r1, r2 := first.Weight(), second.Weight()
	c1, c2 := float64(first.Variable().ID()), float64(second.Variable().ID())
	return r1 == r2 || math.Abs(r1-r2) == math.Abs(c1-c2)
}

func loadProperties() (*config.Properties, error) {
	if *configPath == "" {
		return config.New(nil), nil
	}
	return config.Load(*configPath)
}

// conflicts returns the queens that placing `v` would remove.
func conflicts(a *model.Assignment, v *model.Value) []*model.Value {
	var out []*model.Value
	for _, c := range v.Variable().Constraints() {
		if b, ok := c.(*constraint.Binary); ok {
			out = append(out, b.Conflicts(a, v)...)
		}
	}
	return out
}

func nQueensIfs() error {
	if *boardSize < 1 {
		return fmt.Errorf("size %d: %w", *boardSize, errBoardSize)
	}
	props, err := loadProperties()
	if err != nil {
		return fmt.Errorf("failed to load the configuration: %w", err)
	}

	m := model.NewModel()
	var queens []*model.Variable
	for i := 0; i < *boardSize; i++ {
		q, err := m.NewIntVariable(fmt.Sprintf("q%d", i), model.NewDomain(0, int64(*boardSize-1)))
		if err != nil {
			return fmt.Errorf("failed to create queen %d: %w", i, err)
		}
		queens = append(queens, q)
	}
	for i := range queens {
		for j := i + 1; j < len(queens); j++ {
			m.AddConstraint(constraint.NewBinary(fmt.Sprintf("attack_%d_%d", i, j), queens[i], queens[j],
				func(first, second *model.Value) bool { return !queensAttack(first, second) }))
		}
	}
	rows, displaced := newRowPreference(), newDisplacements()
	for _, c := range []criteria.Criterion{rows, displaced} {
		c.Init(props)
		m.AddCriterion(c)
	}

	collector := criteria.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	r := rand.New(rand.NewSource(*seed))
	a := m.NewAssignment()
	bestAssigned := -1
	for it := int64(1); it <= *maxIterations && a.NrAssigned() < len(queens); it++ {
		unassigned := a.UnassignedVariables()
		q := unassigned[r.Intn(len(unassigned))]

		var candidates []*model.Value
		bestScore := math.Inf(1)
		for _, v := range q.Values() {
			cs := conflicts(a, v)
			score := float64(len(cs))*float64(len(queens)) + rows.WeightedValueOf(a, v, cs)
			switch {
			case score < bestScore:
				bestScore, candidates = score, []*model.Value{v}
			case score == bestScore:
				candidates = append(candidates, v)
			}
		}
		v := candidates[r.Intn(len(candidates))]
		displaced.Inc(a, displaced.ValueOf(a, v, conflicts(a, v)))
		m.Assign(a, it, v)

		if n := a.NrAssigned(); n > bestAssigned {
			bestAssigned = n
			m.SaveBest(a)
			collector.Observe(a)
		}
	}
	m.RestoreBest(a, a.Iteration()+1)

	fmt.Printf("Iterations: %d\n", a.Iteration())
	fmt.Printf("Placed: %d/%d\n", a.NrAssigned(), len(queens))
	for row := int64(0); row < int64(*boardSize); row++ {
		for _, q := range queens {
			if v := a.Value(q); v != nil && int64(v.Weight()) == row {
				fmt.Print("Q")
			} else {
				fmt.Print("_")
			}
		}
		fmt.Println()
	}

	info := m.Info(a)
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, info[k])
	}

	report, err := criteria.Report(a)
	if err != nil {
		return fmt.Errorf("failed to build the report: %w", err)
	}
	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal the report: %w", err)
	}
	fmt.Printf("Report:\n%s\n", out)

	// Score the final assignment against a clone without the first queen.
	alt := a.Clone()
	defer alt.Release()
	m.Unassign(alt, a.Iteration()+1, queens[0])
	totals, err := m.Evaluate(context.Background(), a, alt)
	if err != nil {
		return fmt.Errorf("failed to evaluate: %w", err)
	}
	fmt.Printf("Objective: %v (without q0: %v)\n", totals[0], totals[1])

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, f := range families {
		log.V(1).Infof("metric %s: %d series", f.GetName(), len(f.GetMetric()))
	}
	return nil
}

func main() {
	flag.Parse()
	if err := nQueensIfs(); err != nil {
		log.Exitf("nQueensIfs returned with error: %v", err)
	}
}
