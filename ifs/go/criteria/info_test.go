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

package criteria

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatNumber(t *testing.T) {
	testCases := []struct {
		v    float64
		want string
	}{
		{v: 0, want: "0"},
		{v: 3, want: "3"},
		{v: 100, want: "100"},
		{v: 2.5, want: "2.5"},
		{v: 100.0 / 3.0, want: "33.33"},
		{v: 2.0 / 3.0, want: "0.67"},
		{v: -1.25, want: "-1.25"},
		{v: -0.001, want: "0"},
		{v: math.Inf(1), want: "+Inf"},
	}
	for _, test := range testCases {
		if got := FormatNumber(test.v); got != test.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", test.v, got, test.want)
		}
	}
}

func TestPercentage(t *testing.T) {
	testCases := []struct {
		name string
		got  string
		want string
	}{
		{name: "Percentage", got: Percentage(3, 0, 10), want: "70"},
		{name: "PercentageReversed", got: PercentageReversed(3, 0, 10), want: "30"},
		{name: "Percentage at lo", got: Percentage(0, 0, 10), want: "100"},
		{name: "Percentage of an empty range", got: Percentage(5, 5, 5), want: "100"},
		{name: "PercentageReversed of an empty range", got: PercentageReversed(5, 5, 5), want: "0"},
		{name: "Percentage of a third", got: Percentage(1, 0, 3), want: "66.67"},
	}
	for _, test := range testCases {
		if test.got != test.want {
			t.Errorf("%s = %q, want %q", test.name, test.got, test.want)
		}
	}
}

func TestBase_Info(t *testing.T) {
	m := newGrid(2)
	c := newValueWeights(WithDebug(true))
	m.AddCriterion(c)
	silent := newValueWeights(WithTypeName("Silent"))
	m.AddCriterion(silent)
	a := m.NewAssignment()
	x, y := m.Variables()[0], m.Variables()[1]

	m.Assign(a, 1, x.Values()[0])
	m.Assign(a, 2, y.Values()[0])
	if diff := cmp.Diff(map[string]string{
		"[C] Value Weights": "100% (value: 2, weighted:2, bounds: 2..6)",
	}, m.Info(a)); diff != "" {
		t.Errorf("Info() returned with unexpected diff (-want+got);\n%s", diff)
	}

	m.Assign(a, 3, x.Values()[2])
	if diff := cmp.Diff(map[string]string{
		"[C] Value Weights": "50% (value: 4, weighted:4, bounds: 2..6)",
	}, m.Info(a)); diff != "" {
		t.Errorf("Info() returned with unexpected diff (-want+got);\n%s", diff)
	}

	// A drift between the running total and the recomputed value is reported.
	c.Inc(a, 1)
	if diff := cmp.Diff(map[string]string{
		"[C] Value Weights": "25% (value: 5, precise:4, weighted:5, bounds: 2..6)",
	}, m.Info(a)); diff != "" {
		t.Errorf("Info() returned with unexpected diff (-want+got);\n%s", diff)
	}

	// Outside of the bounds the percentage is omitted.
	c.Inc(a, 5)
	if diff := cmp.Diff(map[string]string{
		"[C] Value Weights": "10 (precise:4, weighted:10, bounds: 2..6)",
	}, m.Info(a)); diff != "" {
		t.Errorf("Info() returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestBase_InfoReversedAndFlatBounds(t *testing.T) {
	m := newGrid(1)
	reversed := &countedBounds{bounds: [2]float64{10, 0}}
	reversed.Base = NewBase(reversed, WithDebug(true), WithWeight(2), WithTypeName("Reversed"))
	m.AddCriterion(reversed)
	flat := &countedBounds{bounds: [2]float64{0, 0}}
	flat.Base = NewBase(flat, WithDebug(true), WithWeight(1), WithTypeName("Flat"))
	m.AddCriterion(flat)
	a := m.NewAssignment()

	// Both values are 0: the flat criterion has nothing to report.
	if diff := cmp.Diff(map[string]string{
		"[C] Reversed": "0% (value: 0, weighted:0, bounds: 0..10)",
	}, m.Info(a)); diff != "" {
		t.Errorf("Info() returned with unexpected diff (-want+got);\n%s", diff)
	}

	m.Assign(a, 1, m.Variables()[0].Values()[2])
	if diff := cmp.Diff(map[string]string{
		"[C] Reversed": "30% (value: 3, weighted:6, bounds: 0..10)",
		"[C] Flat":     "3 (weighted:3)",
	}, m.Info(a)); diff != "" {
		t.Errorf("Info() returned with unexpected diff (-want+got);\n%s", diff)
	}
}

func TestBase_VariablesInfo(t *testing.T) {
	m := newGrid(3)
	c := newValueWeights(WithDebug(true), WithWeight(0.5))
	m.AddCriterion(c)
	a := m.NewAssignment()
	vars := m.Variables()
	m.Assign(a, 1, vars[0].Values()[1])
	m.Assign(a, 2, vars[1].Values()[0])
	m.Assign(a, 3, vars[2].Values()[2])

	info := make(map[string]string)
	c.VariablesInfo(a, info, vars[:2])
	if diff := cmp.Diff(map[string]string{
		"[C] Value Weights": "75% (value: 3, weighted:1.5, bounds: 2..6)",
	}, info); diff != "" {
		t.Errorf("VariablesInfo() returned with unexpected diff (-want+got);\n%s", diff)
	}

	quiet := newValueWeights()
	m.AddCriterion(quiet)
	info = make(map[string]string)
	quiet.VariablesInfo(a, info, vars)
	if len(info) != 0 {
		t.Errorf("VariablesInfo() without debug = %v, want no output", info)
	}
}
