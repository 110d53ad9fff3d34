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

package model

import (
	"fmt"
	"strconv"
)

// Variable is a decision variable of the model. It owns an ordered list of candidate values.
type Variable struct {
	id          int
	name        string
	values      []*Value
	constraints []Constraint
	model       *Model
}

// Value is a candidate value of a variable. A value belongs to exactly one variable.
type Value struct {
	variable *Variable
	index    int
	name     string
	weight   float64
}

// NewVariable creates a variable with an empty domain. The variable must be added to a model with
// Model.AddVariable before it can be assigned.
func NewVariable(name string) *Variable {
	return &Variable{id: -1, name: name}
}

// AddValue appends a new candidate value to the domain of the variable and returns it.
func (v *Variable) AddValue(name string, weight float64) *Value {
	val := &Value{variable: v, index: len(v.values), name: name, weight: weight}
	v.values = append(v.values, val)
	return val
}

// ID returns the identifier of the variable within its model, or -1 if the variable has not been
// added to a model.
func (v *Variable) ID() int {
	return v.id
}

// Name returns the name of the variable.
func (v *Variable) Name() string {
	return v.name
}

// Values returns the candidate values of the variable in the order they were added.
func (v *Variable) Values() []*Value {
	return v.values
}

// Constraints returns the constraints of the model that involve the variable.
func (v *Variable) Constraints() []Constraint {
	return v.constraints
}

// Model returns the model the variable was added to, or nil.
func (v *Variable) Model() *Model {
	return v.model
}

func (v *Variable) String() string {
	if v.name == "" {
		return fmt.Sprintf("var_%d", v.id)
	}
	return v.name
}

// Variable returns the variable the value belongs to.
func (val *Value) Variable() *Variable {
	return val.variable
}

// Index returns the position of the value in the domain of its variable.
func (val *Value) Index() int {
	return val.index
}

// Name returns the name of the value.
func (val *Value) Name() string {
	return val.name
}

// Weight returns the numeric weight of the value.
func (val *Value) Weight() float64 {
	return val.weight
}

func (val *Value) String() string {
	name := val.name
	if name == "" {
		name = strconv.Itoa(val.index)
	}
	return fmt.Sprintf("%v=%s", val.variable, name)
}
