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

// Package constraint provides binary constraints, optionally with per-assignment state.
package constraint

import (
	log "github.com/golang/glog"
	"github.com/ifsolver/ifs/ifs/go/model"
)

// ConsistencyFunc reports whether `first` (a value of the first variable) and `second` (a value of
// the second variable) can be assigned at the same time.
type ConsistencyFunc func(first, second *model.Value) bool

// Binary is a constraint between exactly two variables. When one of them is assigned, a hard
// binary constraint unassigns the other one if the two values are not consistent.
type Binary struct {
	name          string
	first, second *model.Variable
	consistent    ConsistencyFunc
	hard          bool
	model         *model.Model
}

// NewBinary creates a hard binary constraint. A nil `consistent` accepts every pair.
func NewBinary(name string, first, second *model.Variable, consistent ConsistencyFunc) *Binary {
	return &Binary{name: name, first: first, second: second, consistent: consistent, hard: true}
}

// Name returns the name of the constraint.
func (c *Binary) Name() string {
	return c.name
}

// First returns the first variable.
func (c *Binary) First() *model.Variable {
	return c.first
}

// Second returns the second variable.
func (c *Binary) Second() *model.Variable {
	return c.second
}

// Another returns the variable of the constraint other than `v`.
func (c *Binary) Another(v *model.Variable) *model.Variable {
	if v == c.first {
		return c.second
	}
	return c.first
}

// Variables returns both variables.
func (c *Binary) Variables() []*model.Variable {
	return []*model.Variable{c.first, c.second}
}

// IsHard reports whether conflicting values are unassigned.
func (c *Binary) IsHard() bool {
	return c.hard
}

// SetHard changes whether conflicting values are unassigned.
func (c *Binary) SetHard(hard bool) {
	c.hard = hard
}

// SetModel is called when the constraint is added to or removed from a model.
func (c *Binary) SetModel(m *model.Model) {
	c.model = m
}

// Model returns the model of the constraint, or nil.
func (c *Binary) Model() *model.Model {
	return c.model
}

// IsConsistent reports whether `v1` and `v2`, one value of each variable in any order, can be
// assigned together.
func (c *Binary) IsConsistent(v1, v2 *model.Value) bool {
	if c.consistent == nil {
		return true
	}
	if v1.Variable() == c.first {
		return c.consistent(v1, v2)
	}
	return c.consistent(v2, v1)
}

// Conflicts returns the values assigned in `a` that would conflict with assigning `v`.
func (c *Binary) Conflicts(a *model.Assignment, v *model.Value) []*model.Value {
	other := a.Value(c.Another(v.Variable()))
	if other == nil || c.IsConsistent(v, other) {
		return nil
	}
	return []*model.Value{other}
}

// Assigned unassigns the conflicting value of the other variable, if the constraint is hard.
func (c *Binary) Assigned(a *model.Assignment, iteration int64, v *model.Value) {
	if !c.hard || c.model == nil {
		return
	}
	for _, conflict := range c.Conflicts(a, v) {
		log.V(2).Infof("%s: %v conflicts with %v", c.name, v, conflict)
		c.model.Unassign(a, iteration, conflict.Variable())
	}
}

// Unassigned does nothing for a plain binary constraint.
func (c *Binary) Unassigned(a *model.Assignment, iteration int64, v *model.Value) {}

func (c *Binary) String() string {
	return c.name + "(" + c.first.String() + ", " + c.second.String() + ")"
}
