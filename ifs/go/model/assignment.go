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

// Assignment maps the variables of a model to their current values. Several assignments of the
// same model can be alive at the same time; each one is identified by its index and owns the
// contexts of every context holder of the model.
//
// An assignment must only be modified by one goroutine at a time.
type Assignment struct {
	model     *Model
	index     int
	iteration int64
	values    []*Value // by variable id
	assigned  int
	contexts  map[uint64]AssignmentContext
}

// Index returns the index of the assignment among the live assignments of its model, or -1 once
// the assignment has been released.
func (a *Assignment) Index() int {
	return a.index
}

// Iteration returns the largest iteration passed to Model.Assign or Model.Unassign so far.
func (a *Assignment) Iteration() int64 {
	return a.iteration
}

// Model returns the model of the assignment.
func (a *Assignment) Model() *Model {
	return a.model
}

// Value returns the value currently assigned to `v`, or nil.
func (a *Assignment) Value(v *Variable) *Value {
	if v.id < 0 || v.id >= len(a.values) {
		return nil
	}
	return a.values[v.id]
}

// NrAssigned returns the number of assigned variables.
func (a *Assignment) NrAssigned() int {
	return a.assigned
}

// AssignedVariables returns the assigned variables in model order.
func (a *Assignment) AssignedVariables() []*Variable {
	out := make([]*Variable, 0, a.assigned)
	for _, v := range a.model.variables {
		if a.Value(v) != nil {
			out = append(out, v)
		}
	}
	return out
}

// UnassignedVariables returns the variables without a value in model order.
func (a *Assignment) UnassignedVariables() []*Variable {
	out := make([]*Variable, 0, len(a.model.variables)-a.assigned)
	for _, v := range a.model.variables {
		if a.Value(v) == nil {
			out = append(out, v)
		}
	}
	return out
}

// AssignedValues returns the assigned values in model order.
func (a *Assignment) AssignedValues() []*Value {
	out := make([]*Value, 0, a.assigned)
	for _, v := range a.model.variables {
		if val := a.Value(v); val != nil {
			out = append(out, val)
		}
	}
	return out
}

func (a *Assignment) set(v *Variable, val *Value) {
	if v.id >= len(a.values) {
		a.values = append(a.values, make([]*Value, v.id+1-len(a.values))...)
	}
	switch old := a.values[v.id]; {
	case old == nil && val != nil:
		a.assigned++
	case old != nil && val == nil:
		a.assigned--
	}
	a.values[v.id] = val
}

func (a *Assignment) tick(iteration int64) {
	if iteration > a.iteration {
		a.iteration = iteration
	}
}

// Clone creates a new assignment of the same model holding the same values. The clone has its own
// index and its own contexts, which are initialized from the copied values.
func (a *Assignment) Clone() *Assignment {
	c := &Assignment{
		model:     a.model,
		iteration: a.iteration,
		values:    append([]*Value(nil), a.values...),
		assigned:  a.assigned,
	}
	a.model.register(c)
	a.model.initContexts(c)
	return c
}

// Release discards the assignment: its contexts are dropped and its index may be reused by a new
// assignment. The assignment must not be used afterwards.
func (a *Assignment) Release() {
	if a.index < 0 {
		return
	}
	a.model.releaseIndex(a.index)
	a.index = -1
	a.contexts = nil
}
