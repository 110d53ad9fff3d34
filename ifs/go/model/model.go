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

// Package model holds the problem model used by iterative forward search.
//
// A `Model` owns variables, constraints and criteria. Values are assigned to variables inside an
// `Assignment`; several assignments of the same model can coexist. Every change of an assignment
// goes through `Model.Assign` and `Model.Unassign`, which fire the before/after hooks of the
// criteria and notify the constraints of the changed variable.
//
// Components that need mutable state per assignment embed a `Holder`. The state itself lives in
// the assignment and is located with a `Reference` minted when the component joins the model.
package model

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	log "github.com/golang/glog"
)

var (
	// ErrUninitializedHolder is raised when a context is requested from a holder that has not been
	// attached to a model.
	ErrUninitializedHolder = errors.New("context holder is not attached to a model")
	// ErrInvalidIndex is raised when an assignment index is outside of the valid range, e.g. for a
	// released assignment.
	ErrInvalidIndex = errors.New("invalid assignment index")
	// ErrForeignAssignment is raised when an assignment or reference of another model is used.
	ErrForeignAssignment = errors.New("assignment is not part of the same model")
	// ErrForeignValue is raised when a value or variable of another model is used.
	ErrForeignValue = errors.New("value is not part of the same model")
	// ErrDomainTooLarge is returned when an integer domain has more than MaxDomainSize values.
	ErrDomainTooLarge = errors.New("domain too large")
	// ErrDuplicateAssignment is returned when the same assignment is evaluated twice in parallel.
	ErrDuplicateAssignment = errors.New("assignment listed more than once")
)

// contractViolation reports a programming error and aborts the current operation.
func contractViolation(err error) {
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	panic(err)
}

// Constraint is a constraint of the model. It is notified after a value of one of its variables
// has been assigned or unassigned.
type Constraint interface {
	Variables() []*Variable
	SetModel(m *Model)
	Assigned(a *Assignment, iteration int64, v *Value)
	Unassigned(a *Assignment, iteration int64, v *Value)
}

// Criterion is the view the model has of an optimization criterion.
type Criterion interface {
	Name() string
	SetModel(m *Model)
	WeightedValue(a *Assignment) float64

	BeforeAssigned(a *Assignment, iteration int64, v *Value)
	AfterAssigned(a *Assignment, iteration int64, v *Value)
	BeforeUnassigned(a *Assignment, iteration int64, v *Value)
	AfterUnassigned(a *Assignment, iteration int64, v *Value)

	BestSaved(a *Assignment)
	BestRestored(a *Assignment)

	VariableAdded(v *Variable)
	VariableRemoved(v *Variable)
	ConstraintAdded(c Constraint)
	ConstraintRemoved(c Constraint)

	Info(a *Assignment, info map[string]string)
}

// Model is a set of variables, constraints and criteria.
type Model struct {
	variables   []*Variable
	constraints []Constraint
	criteria    []Criterion
	nextID      int

	// best holds the values of the best assignment saved so far, by variable id.
	best      []*Value
	bestSaved bool

	indexMu     sync.Mutex
	nextIndex   int
	freeIndices []int
	live        map[int]*Assignment // by index
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{}
}

// Variables returns the variables of the model.
func (m *Model) Variables() []*Variable {
	return m.variables
}

// Constraints returns the constraints of the model.
func (m *Model) Constraints() []Constraint {
	return m.constraints
}

// Criteria returns the criteria of the model.
func (m *Model) Criteria() []Criterion {
	return m.criteria
}

// AddVariable adds a variable to the model and notifies the criteria.
func (m *Model) AddVariable(v *Variable) {
	if v.model != nil {
		contractViolation(fmt.Errorf("variable %v added twice: %w", v, ErrForeignValue))
	}
	v.model = m
	v.id = m.nextID
	m.nextID++
	m.variables = append(m.variables, v)
	for _, c := range m.criteria {
		c.VariableAdded(v)
	}
}

// RemoveVariable removes a variable from the model and notifies the criteria. The variable must
// be unassigned in every assignment.
func (m *Model) RemoveVariable(v *Variable) {
	i := slices.Index(m.variables, v)
	if i < 0 {
		return
	}
	m.variables = slices.Delete(m.variables, i, i+1)
	for _, c := range m.criteria {
		c.VariableRemoved(v)
	}
	v.model = nil
}

// AddConstraint adds a constraint to the model, registers it with its variables, creates its
// contexts in the live assignments and notifies the criteria.
func (m *Model) AddConstraint(c Constraint) {
	m.constraints = append(m.constraints, c)
	for _, v := range c.Variables() {
		v.constraints = append(v.constraints, c)
	}
	c.SetModel(m)
	m.warmUp(c)
	for _, cr := range m.criteria {
		cr.ConstraintAdded(c)
	}
}

// RemoveConstraint removes a constraint from the model and notifies the criteria.
func (m *Model) RemoveConstraint(c Constraint) {
	i := slices.Index(m.constraints, c)
	if i < 0 {
		return
	}
	m.constraints = slices.Delete(m.constraints, i, i+1)
	for _, v := range c.Variables() {
		if j := slices.Index(v.constraints, c); j >= 0 {
			v.constraints = slices.Delete(v.constraints, j, j+1)
		}
	}
	c.SetModel(nil)
	for _, cr := range m.criteria {
		cr.ConstraintRemoved(c)
	}
}

// AddCriterion adds a criterion to the model and creates its contexts in the live assignments.
func (m *Model) AddCriterion(c Criterion) {
	m.criteria = append(m.criteria, c)
	c.SetModel(m)
	m.warmUp(c)
}

// RemoveCriterion removes a criterion from the model.
func (m *Model) RemoveCriterion(c Criterion) {
	if i := slices.Index(m.criteria, c); i >= 0 {
		m.criteria = slices.Delete(m.criteria, i, i+1)
		c.SetModel(nil)
	}
}

// Criterion returns the criterion with the given name, or nil.
func (m *Model) Criterion(name string) Criterion {
	for _, c := range m.criteria {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// register gives `a` the lowest free index and records it as live.
func (m *Model) register(a *Assignment) {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	if n := len(m.freeIndices); n > 0 {
		slices.Sort(m.freeIndices)
		a.index = m.freeIndices[0]
		m.freeIndices = m.freeIndices[1:]
	} else {
		a.index = m.nextIndex
		m.nextIndex++
	}
	if m.live == nil {
		m.live = make(map[int]*Assignment)
	}
	m.live[a.index] = a
}

func (m *Model) releaseIndex(idx int) {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	delete(m.live, idx)
	m.freeIndices = append(m.freeIndices, idx)
}

// liveAssignments returns the assignments that have not been released, by increasing index.
func (m *Model) liveAssignments() []*Assignment {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	out := make([]*Assignment, 0, len(m.live))
	for _, a := range m.live {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Assignment) int { return a.index - b.index })
	return out
}

// warmUp creates the contexts of a component that joins the model in every live assignment. A
// context is then never created by a hook, where the state may already include part of a move.
func (m *Model) warmUp(c any) {
	ci, ok := c.(ContextInitializer)
	if !ok {
		return
	}
	for _, a := range m.liveAssignments() {
		ci.InitContext(a)
	}
}

// initContexts creates the contexts of every criterion and constraint that asks for it, so that
// the state they start from never already includes the first move.
func (m *Model) initContexts(a *Assignment) {
	for _, c := range m.criteria {
		if ci, ok := c.(ContextInitializer); ok {
			ci.InitContext(a)
		}
	}
	for _, c := range m.constraints {
		if ci, ok := c.(ContextInitializer); ok {
			ci.InitContext(a)
		}
	}
}

// NewAssignment creates an empty assignment with the lowest free index.
func (m *Model) NewAssignment() *Assignment {
	a := &Assignment{model: m}
	m.register(a)
	m.initContexts(a)
	return a
}

func (m *Model) checkAssignment(a *Assignment) {
	if a.model != m {
		contractViolation(fmt.Errorf("assignment %d: %w", a.index, ErrForeignAssignment))
	}
	if a.index < 0 {
		contractViolation(fmt.Errorf("assignment was released: %w", ErrInvalidIndex))
	}
}

// Assign assigns value `v` to its variable. A value already assigned to the variable is
// unassigned first. Criteria hooks run in this order: BeforeAssigned, the value is committed and
// the constraints of the variable are notified, AfterAssigned.
func (m *Model) Assign(a *Assignment, iteration int64, v *Value) {
	m.checkAssignment(a)
	variable := v.variable
	if variable.model != m {
		contractViolation(fmt.Errorf("value %v: %w", v, ErrForeignValue))
	}
	a.tick(iteration)
	if old := a.Value(variable); old != nil {
		if old == v {
			return
		}
		m.Unassign(a, iteration, variable)
	}
	for _, c := range m.criteria {
		c.BeforeAssigned(a, iteration, v)
	}
	a.set(variable, v)
	for _, c := range variable.constraints {
		c.Assigned(a, iteration, v)
	}
	for _, c := range m.criteria {
		c.AfterAssigned(a, iteration, v)
	}
}

// Unassign removes the value of `variable`, if any, and returns it.
func (m *Model) Unassign(a *Assignment, iteration int64, variable *Variable) *Value {
	m.checkAssignment(a)
	if variable.model != m {
		contractViolation(fmt.Errorf("variable %v: %w", variable, ErrForeignValue))
	}
	a.tick(iteration)
	old := a.Value(variable)
	if old == nil {
		return nil
	}
	for _, c := range m.criteria {
		c.BeforeUnassigned(a, iteration, old)
	}
	a.set(variable, nil)
	for _, c := range variable.constraints {
		c.Unassigned(a, iteration, old)
	}
	for _, c := range m.criteria {
		c.AfterUnassigned(a, iteration, old)
	}
	return old
}

// TotalValue returns the overall objective of the assignment: the sum of the weighted values of
// all criteria.
func (m *Model) TotalValue(a *Assignment) float64 {
	var total float64
	for _, c := range m.criteria {
		total += c.WeightedValue(a)
	}
	return total
}

// SaveBest remembers the current values of `a` as the best assignment and lets every criterion
// snapshot its value.
func (m *Model) SaveBest(a *Assignment) {
	m.checkAssignment(a)
	m.best = make([]*Value, m.nextID)
	for _, v := range m.variables {
		m.best[v.id] = a.Value(v)
	}
	m.bestSaved = true
	for _, c := range m.criteria {
		c.BestSaved(a)
	}
	if log.V(1) {
		log.Infof("best saved at iteration %d: %d/%d assigned, total %v", a.iteration, a.assigned, len(m.variables), m.TotalValue(a))
	}
}

// BestValue returns the value of `v` in the best assignment saved so far, or nil.
func (m *Model) BestValue(v *Variable) *Value {
	if v.id < 0 || v.id >= len(m.best) {
		return nil
	}
	return m.best[v.id]
}

// RestoreBest reassigns the values saved by SaveBest and then restores the value of every
// criterion. It does nothing if no best assignment was saved.
func (m *Model) RestoreBest(a *Assignment, iteration int64) {
	m.checkAssignment(a)
	if !m.bestSaved {
		return
	}
	for _, v := range m.variables {
		if cur := a.Value(v); cur != nil && cur != m.BestValue(v) {
			m.Unassign(a, iteration, v)
		}
	}
	for _, v := range m.variables {
		if best := m.BestValue(v); best != nil && a.Value(v) != best {
			m.Assign(a, iteration, best)
		}
	}
	for _, c := range m.criteria {
		c.BestRestored(a)
	}
	if log.V(1) {
		log.Infof("best restored at iteration %d: total %v", iteration, m.TotalValue(a))
	}
}

// Info collects the debug information of every criterion.
func (m *Model) Info(a *Assignment) map[string]string {
	info := make(map[string]string)
	for _, c := range m.criteria {
		c.Info(a, info)
	}
	return info
}
