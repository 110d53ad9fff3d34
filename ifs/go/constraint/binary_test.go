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

package constraint

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ifsolver/ifs/ifs/go/model"
)

func differentValues(first, second *model.Value) bool {
	return first.Name() != second.Name()
}

func newPair(t *testing.T) (*model.Model, *model.Variable, *model.Variable) {
	t.Helper()
	m := model.NewModel()
	x, err := m.NewIntVariable("x", model.NewDomain(1, 3))
	if err != nil {
		t.Fatalf("NewIntVariable() err = %v", err)
	}
	y, err := m.NewIntVariable("y", model.NewDomain(1, 3))
	if err != nil {
		t.Fatalf("NewIntVariable() err = %v", err)
	}
	return m, x, y
}

func TestBinary_HardUnassignsConflicts(t *testing.T) {
	m, x, y := newPair(t)
	c := NewBinary("different", x, y, differentValues)
	m.AddConstraint(c)
	a := m.NewAssignment()

	m.Assign(a, 1, x.Values()[0])
	m.Assign(a, 2, y.Values()[1])
	if a.NrAssigned() != 2 {
		t.Fatalf("consistent values were unassigned")
	}
	m.Assign(a, 3, y.Values()[0])
	if a.Value(x) != nil {
		t.Errorf("Value(x) = %v, want nil after a conflicting assignment", a.Value(x))
	}
	if a.Value(y) != y.Values()[0] {
		t.Errorf("Value(y) = %v, want %v", a.Value(y), y.Values()[0])
	}
}

func TestBinary_Soft(t *testing.T) {
	m, x, y := newPair(t)
	c := NewBinary("different", x, y, differentValues)
	c.SetHard(false)
	m.AddConstraint(c)
	a := m.NewAssignment()

	m.Assign(a, 1, x.Values()[2])
	m.Assign(a, 2, y.Values()[2])
	if a.NrAssigned() != 2 {
		t.Errorf("a soft constraint unassigned a conflicting value")
	}
	got := c.Conflicts(a, y.Values()[2])
	if len(got) != 1 || got[0] != x.Values()[2] {
		t.Errorf("Conflicts() = %v, want [%v]", got, x.Values()[2])
	}
	if got := c.Conflicts(a, y.Values()[0]); got != nil {
		t.Errorf("Conflicts() of a consistent value = %v, want nil", got)
	}
}

func TestBinary_Accessors(t *testing.T) {
	m, x, y := newPair(t)
	// x must be strictly smaller than y.
	c := NewBinary("less", x, y, func(first, second *model.Value) bool {
		return first.Weight() < second.Weight()
	})
	if c.Model() != nil {
		t.Errorf("Model() = %v before AddConstraint, want nil", c.Model())
	}
	m.AddConstraint(c)

	if c.Another(x) != y || c.Another(y) != x {
		t.Errorf("Another() did not return the other variable")
	}
	if c.First() != x || c.Second() != y || len(c.Variables()) != 2 {
		t.Errorf("variables of the constraint are wrong")
	}
	if !c.IsHard() || c.Model() != m {
		t.Errorf("IsHard() = %v, Model() = %v, want true, %v", c.IsHard(), c.Model(), m)
	}
	if !c.IsConsistent(x.Values()[0], y.Values()[1]) || !c.IsConsistent(y.Values()[1], x.Values()[0]) {
		t.Errorf("IsConsistent(x=1, y=2) = false, want true in both orders")
	}
	if c.IsConsistent(y.Values()[0], x.Values()[1]) {
		t.Errorf("IsConsistent(y=1, x=2) = true, want false")
	}
	if got := c.String(); got != "less(x, y)" {
		t.Errorf("String() = %q, want %q", got, "less(x, y)")
	}
	if !NewBinary("any", x, y, nil).IsConsistent(x.Values()[0], y.Values()[0]) {
		t.Errorf("a nil ConsistencyFunc rejected a pair")
	}
}

// pairContext records what it is told and how many of its variables are assigned.
type pairContext struct {
	events   []string
	assigned int
	x        *model.Variable
}

func (c *pairContext) Assigned(a *model.Assignment, v *model.Value) {
	c.assigned++
	c.events = append(c.events, fmt.Sprintf("+%v (x=%v)", v, a.Value(c.x)))
}

func (c *pairContext) Unassigned(a *model.Assignment, v *model.Value) {
	c.assigned--
	c.events = append(c.events, fmt.Sprintf("-%v (x=%v)", v, a.Value(c.x)))
}

func newPairConstraint(x, y *model.Variable) *BinaryWithContext[*pairContext] {
	return NewBinaryWithContext("different", x, y, differentValues, func(a *model.Assignment) *pairContext {
		ctx := &pairContext{x: x}
		for _, v := range []*model.Variable{x, y} {
			if a.Value(v) != nil {
				ctx.assigned++
			}
		}
		return ctx
	})
}

func TestBinaryWithContext_SeesResolvedConflicts(t *testing.T) {
	m, x, y := newPair(t)
	c := newPairConstraint(x, y)
	m.AddConstraint(c)
	a := m.NewAssignment()

	m.Assign(a, 1, x.Values()[0])
	m.Assign(a, 2, y.Values()[0])

	want := []string{
		"+x=1 (x=x=1)",
		"-x=1 (x=<nil>)",
		"+y=1 (x=<nil>)",
	}
	ctx := c.Context(a)
	if diff := cmp.Diff(want, ctx.events); diff != "" {
		t.Errorf("context events returned with unexpected diff (-want+got);\n%s", diff)
	}
	if ctx.assigned != 1 {
		t.Errorf("assigned = %d, want 1", ctx.assigned)
	}
}

func TestBinaryWithContext_PerAssignment(t *testing.T) {
	m, x, y := newPair(t)
	c := newPairConstraint(x, y)
	m.AddConstraint(c)
	a := m.NewAssignment()
	m.Assign(a, 1, x.Values()[1])

	b := a.Clone()
	m.Assign(b, 2, y.Values()[2])
	if got := c.Context(a).assigned; got != 1 {
		t.Errorf("Context(a).assigned = %d, want 1", got)
	}
	if got := c.Context(b).assigned; got != 2 {
		t.Errorf("Context(clone).assigned = %d, want 2", got)
	}
	if c.Reference() == nil || c.Reference().Model() != m {
		t.Errorf("Reference() is not bound to the model")
	}
}

func TestBinaryWithContext_AddedToLiveAssignment(t *testing.T) {
	m, x, y := newPair(t)
	a := m.NewAssignment()
	m.Assign(a, 1, x.Values()[0])

	// The context is created when the constraint joins the model and starts from x=1.
	c := newPairConstraint(x, y)
	m.AddConstraint(c)
	ctx := c.Context(a)
	if ctx.assigned != 1 || len(ctx.events) != 0 {
		t.Fatalf("new context: assigned = %d, events = %v, want 1, none", ctx.assigned, ctx.events)
	}

	// y=1 conflicts with x=1: x is unassigned while y is being assigned.
	m.Assign(a, 2, y.Values()[0])
	want := []string{
		"-x=1 (x=<nil>)",
		"+y=1 (x=<nil>)",
	}
	if diff := cmp.Diff(want, ctx.events); diff != "" {
		t.Errorf("context events returned with unexpected diff (-want+got);\n%s", diff)
	}
	if ctx.assigned != a.NrAssigned() {
		t.Errorf("context assigned = %d, assignment has %d", ctx.assigned, a.NrAssigned())
	}

	m.RemoveConstraint(c)
	if c.Reference() != nil {
		t.Errorf("Reference() after RemoveConstraint = %v, want nil", c.Reference())
	}
}

func TestBinaryWithContext_ReleasedAssignmentsAreSkipped(t *testing.T) {
	m, x, y := newPair(t)
	released := m.NewAssignment()
	released.Release()
	kept := m.NewAssignment()
	created := 0
	c := NewBinaryWithContext("different", x, y, differentValues, func(a *model.Assignment) *pairContext {
		created++
		return &pairContext{x: x}
	})
	m.AddConstraint(c)
	if created != 1 {
		t.Errorf("created %d contexts, want 1", created)
	}
	if got := c.Context(kept); got == nil {
		t.Errorf("Context() of a live assignment = nil")
	}
	if created != 1 {
		t.Errorf("Context() created another context for a live assignment")
	}
}
