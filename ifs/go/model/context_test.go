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
	"errors"
	"sync"
	"testing"
)

type counterContext struct {
	assignment *Assignment
	n          int
}

// countingHolder is a minimal ContextHolder that counts how many contexts it created.
type countingHolder struct {
	Holder[*counterContext]
	created int
}

func (h *countingHolder) SetModel(m *Model) {
	h.Attach(m, h.CreateContext)
}

func (h *countingHolder) CreateContext(a *Assignment) *counterContext {
	h.created++
	return &counterContext{assignment: a}
}

var _ ContextHolder[*counterContext] = (*countingHolder)(nil)

func mustPanicWith(t *testing.T, want error, f func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, want) {
			t.Errorf("recovered %v, want panic with %v", r, want)
		}
	}()
	f()
}

func TestHolder_ContextIsCreatedOnce(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	a := m.NewAssignment()

	first := h.Context(a)
	first.n = 42
	for i := 0; i < 10; i++ {
		if got := h.Context(a); got != first {
			t.Fatalf("Context() call %d returned %p, want %p", i, got, first)
		}
	}
	if got := ContextOf(a, h.Reference()); got != first {
		t.Errorf("ContextOf() = %p, want the cached context %p", got, first)
	}
	if h.created != 1 {
		t.Errorf("created %d contexts, want 1", h.created)
	}
	if first.n != 42 {
		t.Errorf("context state = %d, want 42", first.n)
	}
}

func TestHolder_ContextPerAssignment(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	a1, a2 := m.NewAssignment(), m.NewAssignment()

	c1, c2 := h.Context(a1), h.Context(a2)
	if c1 == c2 {
		t.Fatalf("two assignments share the same context")
	}
	if c1.assignment != a1 || c2.assignment != a2 {
		t.Errorf("contexts were created for the wrong assignments")
	}
	if h.created != 2 {
		t.Errorf("created %d contexts, want 2", h.created)
	}
}

func TestHolder_FallsBackToAssignmentStore(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	a := m.NewAssignment()

	// A context created through the assignment store is found by the holder.
	stored := ContextOf(a, h.Reference())
	if got := h.Context(a); got != stored {
		t.Errorf("Context() = %p, want the stored context %p", got, stored)
	}
	// Losing the local cache only costs a lookup.
	h.cells.Store(nil)
	if got := h.Context(a); got != stored {
		t.Errorf("Context() after cache loss = %p, want %p", got, stored)
	}
	if h.created != 1 {
		t.Errorf("created %d contexts, want 1", h.created)
	}
}

func TestHolder_StaleSlotAfterIndexReuse(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	a := m.NewAssignment()
	old := h.Context(a)
	idx := a.Index()
	a.Release()

	b := m.NewAssignment()
	if b.Index() != idx {
		t.Fatalf("NewAssignment().Index() = %d, want the released index %d", b.Index(), idx)
	}
	if got := h.Context(b); got == old {
		t.Errorf("Context() returned the context of the released assignment")
	}
	if h.created != 2 {
		t.Errorf("created %d contexts, want 2", h.created)
	}
}

func TestHolder_Lookup(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	a := m.NewAssignment()
	if _, ok := h.Lookup(a); ok {
		t.Errorf("Lookup() found a context before it was created")
	}
	c := h.Context(a)
	if got, ok := h.Lookup(a); !ok || got != c {
		t.Errorf("Lookup() = %p, %v, want %p, true", got, ok, c)
	}
	if h.created != 1 {
		t.Errorf("created %d contexts, want 1", h.created)
	}
}

func TestHolder_ReattachMintsNewReference(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	ref := h.Reference()
	a := m.NewAssignment()
	before := h.Context(a)

	h.SetModel(nil)
	if h.Reference() != nil {
		t.Fatalf("Reference() after detach = %v, want nil", h.Reference())
	}
	h.SetModel(m)
	if h.Reference() == ref || h.Reference().ID() == ref.ID() {
		t.Errorf("re-attachment kept reference %d", ref.ID())
	}
	if got := h.Context(a); got == before {
		t.Errorf("Context() after re-attachment returned the context of the old reference")
	}
}

func TestHolder_ContractViolations(t *testing.T) {
	m := NewModel()
	a := m.NewAssignment()

	t.Run("uninitialized", func(t *testing.T) {
		h := &countingHolder{}
		mustPanicWith(t, ErrUninitializedHolder, func() { h.Context(a) })
	})
	t.Run("released", func(t *testing.T) {
		h := &countingHolder{}
		h.SetModel(m)
		r := m.NewAssignment()
		r.Release()
		mustPanicWith(t, ErrInvalidIndex, func() { h.Context(r) })
	})
	t.Run("foreign", func(t *testing.T) {
		h := &countingHolder{}
		h.SetModel(NewModel())
		mustPanicWith(t, ErrForeignAssignment, func() { h.Context(a) })
	})
}

func TestHolder_ConcurrentAssignments(t *testing.T) {
	m := NewModel()
	h := &countingHolder{}
	h.SetModel(m)
	const n = 32
	assignments := make([]*Assignment, n)
	for i := range assignments {
		assignments[i] = m.NewAssignment()
	}
	// Creation counts are not synchronized, so contexts are created up front.
	for _, a := range assignments {
		ContextOf(a, h.Reference())
	}

	var wg sync.WaitGroup
	for _, a := range assignments {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Context(a).n++
			}
		}()
	}
	wg.Wait()
	for _, a := range assignments {
		if got := h.Context(a).n; got != 100 {
			t.Errorf("assignment %d: n = %d, want 100", a.Index(), got)
		}
	}
}
