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
	"sync"
	"sync/atomic"

	log "github.com/golang/glog"
)

// AssignmentContext is any per-assignment state kept by a component of the model. It has no
// required methods; the type parameter of Reference and Holder makes lookups type safe.
type AssignmentContext = any

// ContextHolder is implemented by components that own per-assignment state, such as criteria and
// constraints with a context.
type ContextHolder[C AssignmentContext] interface {
	// SetModel attaches the holder to a model, or detaches it when `m` is nil.
	SetModel(m *Model)
	// Context returns the context of the holder for the given assignment, creating it on first
	// access.
	Context(a *Assignment) C
	// CreateContext creates a new context for the given assignment. It is called at most once per
	// (holder, assignment) pair.
	CreateContext(a *Assignment) C
}

// ContextInitializer is implemented by components that want their contexts created as soon as a
// new assignment is made by the model, and in every live assignment when they join the model.
type ContextInitializer interface {
	InitContext(a *Assignment)
}

var referenceIDs atomic.Uint64

// Reference locates the context of one holder inside any assignment of a model. A reference is
// minted when the holder is attached to the model and never changes afterwards.
type Reference[C AssignmentContext] struct {
	id     uint64
	model  *Model
	create func(*Assignment) C
}

// NewReference mints a new unique reference for a holder of model `m`. `create` is called by
// ContextOf the first time an assignment is asked for the referenced context.
func NewReference[C AssignmentContext](m *Model, create func(*Assignment) C) *Reference[C] {
	return &Reference[C]{id: referenceIDs.Add(1), model: m, create: create}
}

// ID returns the unique identifier of the reference.
func (r *Reference[C]) ID() uint64 {
	return r.id
}

// Model returns the model the reference was created for.
func (r *Reference[C]) Model() *Model {
	return r.model
}

// ContextOf returns the context located by `ref` in the assignment store of `a`. The context is
// created, and stored with the assignment, if this is the first request.
func ContextOf[C AssignmentContext](a *Assignment, ref *Reference[C]) C {
	if ref == nil {
		contractViolation(fmt.Errorf("context requested for assignment %d: %w", a.Index(), ErrUninitializedHolder))
	}
	if a.Index() < 0 {
		contractViolation(fmt.Errorf("context requested for assignment index %d: %w", a.Index(), ErrInvalidIndex))
	}
	if ref.model != a.model {
		contractViolation(fmt.Errorf("reference %d used with assignment %d: %w", ref.id, a.Index(), ErrForeignAssignment))
	}
	if c, ok := a.contexts[ref.id]; ok {
		return c.(C)
	}
	c := ref.create(a)
	if a.contexts == nil {
		a.contexts = make(map[uint64]AssignmentContext)
	}
	a.contexts[ref.id] = c
	return c
}

// LookupContext returns the context located by `ref` in `a` if it was already created.
func LookupContext[C AssignmentContext](a *Assignment, ref *Reference[C]) (C, bool) {
	if ref == nil || a.contexts == nil {
		var zero C
		return zero, false
	}
	c, ok := a.contexts[ref.id]
	if !ok {
		var zero C
		return zero, false
	}
	return c.(C), true
}

// cachedContext is one slot of the Holder cache. `owner` identifies the assignment the context was
// created for, so a slot left behind by a released assignment is never returned for the
// assignment that reuses its index.
type cachedContext[C AssignmentContext] struct {
	owner *Assignment
	ctx   C
}

type cacheCell[C AssignmentContext] struct {
	slot atomic.Pointer[cachedContext[C]]
}

// Holder implements the context lookup of a ContextHolder. Components embed a Holder and attach
// it from their SetModel method.
//
// Lookups first try a local array indexed by the assignment index and fall back to the store of
// the assignment, which stays the only place where contexts are created. The array only grows;
// growing copies the cell pointers, so lookups for other assignment indices may run concurrently.
type Holder[C AssignmentContext] struct {
	ref   *Reference[C]
	cells atomic.Pointer[[]*cacheCell[C]]
	grow  sync.Mutex
}

// Attach mints a new reference for model `m` and drops the local cache. Attaching to a nil model
// detaches the holder.
func (h *Holder[C]) Attach(m *Model, create func(*Assignment) C) {
	h.cells.Store(nil)
	if m == nil {
		h.ref = nil
		return
	}
	h.ref = NewReference(m, create)
	log.V(2).Infof("attached context holder with reference %d", h.ref.id)
}

// Reference returns the current reference of the holder, nil if the holder is not attached.
func (h *Holder[C]) Reference() *Reference[C] {
	return h.ref
}

// Context returns the context for assignment `a`.
func (h *Holder[C]) Context(a *Assignment) C {
	idx := a.Index()
	if idx < 0 {
		contractViolation(fmt.Errorf("context requested for assignment index %d: %w", idx, ErrInvalidIndex))
	}
	if cells := h.cells.Load(); cells != nil && idx < len(*cells) {
		if s := (*cells)[idx].slot.Load(); s != nil && s.owner == a {
			return s.ctx
		}
	}
	c := ContextOf(a, h.ref)
	h.cell(idx).slot.Store(&cachedContext[C]{owner: a, ctx: c})
	return c
}

// Lookup returns the context for assignment `a` without creating it.
func (h *Holder[C]) Lookup(a *Assignment) (C, bool) {
	if idx := a.Index(); idx >= 0 {
		if cells := h.cells.Load(); cells != nil && idx < len(*cells) {
			if s := (*cells)[idx].slot.Load(); s != nil && s.owner == a {
				return s.ctx, true
			}
		}
	}
	return LookupContext(a, h.ref)
}

// cell returns the cache cell for assignment index `idx`, growing the cache if needed.
func (h *Holder[C]) cell(idx int) *cacheCell[C] {
	if cells := h.cells.Load(); cells != nil && idx < len(*cells) {
		return (*cells)[idx]
	}
	h.grow.Lock()
	defer h.grow.Unlock()
	var old []*cacheCell[C]
	if cells := h.cells.Load(); cells != nil {
		if idx < len(*cells) {
			return (*cells)[idx]
		}
		old = *cells
	}
	grown := make([]*cacheCell[C], max(idx+1, 2*len(old)))
	copy(grown, old)
	for i := len(old); i < len(grown); i++ {
		grown[i] = &cacheCell[C]{}
	}
	h.cells.Store(&grown)
	return grown[idx]
}
