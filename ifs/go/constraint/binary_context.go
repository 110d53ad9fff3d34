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

import "github.com/ifsolver/ifs/ifs/go/model"

// Context is the per-assignment state of a constraint. It is kept up to date with the values of
// the variables of the constraint.
type Context interface {
	Assigned(a *model.Assignment, v *model.Value)
	Unassigned(a *model.Assignment, v *model.Value)
}

// ContextFactory creates the context of a constraint for an assignment. The new context must
// reflect the values already assigned in `a`.
type ContextFactory[C Context] func(a *model.Assignment) C

// BinaryWithContext is a binary constraint with a context per assignment. After the binary
// constraint has done its own work on an assignment or unassignment, the change is forwarded to
// the context, so the context always sees the conflicts already removed.
type BinaryWithContext[C Context] struct {
	*Binary
	create ContextFactory[C]
	holder model.Holder[C]
}

// NewBinaryWithContext creates a hard binary constraint whose contexts are made by `create`.
func NewBinaryWithContext[C Context](name string, first, second *model.Variable, consistent ConsistencyFunc, create ContextFactory[C]) *BinaryWithContext[C] {
	return &BinaryWithContext[C]{Binary: NewBinary(name, first, second, consistent), create: create}
}

// SetModel attaches the constraint to a model and mints a new context reference.
func (c *BinaryWithContext[C]) SetModel(m *model.Model) {
	c.Binary.SetModel(m)
	c.holder.Attach(m, c.CreateContext)
}

// Reference returns the context reference of the constraint, nil before SetModel.
func (c *BinaryWithContext[C]) Reference() *model.Reference[C] {
	return c.holder.Reference()
}

// Context returns the context of the constraint for assignment `a`.
func (c *BinaryWithContext[C]) Context(a *model.Assignment) C {
	return c.holder.Context(a)
}

// CreateContext creates a new context for `a`.
func (c *BinaryWithContext[C]) CreateContext(a *model.Assignment) C {
	return c.create(a)
}

// InitContext creates the context of `a`. The model calls it for every live assignment when the
// constraint is added and for every new assignment, so notifications always find an existing
// context.
func (c *BinaryWithContext[C]) InitContext(a *model.Assignment) {
	c.Context(a)
}

// Assigned runs the binary constraint and then updates the context.
func (c *BinaryWithContext[C]) Assigned(a *model.Assignment, iteration int64, v *model.Value) {
	c.Binary.Assigned(a, iteration, v)
	c.Context(a).Assigned(a, v)
}

// Unassigned runs the binary constraint and then updates the context.
func (c *BinaryWithContext[C]) Unassigned(a *model.Assignment, iteration int64, v *model.Value) {
	c.Binary.Unassigned(a, iteration, v)
	c.Context(a).Unassigned(a, v)
}
