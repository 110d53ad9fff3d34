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

import "github.com/ifsolver/ifs/ifs/go/model"

// ValueContext is the state of a criterion in one assignment: the running total and the cached
// bounds.
type ValueContext struct {
	base      *Base
	total     float64
	bounds    *[2]float64
	boundsGen uint64
}

// Assigned adds the contribution of `v` to the total.
func (c *ValueContext) Assigned(a *model.Assignment, v *model.Value) {
	c.total += c.base.valueOf(a, v, nil)
}

// Unassigned subtracts the contribution of `v` from the total.
func (c *ValueContext) Unassigned(a *model.Assignment, v *model.Value) {
	c.total -= c.base.valueOf(a, v, nil)
}

// Total returns the running total.
func (c *ValueContext) Total() float64 {
	return c.total
}

// SetTotal overwrites the running total.
func (c *ValueContext) SetTotal(total float64) {
	c.total = total
}

// Inc adds `delta` to the running total.
func (c *ValueContext) Inc(delta float64) {
	c.total += delta
}

// Bounds returns the cached bounds, computing them first if they are missing or were invalidated.
func (c *ValueContext) Bounds(a *model.Assignment) [2]float64 {
	if gen := c.base.boundsGen.Load(); c.bounds == nil || c.boundsGen != gen {
		b := c.base.computeBounds(a)
		c.bounds, c.boundsGen = &b, gen
	}
	return *c.bounds
}

// SetBounds replaces the cached bounds; nil drops them.
func (c *ValueContext) SetBounds(bounds *[2]float64) {
	c.bounds = bounds
	c.boundsGen = c.base.boundsGen.Load()
}
