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

import "fmt"

// UpdatePolicy selects which assignment hooks update the value of a criterion. A reassignment is
// an unassignment of the old value followed by an assignment of the new one; "before" hooks see
// the assignment as it was, "after" hooks see it with the change applied.
type UpdatePolicy int

const (
	// BeforeUnassignedBeforeAssigned decrements before an unassignment and increments before an
	// assignment.
	BeforeUnassignedBeforeAssigned UpdatePolicy = iota
	// AfterUnassignedBeforeAssigned decrements after an unassignment and increments before an
	// assignment.
	AfterUnassignedBeforeAssigned
	// BeforeUnassignedAfterAssigned decrements before an unassignment and increments after an
	// assignment.
	BeforeUnassignedAfterAssigned
	// AfterUnassignedAfterAssigned decrements after an unassignment and increments after an
	// assignment. This is the default.
	AfterUnassignedAfterAssigned
	// NoUpdate leaves the value alone; the criterion is maintained with Inc.
	NoUpdate
)

type hook int

const (
	beforeAssigned hook = iota
	afterAssigned
	beforeUnassigned
	afterUnassigned
)

func (h hook) assigns() bool {
	return h == beforeAssigned || h == afterAssigned
}

// updateTable tells, for every policy, which hooks update the ValueContext. Assign hooks
// increment it, unassign hooks decrement it.
var updateTable = [...][4]bool{
	BeforeUnassignedBeforeAssigned: {beforeAssigned: true, beforeUnassigned: true},
	AfterUnassignedBeforeAssigned:  {beforeAssigned: true, afterUnassigned: true},
	BeforeUnassignedAfterAssigned:  {afterAssigned: true, beforeUnassigned: true},
	AfterUnassignedAfterAssigned:   {afterAssigned: true, afterUnassigned: true},
	NoUpdate:                       {},
}

func (p UpdatePolicy) updatesOn(h hook) bool {
	return p >= 0 && int(p) < len(updateTable) && updateTable[p][h]
}

func (p UpdatePolicy) String() string {
	switch p {
	case BeforeUnassignedBeforeAssigned:
		return "BeforeUnassignedBeforeAssigned"
	case AfterUnassignedBeforeAssigned:
		return "AfterUnassignedBeforeAssigned"
	case BeforeUnassignedAfterAssigned:
		return "BeforeUnassignedAfterAssigned"
	case AfterUnassignedAfterAssigned:
		return "AfterUnassignedAfterAssigned"
	case NoUpdate:
		return "NoUpdate"
	}
	return fmt.Sprintf("UpdatePolicy(%d)", int(p))
}
