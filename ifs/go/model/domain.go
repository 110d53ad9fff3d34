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
	"math"
	"slices"
	"strconv"
)

// MaxDomainSize is the largest integer domain NewIntVariable accepts. Every integer of the domain
// becomes a Value, so bounds computations scan all of them.
const MaxDomainSize = 1 << 16

// ClosedInterval stores the closed interval `[Start,End]`. If `Start` is greater than `End`, the
// interval is empty.
type ClosedInterval struct {
	Start int64
	End   int64
}

func (c ClosedInterval) size() int64 {
	if c.Start > c.End {
		return 0
	}
	if n := c.End - c.Start + 1; n > 0 {
		return n
	}
	return math.MaxInt64
}

// Domain is a set of integers stored as a sorted list of non-adjacent closed intervals.
type Domain struct {
	intervals []ClosedInterval
}

// normalize drops empty intervals, sorts the remaining ones and merges those that overlap or
// touch.
func (d *Domain) normalize() {
	itvs := slices.DeleteFunc(d.intervals, func(c ClosedInterval) bool { return c.Start > c.End })
	if len(itvs) == 0 {
		d.intervals = nil
		return
	}
	slices.SortFunc(itvs, func(a, b ClosedInterval) int {
		if a.Start != b.Start {
			if a.Start < b.Start {
				return -1
			}
			return 1
		}
		switch {
		case a.End < b.End:
			return -1
		case a.End > b.End:
			return 1
		}
		return 0
	})
	merged := itvs[:1]
	for _, c := range itvs[1:] {
		last := &merged[len(merged)-1]
		if c.Start <= last.End || c.Start-1 == last.End {
			last.End = max(last.End, c.End)
			continue
		}
		merged = append(merged, c)
	}
	d.intervals = merged
}

// NewDomain creates the domain `[left,right]`. If `left > right`, the domain is empty.
func NewDomain(left, right int64) Domain {
	if left > right {
		return Domain{}
	}
	return Domain{[]ClosedInterval{{left, right}}}
}

// FromValues creates a domain containing `values`, which need not be sorted and can repeat.
func FromValues(values ...int64) Domain {
	var d Domain
	for _, v := range values {
		d.intervals = append(d.intervals, ClosedInterval{v, v})
	}
	d.normalize()
	return d
}

// FromIntervals creates a domain from the union of `intervals`.
func FromIntervals(intervals ...ClosedInterval) Domain {
	d := Domain{slices.Clone(intervals)}
	d.normalize()
	return d
}

// Intervals returns a copy of the normalized intervals of the domain.
func (d Domain) Intervals() []ClosedInterval {
	return slices.Clone(d.intervals)
}

// Min returns the smallest value of the domain, and false if the domain is empty.
func (d Domain) Min() (int64, bool) {
	if len(d.intervals) == 0 {
		return 0, false
	}
	return d.intervals[0].Start, true
}

// Max returns the largest value of the domain, and false if the domain is empty.
func (d Domain) Max() (int64, bool) {
	if len(d.intervals) == 0 {
		return 0, false
	}
	return d.intervals[len(d.intervals)-1].End, true
}

// Size returns the number of integers in the domain.
func (d Domain) Size() int64 {
	var n int64
	for _, c := range d.intervals {
		if n += c.size(); n < 0 {
			return math.MaxInt64
		}
	}
	return n
}

// Contains reports whether `v` belongs to the domain.
func (d Domain) Contains(v int64) bool {
	_, found := slices.BinarySearchFunc(d.intervals, v, func(c ClosedInterval, t int64) int {
		switch {
		case c.End < t:
			return -1
		case c.Start > t:
			return 1
		}
		return 0
	})
	return found
}

// Values returns all the integers of the domain in increasing order. Only domains no larger than
// MaxDomainSize get their full capacity up front.
func (d Domain) Values() []int64 {
	out := make([]int64, 0, min(d.Size(), MaxDomainSize))
	for _, c := range d.intervals {
		for v := c.Start; v <= c.End; v++ {
			out = append(out, v)
			if v == c.End {
				break
			}
		}
	}
	return out
}

// String returns the domain as `[a..b][c]`.
func (d Domain) String() string {
	out := ""
	for _, c := range d.intervals {
		if c.Start == c.End {
			out += fmt.Sprintf("[%d]", c.Start)
		} else {
			out += fmt.Sprintf("[%d..%d]", c.Start, c.End)
		}
	}
	return out
}

// NewIntVariable creates an integer variable whose values are the integers of `d`, adds it to the
// model and returns it. The weight of every value is the integer itself.
func (m *Model) NewIntVariable(name string, d Domain) (*Variable, error) {
	if size := d.Size(); size > MaxDomainSize {
		return nil, fmt.Errorf("domain %v of variable %q has %d values, more than %d: %w", d, name, size, MaxDomainSize, ErrDomainTooLarge)
	}
	v := NewVariable(name)
	for _, i := range d.Values() {
		v.AddValue(strconv.FormatInt(i, 10), float64(i))
	}
	m.AddVariable(v)
	return v, nil
}
