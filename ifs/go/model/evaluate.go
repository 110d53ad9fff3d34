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
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Evaluate returns the TotalValue of each assignment, computed in parallel. Each assignment is read
// by exactly one goroutine, so the assignments must be distinct and must not be modified while
// Evaluate runs.
func (m *Model) Evaluate(ctx context.Context, assignments ...*Assignment) ([]float64, error) {
	seen := make(map[*Assignment]bool, len(assignments))
	for _, a := range assignments {
		if seen[a] {
			return nil, fmt.Errorf("assignment %d: %w", a.Index(), ErrDuplicateAssignment)
		}
		seen[a] = true
		if a.model != m {
			return nil, fmt.Errorf("assignment %d: %w", a.Index(), ErrForeignAssignment)
		}
		if a.Index() < 0 {
			return nil, fmt.Errorf("released assignment: %w", ErrInvalidIndex)
		}
	}

	totals := make([]float64, len(assignments))
	g, ctx := errgroup.WithContext(ctx)
	for i, a := range assignments {
		i, a := i, a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			totals[i] = m.TotalValue(a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluating %d assignments: %w", len(assignments), err)
	}
	return totals, nil
}
