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

import (
	"fmt"

	"github.com/ifsolver/ifs/ifs/go/model"
	"google.golang.org/protobuf/types/known/structpb"
)

// Report returns the state of every Criterion of the model of `a` as a proto Struct:
//
//	total: <sum of weighted values>
//	criteria: { "<Name>": { value, weighted, weight, best, min, max } }
//
// Criteria of the model that do not implement Criterion only contribute to the total.
func Report(a *model.Assignment) (*structpb.Struct, error) {
	m := a.Model()
	crits := make(map[string]any)
	for _, mc := range m.Criteria() {
		c, ok := mc.(Criterion)
		if !ok {
			continue
		}
		bounds := c.Bounds(a)
		crits[c.Name()] = map[string]any{
			"value":    c.Value(a),
			"weighted": c.WeightedValue(a),
			"weight":   c.Weight(),
			"best":     c.Best(),
			"min":      bounds[0],
			"max":      bounds[1],
		}
	}
	s, err := structpb.NewStruct(map[string]any{
		"total":    m.TotalValue(a),
		"criteria": crits,
	})
	if err != nil {
		return nil, fmt.Errorf("building report for assignment %d: %w", a.Index(), err)
	}
	return s, nil
}
