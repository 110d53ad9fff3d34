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
	"math"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/ifsolver/ifs/ifs/go/model"
)

// DriftEpsilon is the largest difference between the running total and the recomputed value that
// is not reported.
const DriftEpsilon = 0.0001

// FormatNumber formats `v` with at most two decimals and no trailing zeros, e.g. 3, 2.5, 0.33.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// Percentage returns how close `value` is to `lo` within `[lo, hi]`, as a formatted percentage:
// 100 at `lo` and 0 at `hi`. It returns "100" when the range is empty.
func Percentage(value, lo, hi float64) string {
	if hi == lo {
		return FormatNumber(100.0)
	}
	return FormatNumber(100.0 - 100.0*(value-lo)/(hi-lo))
}

// PercentageReversed is the mirror of Percentage for criteria whose bounds run from high to low: 0
// at `lo` and 100 at `hi`. It returns "0" when the range is empty.
func PercentageReversed(value, lo, hi float64) string {
	if hi == lo {
		return FormatNumber(0.0)
	}
	return FormatNumber(100.0 * (value - lo) / (hi - lo))
}

func infoKey(name string) string {
	return "[C] " + name
}

// Info adds a line describing the criterion to `info` when debugging is enabled for it. The line
// shows how far the value is within the bounds, the value, the weighted value and the bounds.
// When the running total differs from the recomputed value, the recomputed value is shown as
// "precise".
func (b *Base) Info(a *model.Assignment, info map[string]string) {
	if !b.debug || b.model == nil {
		return
	}
	val, w := b.Value(a), b.WeightedValue(a)
	prec := b.VariablesValue(a, b.model.Variables())
	bounds := b.Bounds(a)
	precise := ""
	if math.Abs(prec-val) > DriftEpsilon {
		log.Warningf("criterion %s drifted: value %v, precise %v", b.Name(), val, prec)
		precise = "precise:" + FormatNumber(prec)
	}
	lo, hi := bounds[0], bounds[1]
	var sb strings.Builder
	switch {
	case lo <= val && val <= hi && lo < hi:
		sb.WriteString(Percentage(val, lo, hi) + "% (value: " + FormatNumber(val))
		if precise != "" {
			sb.WriteString(", " + precise)
		}
		sb.WriteString(", weighted:" + FormatNumber(w) + ", bounds: " + FormatNumber(lo) + ".." + FormatNumber(hi) + ")")
	case hi <= val && val <= lo && hi < lo:
		sb.WriteString(PercentageReversed(val, hi, lo) + "% (value: " + FormatNumber(val))
		if precise != "" {
			sb.WriteString(", " + precise)
		}
		sb.WriteString(", weighted:" + FormatNumber(w) + ", bounds: " + FormatNumber(hi) + ".." + FormatNumber(lo) + ")")
	case lo != val || val != hi:
		sb.WriteString(FormatNumber(val) + " (")
		if precise != "" {
			sb.WriteString(precise + ", ")
		}
		sb.WriteString("weighted:" + FormatNumber(w))
		if lo != hi {
			sb.WriteString(", bounds: " + FormatNumber(lo) + ".." + FormatNumber(hi))
		}
		sb.WriteString(")")
	default:
		return
	}
	info[infoKey(b.Name())] = sb.String()
}

// VariablesInfo is like Info but restricted to `variables`; the value and the bounds are
// recomputed over them.
func (b *Base) VariablesInfo(a *model.Assignment, info map[string]string, variables []*model.Variable) {
	if !b.debug {
		return
	}
	val, w := b.VariablesValue(a, variables), b.WeightedVariablesValue(a, variables)
	bounds := b.VariablesBounds(a, variables)
	lo, hi := bounds[0], bounds[1]
	switch {
	case lo <= val && val <= hi:
		info[infoKey(b.Name())] = Percentage(val, lo, hi) + "% (value: " + FormatNumber(val) +
			", weighted:" + FormatNumber(w) + ", bounds: " + FormatNumber(lo) + ".." + FormatNumber(hi) + ")"
	case hi <= val && val <= lo:
		info[infoKey(b.Name())] = PercentageReversed(val, hi, lo) + "% (value: " + FormatNumber(val) +
			", weighted:" + FormatNumber(w) + ", bounds: " + FormatNumber(hi) + ".." + FormatNumber(lo) + ")"
	case lo != val || val != hi:
		s := FormatNumber(val) + " (weighted:" + FormatNumber(w)
		if lo != hi {
			s += ", bounds: " + FormatNumber(lo) + ".." + FormatNumber(hi)
		}
		info[infoKey(b.Name())] = s + ")"
	}
}
