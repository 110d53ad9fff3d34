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

// Package criteria implements weighted optimization criteria whose values are maintained
// incrementally while values are assigned and unassigned.
//
// An optimization objective is split into several criteria and modeled as their weighted sum. A
// concrete criterion embeds `*Base` and only defines `ValueOf`, the contribution of a single value:
//
//	type TimePreferences struct{ *criteria.Base }
//
//	func NewTimePreferences() *TimePreferences {
//		c := &TimePreferences{}
//		c.Base = criteria.NewBase(c)
//		return c
//	}
//
//	func (c *TimePreferences) ValueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64 {
//		return v.Weight()
//	}
//
// `Base` keeps one `ValueContext` per assignment holding the running total and the cached bounds.
package criteria

import (
	"fmt"
	"reflect"
	"regexp"
	"sync/atomic"

	log "github.com/golang/glog"
	"github.com/ifsolver/ifs/ifs/go/config"
	"github.com/ifsolver/ifs/ifs/go/model"
)

// Evaluator computes the contribution of a single value to a criterion. It must not modify the
// assignment. `conflicts` lists the values the move would displace and may be nil.
type Evaluator interface {
	ValueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64
}

// BoundsComputer can be implemented by a criterion to replace the default whole-model bounds
// computation.
type BoundsComputer interface {
	ComputeBounds(a *model.Assignment) [2]float64
}

// WeightDefaulter can be implemented by a criterion to supply the weight used when the
// configuration has no `Weight.<TypeName>` key.
type WeightDefaulter interface {
	WeightDefault(p *config.Properties) float64
}

// Criterion is a weighted, incrementally maintained term of the objective.
type Criterion interface {
	model.Criterion
	model.ContextHolder[*ValueContext]
	Evaluator

	// Init reads the weight and the debug flag from the configuration.
	Init(p *config.Properties)

	Value(a *model.Assignment) float64
	VariablesValue(a *model.Assignment, variables []*model.Variable) float64
	WeightedValueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64
	WeightedVariablesValue(a *model.Assignment, variables []*model.Variable) float64

	Weight() float64
	Best() float64
	WeightedBest() float64

	Bounds(a *model.Assignment) [2]float64
	VariablesBounds(a *model.Assignment, variables []*model.Variable) [2]float64

	Inc(a *model.Assignment, delta float64)
}

// Option configures a Base.
type Option func(*Base)

// WithPolicy sets the update policy of the criterion.
func WithPolicy(p UpdatePolicy) Option {
	return func(b *Base) { b.policy = p }
}

// WithWeight sets the weight used until Init is called.
func WithWeight(w float64) Option {
	return func(b *Base) { b.weight = w }
}

// WithTypeName overrides the type name used for configuration keys and the display name.
func WithTypeName(name string) Option {
	return func(b *Base) { b.typeName = name }
}

// WithDebug enables the Info output until Init is called.
func WithDebug(debug bool) Option {
	return func(b *Base) { b.debug = debug }
}

// Base implements everything of a Criterion except ValueOf, which is delegated to the Evaluator
// given to NewBase.
type Base struct {
	eval     Evaluator
	typeName string
	policy   UpdatePolicy
	model    *model.Model
	holder   model.Holder[*ValueContext]

	weight float64
	best   float64
	debug  bool

	// boundsGen is bumped by InvalidateBounds; cached bounds of an older generation are stale.
	boundsGen atomic.Uint64
}

// NewBase creates the shared part of a criterion. `eval` is normally the criterion embedding the
// returned Base. The update policy defaults to AfterUnassignedAfterAssigned.
func NewBase(eval Evaluator, opts ...Option) *Base {
	b := &Base{eval: eval, policy: AfterUnassignedAfterAssigned}
	for _, opt := range opts {
		opt(b)
	}
	if b.typeName == "" {
		b.typeName = typeName(eval)
	}
	return b
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "Criterion"
	}
	return t.Name()
}

// TypeName returns the name used in the `Weight.` and `Debug.` configuration keys.
func (b *Base) TypeName() string {
	return b.typeName
}

// WeightName returns the configuration key holding the weight of the criterion.
func (b *Base) WeightName() string {
	return "Weight." + b.typeName
}

// DebugName returns the configuration key enabling the Info output of the criterion.
func (b *Base) DebugName() string {
	return "Debug." + b.typeName
}

var wordStart = regexp.MustCompile(`([^A-Z])([A-Z])`)

// Name returns the type name split into words, e.g. "Time Preferences".
func (b *Base) Name() string {
	return wordStart.ReplaceAllString(b.typeName, "$1 $2")
}

// Init reads the weight from `Weight.<TypeName>` and the debug flag from `Debug.<TypeName>`,
// falling back to `Debug.Criterion`.
func (b *Base) Init(p *config.Properties) {
	def := 0.0
	if wd, ok := b.eval.(WeightDefaulter); ok {
		def = wd.WeightDefault(p)
	}
	b.weight = p.Float(b.WeightName(), def)
	b.debug = p.Bool(b.DebugName(), p.Bool("Debug.Criterion", false))
	log.V(1).Infof("criterion %s: weight %v, policy %v, debug %v", b.Name(), b.weight, b.policy, b.debug)
}

// SetModel attaches the criterion to a model. A new context reference is minted each time.
func (b *Base) SetModel(m *model.Model) {
	b.model = m
	b.holder.Attach(m, b.CreateContext)
}

// Model returns the model of the criterion, or nil.
func (b *Base) Model() *model.Model {
	return b.model
}

// Reference returns the context reference of the criterion, nil before SetModel.
func (b *Base) Reference() *model.Reference[*ValueContext] {
	return b.holder.Reference()
}

// Context returns the ValueContext of the criterion for assignment `a`.
func (b *Base) Context(a *model.Assignment) *ValueContext {
	return b.holder.Context(a)
}

// CreateContext creates a ValueContext for `a`. Unless the criterion is updated manually, its total
// starts at the value of the variables already assigned.
func (b *Base) CreateContext(a *model.Assignment) *ValueContext {
	c := &ValueContext{base: b}
	if b.policy != NoUpdate {
		c.total = b.VariablesValue(a, a.AssignedVariables())
	}
	return c
}

// InitContext creates the context of `a`. The model calls it for every live assignment when the
// criterion is added and for every new assignment, so hooks always find an existing context.
func (b *Base) InitContext(a *model.Assignment) {
	b.Context(a)
}

// Policy returns the update policy of the criterion.
func (b *Base) Policy() UpdatePolicy {
	return b.policy
}

// Weight returns the weight of the criterion.
func (b *Base) Weight() float64 {
	return b.weight
}

// Debug reports whether Info produces output.
func (b *Base) Debug() bool {
	return b.debug
}

// Value returns the running total of the criterion in `a`.
func (b *Base) Value(a *model.Assignment) float64 {
	return b.Context(a).Total()
}

func (b *Base) valueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64 {
	return b.eval.ValueOf(a, v, conflicts)
}

// VariablesValue recomputes the value of the criterion over `variables` from the values assigned
// in `a`. It is meant for consistency checks, not for the evaluation of moves.
func (b *Base) VariablesValue(a *model.Assignment, variables []*model.Variable) float64 {
	var ret float64
	for _, v := range variables {
		if val := a.Value(v); val != nil {
			ret += b.valueOf(a, val, nil)
		}
	}
	return ret
}

// WeightedValue returns Weight() * Value(a), or exactly 0 when the weight is 0.
func (b *Base) WeightedValue(a *model.Assignment) float64 {
	if b.weight == 0.0 {
		return 0.0
	}
	return b.weight * b.Value(a)
}

// WeightedValueOf returns Weight() times the contribution of `v`, or exactly 0 when the weight
// is 0.
func (b *Base) WeightedValueOf(a *model.Assignment, v *model.Value, conflicts []*model.Value) float64 {
	if b.weight == 0.0 {
		return 0.0
	}
	return b.weight * b.valueOf(a, v, conflicts)
}

// WeightedVariablesValue returns Weight() * VariablesValue(a, variables), or exactly 0 when the
// weight is 0.
func (b *Base) WeightedVariablesValue(a *model.Assignment, variables []*model.Variable) float64 {
	if b.weight == 0.0 {
		return 0.0
	}
	return b.weight * b.VariablesValue(a, variables)
}

// Best returns the value snapshot taken by the last BestSaved.
func (b *Base) Best() float64 {
	return b.best
}

// WeightedBest returns Weight() * Best(), or exactly 0 when the weight is 0.
func (b *Base) WeightedBest() float64 {
	if b.weight == 0.0 {
		return 0.0
	}
	return b.weight * b.best
}

// Bounds returns the cached bounds of the criterion over all variables of the model.
func (b *Base) Bounds(a *model.Assignment) [2]float64 {
	return b.Context(a).Bounds(a)
}

// computeBounds computes the bounds cached by ValueContext.
func (b *Base) computeBounds(a *model.Assignment) [2]float64 {
	if bc, ok := b.eval.(BoundsComputer); ok {
		return bc.ComputeBounds(a)
	}
	if b.model == nil {
		return [2]float64{}
	}
	return b.VariablesBounds(a, b.model.Variables())
}

// VariablesBounds sums, over `variables`, the smallest and the largest contribution among the
// values of each variable. Variables without values are ignored. The result is a relaxation used
// to normalize reported values; it is not attainable in general.
func (b *Base) VariablesBounds(a *model.Assignment, variables []*model.Variable) [2]float64 {
	var bounds [2]float64
	for _, v := range variables {
		values := v.Values()
		if len(values) == 0 {
			continue
		}
		lo := b.valueOf(a, values[0], nil)
		hi := lo
		for _, val := range values[1:] {
			x := b.valueOf(a, val, nil)
			lo = min(lo, x)
			hi = max(hi, x)
		}
		bounds[0] += lo
		bounds[1] += hi
	}
	return bounds
}

// InvalidateBounds drops the cached bounds of every assignment.
func (b *Base) InvalidateBounds() {
	b.boundsGen.Add(1)
}

// ClearCache drops the cached bounds of assignment `a`.
func (b *Base) ClearCache(a *model.Assignment) {
	b.Context(a).SetBounds(nil)
}

func (b *Base) fire(h hook, a *model.Assignment, v *model.Value) {
	if !b.policy.updatesOn(h) {
		return
	}
	ctx := b.Context(a)
	if h.assigns() {
		ctx.Assigned(a, v)
	} else {
		ctx.Unassigned(a, v)
	}
}

// BeforeAssigned is called before `v` is assigned.
func (b *Base) BeforeAssigned(a *model.Assignment, iteration int64, v *model.Value) {
	b.fire(beforeAssigned, a, v)
}

// AfterAssigned is called after `v` has been assigned.
func (b *Base) AfterAssigned(a *model.Assignment, iteration int64, v *model.Value) {
	b.fire(afterAssigned, a, v)
}

// BeforeUnassigned is called before `v` is unassigned.
func (b *Base) BeforeUnassigned(a *model.Assignment, iteration int64, v *model.Value) {
	b.fire(beforeUnassigned, a, v)
}

// AfterUnassigned is called after `v` has been unassigned.
func (b *Base) AfterUnassigned(a *model.Assignment, iteration int64, v *model.Value) {
	b.fire(afterUnassigned, a, v)
}

// BestSaved snapshots the current value of `a` as the best value.
func (b *Base) BestSaved(a *model.Assignment) {
	b.best = b.Context(a).Total()
}

// BestRestored sets the current value of `a` to the snapshot taken by BestSaved.
func (b *Base) BestRestored(a *model.Assignment) {
	b.Context(a).SetTotal(b.best)
}

// Inc adds `delta` to the current value of `a`. This is how criteria with the NoUpdate policy
// are maintained.
func (b *Base) Inc(a *model.Assignment, delta float64) {
	b.Context(a).Inc(delta)
}

// VariableAdded does nothing. Criteria whose bounds depend on the structure of the model override
// it and call InvalidateBounds.
func (b *Base) VariableAdded(v *model.Variable) {}

// VariableRemoved does nothing; see VariableAdded.
func (b *Base) VariableRemoved(v *model.Variable) {}

// ConstraintAdded does nothing; see VariableAdded.
func (b *Base) ConstraintAdded(c model.Constraint) {}

// ConstraintRemoved does nothing; see VariableAdded.
func (b *Base) ConstraintRemoved(c model.Constraint) {}

func (b *Base) String() string {
	return fmt.Sprintf("%s(weight=%v, policy=%v)", b.Name(), b.weight, b.policy)
}
