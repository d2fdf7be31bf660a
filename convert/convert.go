/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package convert maps native Go types to transportable schemas and
// converters. A Registry holds an ordered list of strategies; the first
// strategy that handles a type wins.
package convert

import (
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/opentype"
	uref "dirpx.dev/mgmt/utils/reflect"
)

var (
	// ErrNoStrategy is returned when no strategy handles a type.
	ErrNoStrategy = errors.New("mgmt(convert): no conversion strategy")
	// ErrCycle is returned when a composite type contains itself.
	ErrCycle = errors.New("mgmt(convert): recursive composite type")
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("mgmt(convert): nil reflect.Type provided")
)

// Binding is the outcome of resolving a type: its transport schema and
// the converter between native and transport values.
type Binding struct {
	Schema    opentype.Type
	Converter access.Converter
}

// Trail lists the composite types currently being expanded, outermost first.
type Trail []reflect.Type

// Contains reports whether t is on the trail.
func (tr Trail) Contains(t reflect.Type) bool {
	for _, x := range tr {
		if x == t {
			return true
		}
	}
	return false
}

// Push returns a new trail with t appended.
func (tr Trail) Push(t reflect.Type) Trail {
	out := make(Trail, len(tr), len(tr)+1)
	copy(out, tr)
	return append(out, t)
}

func (tr Trail) String() string {
	s := ""
	for i, t := range tr {
		if i > 0 {
			s += " -> "
		}
		s += uref.ClassName(t)
	}
	return s
}

// Strategy converts one family of native types.
type Strategy interface {
	// Handles reports whether the strategy is responsible for t.
	Handles(t reflect.Type) bool
	// Bind builds the binding for t. Element or item types are resolved
	// through reg with trail.
	Bind(t reflect.Type, trail Trail, reg *Registry) (Binding, error)
}

// Registry is an immutable, order-preserving list of strategies.
// It is safe for concurrent use provided the strategies are.
type Registry struct {
	strats []Strategy
}

// New constructs a Registry that tries the given strategies in order.
// Nil strategies are ignored.
func New(strategies ...Strategy) *Registry {
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Registry{strats: out}
}

// Defaults returns the built-in strategies in priority order.
func Defaults(composites CompositeSource, managed ManagedSource) []Strategy {
	return []Strategy{
		Simple(),
		Enum(),
		Basic(),
		Sequence(),
		Composite(composites),
		Temporal(),
		URI(),
		Managed(managed),
		Errors(),
		Properties(),
	}
}

// Bind resolves t with the first strategy that handles it.
func (r *Registry) Bind(t reflect.Type, trail Trail) (Binding, error) {
	if t == nil {
		return Binding{}, ErrNilType
	}
	for _, s := range r.strats {
		if s.Handles(t) {
			return s.Bind(t, trail, r)
		}
	}
	return Binding{}, fmt.Errorf("%w for type %s", ErrNoStrategy, t)
}

// Supports reports whether some strategy handles t.
func (r *Registry) Supports(t reflect.Type) bool {
	for _, s := range r.strats {
		if s.Handles(t) {
			return true
		}
	}
	return false
}

// Converter adapts a pair of functions to access.Converter.
type Converter struct {
	Out func(native any) (any, error)
	In  func(transport any) (any, error)
}

// ToTransport calls Out, or returns native unchanged when Out is nil.
func (c Converter) ToTransport(native any) (any, error) {
	if c.Out == nil {
		return native, nil
	}
	return c.Out(native)
}

// ToNative calls In, or returns transport unchanged when In is nil.
func (c Converter) ToNative(transport any) (any, error) {
	if c.In == nil {
		return transport, nil
	}
	return c.In(transport)
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
