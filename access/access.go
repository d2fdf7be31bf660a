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

// Package access implements value-access chains: linked paths from a
// management-object root to a nested value. Each node reads (and possibly
// writes) a value on the target produced by its parent. The last node
// applies a Converter between the native value and its transport form.
//
// Chains are immutable and safe for concurrent use. Resolution always
// re-walks the parents; only Cached nodes keep state.
package access

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNilTarget is returned when a node's target resolves to nil.
	ErrNilTarget = errors.New("mgmt(access): nil target")
	// ErrReadOnly is returned when writing through a node without a setter.
	ErrReadOnly = errors.New("mgmt(access): member is read-only")
	// ErrPanic wraps a panic raised by a getter, setter or operation.
	ErrPanic = errors.New("mgmt(access): member panicked")
	// ErrNotAssignable is returned when a value does not fit the member type.
	ErrNotAssignable = errors.New("mgmt(access): value not assignable")
)

// Error describes a failed read or write of a member.
type Error struct {
	// Op is "read", "write" or "invoke".
	Op string
	// Member is the field or method name.
	Member string
	// Owner is the declaring type.
	Owner string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mgmt(access): cannot %s %s of %s: %v", e.Op, e.Member, e.Owner, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Converter maps between native and transport values.
type Converter interface {
	ToTransport(native any) (any, error)
	ToNative(transport any) (any, error)
}

// Identity is the converter that passes values through unchanged.
var Identity Converter = identity{}

type identity struct{}

func (identity) ToTransport(v any) (any, error) { return v, nil }
func (identity) ToNative(v any) (any, error)    { return v, nil }

// Executor runs member calls, typically inside execution contexts.
type Executor interface {
	Execute(call func() error) error
}

// Direct calls members without any wrapping.
var Direct Executor = direct{}

type direct struct{}

func (direct) Execute(call func() error) error { return call() }

// Node reads and writes one step of a chain.
type Node interface {
	// Get returns the value on target.
	Get(target reflect.Value) (reflect.Value, error)
	// Set stores v on target. Nodes that are not Writable return an
	// error explaining why, without inspecting their arguments.
	Set(target reflect.Value, v reflect.Value) error
	// Type is the declared type of the value produced by Get.
	Type() reflect.Type
	// Name is a short label used in paths and errors.
	Name() string
	// Writable reports whether Set can succeed.
	Writable() bool
}

// forker is implemented by stateful nodes that need fresh state per instance.
type forker interface {
	fork() Node
}

// Chain is a linked access path. The zero Chain is not usable; start
// from Root.
type Chain struct {
	parent *Chain
	node   Node
	conv   Converter
}

// Root returns the chain that yields the root object of type t.
func Root(t reflect.Type) *Chain {
	return &Chain{node: rootNode{typ: t}, conv: Identity}
}

// Then appends node to c.
func (c *Chain) Then(n Node) *Chain {
	return &Chain{parent: c, node: n, conv: Identity}
}

// WithConverter returns a copy of c whose last node uses conv.
func (c *Chain) WithConverter(conv Converter) *Chain {
	if conv == nil {
		conv = Identity
	}
	cp := *c
	cp.conv = conv
	return &cp
}

// Converter returns the converter of the last node.
func (c *Chain) Converter() Converter { return c.conv }

// Node returns the last node.
func (c *Chain) Node() Node { return c.node }

// Parent returns the chain before the last node, or nil at the root.
func (c *Chain) Parent() *Chain { return c.parent }

// Type returns the declared native type of the chain's value.
func (c *Chain) Type() reflect.Type { return c.node.Type() }

// Writable reports whether the last node accepts writes.
func (c *Chain) Writable() bool { return c.node.Writable() }

// Path renders the chain as "root.a.b".
func (c *Chain) Path() string {
	var parts []string
	for n := c; n != nil; n = n.parent {
		parts = append(parts, n.node.Name())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Native resolves the chain against root and returns the native value.
func (c *Chain) Native(root any) (reflect.Value, error) {
	return c.resolve(reflect.ValueOf(root))
}

func (c *Chain) resolve(root reflect.Value) (reflect.Value, error) {
	if c.parent == nil {
		return c.node.Get(root)
	}
	target, err := c.parent.resolve(root)
	if err != nil {
		return reflect.Value{}, err
	}
	return c.node.Get(target)
}

// Read resolves the chain and converts the value to its transport form.
func (c *Chain) Read(root any) (any, error) {
	v, err := c.Native(root)
	if err != nil {
		return nil, err
	}
	var native any
	if v.IsValid() && v.CanInterface() {
		native = v.Interface()
	}
	return c.conv.ToTransport(native)
}

// Write converts value to its native form and stores it through the last node.
func (c *Chain) Write(root any, value any) error {
	if !c.node.Writable() {
		// Read-only nodes report their own reason without touching arguments.
		return c.node.Set(reflect.Value{}, reflect.Value{})
	}
	native, err := c.conv.ToNative(value)
	if err != nil {
		return err
	}
	rv, err := Assign(native, c.node.Type())
	if err != nil {
		return &Error{Op: "write", Member: c.node.Name(), Owner: c.ownerName(), Err: err}
	}
	target := reflect.ValueOf(root)
	if c.parent != nil {
		if target, err = c.parent.resolve(target); err != nil {
			return err
		}
	}
	return c.node.Set(target, rv)
}

// Fork returns a copy of c in which stateful nodes start with fresh state.
// Stateless chains are returned unchanged.
func (c *Chain) Fork() *Chain {
	if c == nil || !c.stateful() {
		return c
	}
	cp := *c
	cp.parent = c.parent.Fork()
	if f, ok := c.node.(forker); ok {
		cp.node = f.fork()
	}
	return &cp
}

func (c *Chain) stateful() bool {
	for n := c; n != nil; n = n.parent {
		if _, ok := n.node.(forker); ok {
			return true
		}
	}
	return false
}

func (c *Chain) ownerName() string {
	if c.parent == nil {
		return "root"
	}
	return c.parent.node.Type().String()
}

// Call invokes fn with args through exec. A trailing error result is
// split off and returned; panics are recovered as ErrPanic.
func Call(exec Executor, fn reflect.Value, args []reflect.Value) (out []reflect.Value, err error) {
	if exec == nil {
		exec = Direct
	}
	err = exec.Execute(func() (cerr error) {
		defer func() {
			if r := recover(); r != nil {
				cerr = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()
		res := fn.Call(args)
		if n := len(res); n > 0 && res[n-1].Type() == errorType {
			if e := res[n-1]; !e.IsNil() {
				return e.Interface().(error)
			}
			res = res[:n-1]
		}
		out = res
		return nil
	})
	return out, err
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Assign converts v into a value of type t. Nil becomes the zero value;
// numeric kinds convert between each other; anything else must be
// assignable.
func Assign(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() == t {
			return rv, nil
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if numeric(rv.Kind()) && numeric(t.Kind()) && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrNotAssignable, rv.Type(), t)
}

func numeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
