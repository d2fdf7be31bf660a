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

package access

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
	"unicode/utf8"

	"dirpx.dev/mgmt/apis"
	uref "dirpx.dev/mgmt/utils/reflect"
)

// ErrSignature is returned when a method cannot serve as getter or setter.
var ErrSignature = errors.New("mgmt(access): unsuitable method signature")

// rootNode yields its target unchanged.
type rootNode struct {
	typ reflect.Type
}

func (n rootNode) Get(target reflect.Value) (reflect.Value, error) {
	if !target.IsValid() {
		return reflect.Value{}, &Error{Op: "read", Member: "root", Owner: typeName(n.typ), Err: ErrNilTarget}
	}
	return target, nil
}

func (n rootNode) Set(reflect.Value, reflect.Value) error {
	return &Error{Op: "write", Member: "root", Owner: typeName(n.typ), Err: ErrReadOnly}
}

func (n rootNode) Type() reflect.Type { return n.typ }
func (n rootNode) Name() string       { return "root" }
func (n rootNode) Writable() bool     { return false }

// FieldNode reads and writes an exported struct field.
type FieldNode struct {
	owner    reflect.Type
	field    reflect.StructField
	writable bool
}

// Field returns a node for f on owner. f.Index is walked from the target,
// so promoted fields of embedded structs work.
func Field(owner reflect.Type, f reflect.StructField, writable bool) *FieldNode {
	return &FieldNode{owner: owner, field: f, writable: writable}
}

func (n *FieldNode) Get(target reflect.Value) (reflect.Value, error) {
	v, err := uref.FieldByIndex(target, n.field.Index)
	if err != nil {
		return reflect.Value{}, n.fail("read", ErrNilTarget)
	}
	return v, nil
}

func (n *FieldNode) Set(target reflect.Value, v reflect.Value) error {
	if !n.writable {
		return n.fail("write", ErrReadOnly)
	}
	f, err := uref.FieldByIndex(target, n.field.Index)
	if err != nil {
		return n.fail("write", ErrNilTarget)
	}
	if !f.CanSet() {
		return n.fail("write", fmt.Errorf("%w: target is not addressable", ErrNotAssignable))
	}
	f.Set(v)
	return nil
}

func (n *FieldNode) Type() reflect.Type { return n.field.Type }
func (n *FieldNode) Name() string       { return n.field.Name }
func (n *FieldNode) Writable() bool     { return n.writable }

func (n *FieldNode) fail(op string, err error) error {
	return &Error{Op: op, Member: n.field.Name, Owner: typeName(n.owner), Err: err}
}

// MethodNode reads through a getter and, when writable, writes through a setter.
type MethodNode struct {
	owner  reflect.Type
	embed  []int
	getter string
	setter string
	typ    reflect.Type
	exec   Executor
}

// Method returns a node calling getter on the value reached by walking
// embed from the target. setter may be empty for read-only members.
// A getter takes no arguments and returns T or (T, error); a setter takes
// one argument assignable from T and returns nothing or error.
func Method(owner reflect.Type, embed []int, getter, setter string, exec Executor) (*MethodNode, error) {
	g, ok := uref.MethodOn(owner, getter)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method %s", ErrSignature, typeName(owner), getter)
	}
	if len(g.In) != 0 || len(g.Results()) != 1 {
		return nil, fmt.Errorf("%w: %s.%s is not a getter", ErrSignature, typeName(owner), getter)
	}
	typ := g.Results()[0]
	if setter != "" {
		s, ok := uref.MethodOn(owner, setter)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no method %s", ErrSignature, typeName(owner), setter)
		}
		if len(s.In) != 1 || len(s.Results()) != 0 || !typ.AssignableTo(s.In[0]) {
			return nil, fmt.Errorf("%w: %s.%s is not a setter for %s", ErrSignature, typeName(owner), setter, typ)
		}
	}
	if exec == nil {
		exec = Direct
	}
	return &MethodNode{owner: owner, embed: embed, getter: getter, setter: setter, typ: typ, exec: exec}, nil
}

func (n *MethodNode) Get(target reflect.Value) (reflect.Value, error) {
	fn, err := n.bind(target, n.getter, "read")
	if err != nil {
		return reflect.Value{}, err
	}
	out, err := Call(n.exec, fn, nil)
	if err != nil {
		return reflect.Value{}, n.fail("read", n.getter, err)
	}
	return out[0], nil
}

func (n *MethodNode) Set(target reflect.Value, v reflect.Value) error {
	if n.setter == "" {
		return n.fail("write", n.getter, ErrReadOnly)
	}
	fn, err := n.bind(target, n.setter, "write")
	if err != nil {
		return err
	}
	if _, err := Call(n.exec, fn, []reflect.Value{v}); err != nil {
		return n.fail("write", n.setter, err)
	}
	return nil
}

func (n *MethodNode) Type() reflect.Type { return n.typ }
func (n *MethodNode) Name() string       { return n.getter }
func (n *MethodNode) Writable() bool     { return n.setter != "" }

func (n *MethodNode) bind(target reflect.Value, name, op string) (reflect.Value, error) {
	recv, err := uref.FieldByIndex(target, n.embed)
	if err == nil {
		if recv.Kind() == reflect.Ptr || recv.Kind() == reflect.Interface {
			if recv.IsNil() {
				err = ErrNilTarget
			}
		} else if !recv.IsValid() {
			err = ErrNilTarget
		}
	}
	if err != nil {
		return reflect.Value{}, n.fail(op, name, ErrNilTarget)
	}
	fn, ok := uref.MethodValue(recv, name)
	if !ok {
		return reflect.Value{}, n.fail(op, name, fmt.Errorf("%w: method not reachable on %s", ErrSignature, recv.Type()))
	}
	return fn, nil
}

func (n *MethodNode) fail(op, member string, err error) error {
	return &Error{Op: op, Member: member, Owner: typeName(n.owner), Err: err}
}

// sizeNode reports the length of its target.
type sizeNode struct {
	of reflect.Type
}

// Size returns a read-only node yielding the element count of a slice,
// array, map or channel, or the rune count of a string. Nil yields 0.
func Size(of reflect.Type) Node {
	return sizeNode{of: of}
}

// SizeSupported reports whether Size can measure values of t.
func SizeSupported(t reflect.Type) bool {
	switch uref.Indirect(t).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return true
	}
	return false
}

func (n sizeNode) Get(target reflect.Value) (reflect.Value, error) {
	v, err := uref.IndirectValue(target)
	if err != nil {
		return reflect.ValueOf(0), nil
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return reflect.ValueOf(v.Len()), nil
	case reflect.String:
		return reflect.ValueOf(utf8.RuneCountInString(v.String())), nil
	default:
		return reflect.Value{}, &Error{Op: "read", Member: "size", Owner: v.Type().String(), Err: apis.ErrUnsupported}
	}
}

func (n sizeNode) Set(reflect.Value, reflect.Value) error {
	return &Error{Op: "write", Member: "size", Owner: typeName(n.of), Err: apis.ErrUnsupported}
}

func (n sizeNode) Type() reflect.Type { return reflect.TypeOf(0) }
func (n sizeNode) Name() string       { return "size" }
func (n sizeNode) Writable() bool     { return false }

// CachedNode keeps the last value read through inner for a timeout.
// Read, refresh and invalidate are serialized.
type CachedNode struct {
	inner   Node
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	value reflect.Value
	stamp time.Time
	valid bool
}

// Cached wraps inner. A nil clock means time.Now.
func Cached(inner Node, timeout time.Duration, clock func() time.Time) *CachedNode {
	if clock == nil {
		clock = time.Now
	}
	return &CachedNode{inner: inner, timeout: timeout, now: clock}
}

func (n *CachedNode) Get(target reflect.Value) (reflect.Value, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.valid && n.now().Sub(n.stamp) <= n.timeout {
		return n.value, nil
	}
	v, err := n.inner.Get(target)
	if err != nil {
		return reflect.Value{}, err
	}
	n.value, n.stamp, n.valid = v, n.now(), true
	return v, nil
}

func (n *CachedNode) Set(target reflect.Value, v reflect.Value) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.inner.Set(target, v)
	n.valid = false
	n.value = reflect.Value{}
	return err
}

// Invalidate drops the cached value.
func (n *CachedNode) Invalidate() {
	n.mu.Lock()
	n.valid = false
	n.value = reflect.Value{}
	n.mu.Unlock()
}

func (n *CachedNode) Type() reflect.Type { return n.inner.Type() }
func (n *CachedNode) Name() string       { return n.inner.Name() }
func (n *CachedNode) Writable() bool     { return n.inner.Writable() }

func (n *CachedNode) fork() Node {
	return Cached(n.inner, n.timeout, n.now)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return uref.ClassName(t)
}
