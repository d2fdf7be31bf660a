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

package manager

import (
	"errors"
	"reflect"
	"sync/atomic"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/apis"
)

var (
	// ErrCalleeSkipped is returned when an execution context returns
	// without calling through.
	ErrCalleeSkipped = errors.New("mgmt(manager): execution context did not call the callee")
	// ErrCalleeRepeated is returned to an execution context that calls
	// through more than once. The callee itself runs only once.
	ErrCalleeRepeated = errors.New("mgmt(manager): execution context called the callee twice")
)

var _ access.Executor = (*Contexts)(nil)

// Contexts is an ordered stack of execution contexts. The first context
// added is the outermost. The zero value is an empty stack.
type Contexts struct {
	list atomic.Pointer[[]apis.ExecutionContext]
}

func (c *Contexts) load() []apis.ExecutionContext {
	if p := c.list.Load(); p != nil {
		return *p
	}
	return nil
}

// Add appends ctx as the innermost context. Nil is ignored.
func (c *Contexts) Add(ctx apis.ExecutionContext) {
	if ctx == nil {
		return
	}
	for {
		old := c.list.Load()
		var cur []apis.ExecutionContext
		if old != nil {
			cur = *old
		}
		next := make([]apis.ExecutionContext, len(cur), len(cur)+1)
		copy(next, cur)
		next = append(next, ctx)
		if c.list.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Remove drops the last occurrence of ctx and reports whether it was found.
func (c *Contexts) Remove(ctx apis.ExecutionContext) bool {
	if ctx == nil {
		return false
	}
	for {
		old := c.list.Load()
		if old == nil {
			return false
		}
		cur := *old
		i := len(cur) - 1
		for ; i >= 0; i-- {
			if same(cur[i], ctx) {
				break
			}
		}
		if i < 0 {
			return false
		}
		next := make([]apis.ExecutionContext, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		if c.list.CompareAndSwap(old, &next) {
			return true
		}
	}
}

// Len returns the number of contexts.
func (c *Contexts) Len() int { return len(c.load()) }

// Execute runs call inside every context, outermost first. call runs
// exactly once on success; its error is returned unchanged.
func (c *Contexts) Execute(call func() error) error {
	list := c.load()
	if len(list) == 0 {
		return call()
	}
	var (
		ran     bool
		callErr error
	)
	inner := func() error {
		if ran {
			return ErrCalleeRepeated
		}
		ran = true
		callErr = call()
		return callErr
	}
	err := nest(list, inner)
	if err == nil && !ran {
		return ErrCalleeSkipped
	}
	if ran && err == nil {
		return callErr
	}
	return err
}

func nest(list []apis.ExecutionContext, call func() error) error {
	if len(list) == 0 {
		return call()
	}
	return list[0].ExecuteInContext(func() error { return nest(list[1:], call) })
}

// same compares contexts by identity. Func-backed contexts compare by
// code pointer; other non-comparable values never match.
func same(a, b apis.ExecutionContext) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Kind() == reflect.Func {
		return va.Pointer() == vb.Pointer()
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
