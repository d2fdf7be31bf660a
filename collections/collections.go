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

// Package collections provides a list and a map that register management
// objects when they are added and unregister them when they are removed.
package collections

import (
	"errors"
	"reflect"

	"go.uber.org/multierr"
)

// ErrIndex is returned for an out-of-range list index.
var ErrIndex = errors.New("mgmt(collections): index out of range")

// Lifecycle registers and unregisters management objects.
// *manager.Manager implements it.
type Lifecycle interface {
	Register(obj any) error
	Unregister(obj any) error
	IsManaged(obj any) bool
}

// change is a lifecycle call recorded under the lock and applied after it.
type change struct {
	obj      any
	register bool
}

// changes collects the lifecycle calls needed to replace old with next.
// Nothing happens when both are the same object.
type changes []change

func (cs *changes) replace(old any, hadOld bool, next any, hasNext bool) {
	if hadOld && hasNext && same(old, next) {
		return
	}
	if hadOld && !isNil(old) {
		*cs = append(*cs, change{obj: old})
	}
	if hasNext && !isNil(next) {
		*cs = append(*cs, change{obj: next, register: true})
	}
}

func (cs *changes) add(v any)    { cs.replace(nil, false, v, true) }
func (cs *changes) remove(v any) { cs.replace(v, true, nil, false) }

// apply runs the recorded calls for managed objects in order.
func (cs changes) apply(lc Lifecycle) error {
	var errs error
	for _, c := range cs {
		if !lc.IsManaged(c.obj) {
			continue
		}
		if c.register {
			errs = multierr.Append(errs, lc.Register(c.obj))
		} else {
			errs = multierr.Append(errs, lc.Unregister(c.obj))
		}
	}
	return errs
}

// same reports object identity: pointer-like values compare by address,
// other comparable values by equality. Non-comparable values are never
// the same.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

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
