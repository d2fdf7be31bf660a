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

package meta

import (
	"errors"
	"reflect"
	"sync"

	uref "dirpx.dev/mgmt/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("mgmt(meta): nil reflect.Type provided")
	// ErrEmptyName is returned when an empty type name is provided.
	ErrEmptyName = errors.New("mgmt(meta): empty name provided")
	// ErrConflictingRegistration indicates an attempt to re-register
	// a type with a different declaration.
	ErrConflictingRegistration = errors.New("mgmt(meta): conflicting type registration")
)

// Entry is one registered declaration.
type Entry struct {
	Type  reflect.Type
	Class Class
}

// Registry holds explicit declarations keyed by type. Pointer types are
// stored under their element type. Interface types may be registered; the
// compiler applies their members to every type implementing them.
type Registry struct {
	// mu guards write-side consistency and the ordered views.
	mu sync.Mutex
	// m maps reflect.Type to its Class.
	m sync.Map // map[reflect.Type]Class
	// order lists registered types in registration order.
	order []reflect.Type
	// names maps names used in tags to types.
	names sync.Map // map[string]reflect.Type
}

// Ensure Registry implements Source.
var _ Source = (*Registry)(nil)

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates t with c.
// It is idempotent for the same (type, class) pair.
func (r *Registry) Register(t reflect.Type, c Class) error {
	// Validate inputs early.
	if t == nil {
		return ErrNilType
	}
	if err := c.Validate(); err != nil {
		return err
	}
	t = normalize(t)

	// Fast read path: idempotency / conflict check without locking.
	if old, ok := r.m.Load(t); ok {
		if reflect.DeepEqual(old.(Class), c) {
			return nil // idempotent re-registration
		}
		return ErrConflictingRegistration
	}

	// Write path: guard with a mutex to keep order consistent and avoid ABA.
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if old, ok := r.m.Load(t); ok {
		if reflect.DeepEqual(old.(Class), c) {
			return nil
		}
		return ErrConflictingRegistration
	}

	r.m.Store(t, c)
	r.order = append(r.order, t)
	return nil
}

// Lookup returns the class registered for t.
func (r *Registry) Lookup(t reflect.Type) (Class, bool) {
	if t == nil {
		return Class{}, false
	}
	if v, ok := r.m.Load(normalize(t)); ok {
		return v.(Class), true
	}
	return Class{}, false
}

// TryDescribe implements Source.
func (r *Registry) TryDescribe(t reflect.Type) (Class, bool, error) {
	c, ok := r.Lookup(t)
	return c, ok, nil
}

// Entries returns the registrations in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]Entry, 0, len(r.order))
	for _, t := range r.order {
		v, _ := r.m.Load(t)
		entries = append(entries, Entry{Type: t, Class: v.(Class)})
	}
	return entries
}

// Interfaces returns registered interface types in registration order.
func (r *Registry) Interfaces() []reflect.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []reflect.Type
	for _, t := range r.order {
		if t.Kind() == reflect.Interface {
			out = append(out, t)
		}
	}
	return out
}

// Count returns the number of registered entries.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Reset clears all registered entries and type names.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m = sync.Map{}
	r.names = sync.Map{}
	r.order = nil
}

// RegisterTypeName makes t available to the "type=" tag key under name.
func (r *Registry) RegisterTypeName(name string, t reflect.Type) error {
	if t == nil {
		return ErrNilType
	}
	if name == "" {
		return ErrEmptyName
	}
	if old, loaded := r.names.LoadOrStore(name, t); loaded && old.(reflect.Type) != t {
		return ErrConflictingRegistration
	}
	return nil
}

// TypeByName returns the type registered under name.
func (r *Registry) TypeByName(name string) (reflect.Type, bool) {
	v, ok := r.names.Load(name)
	if !ok {
		return nil, false
	}
	return v.(reflect.Type), true
}

// normalize strips pointers from everything but interfaces.
func normalize(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface {
		return t
	}
	return uref.Indirect(t)
}
