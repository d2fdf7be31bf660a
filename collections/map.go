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

package collections

import (
	"sync"
)

// Map is a mutex-guarded map whose management-object values are registered
// when stored and unregistered when replaced or deleted. Storing the same
// object under a key again leaves its registration alone.
//
// Mutations are serialized together with their lifecycle calls, so the
// registration of a value always reflects the latest mutation. Callbacks
// passed to the Compute family run under the map's lock; neither they nor
// lifecycle calls may mutate the map.
type Map[K comparable, V any] struct {
	lc Lifecycle

	// seq orders mutations and their lifecycle calls. Readers only take mu.
	seq sync.Mutex
	mu  sync.Mutex
	m   map[K]V
}

// NewMap returns an empty map.
func NewMap[K comparable, V any](lc Lifecycle) *Map[K, V] {
	return &Map[K, V]{lc: lc, m: make(map[K]V)}
}

// Put stores v under k and returns the previous value.
func (m *Map[K, V]) Put(k K, v V) (V, bool, error) {
	var cs changes
	m.seq.Lock()
	defer m.seq.Unlock()
	m.mu.Lock()
	old, had := m.m[k]
	m.m[k] = v
	cs.replace(old, had, v, true)
	m.mu.Unlock()
	return old, had, cs.apply(m.lc)
}

// PutAll stores every entry of src.
func (m *Map[K, V]) PutAll(src map[K]V) error {
	var cs changes
	m.seq.Lock()
	defer m.seq.Unlock()
	m.mu.Lock()
	for k, v := range src {
		old, had := m.m[k]
		m.m[k] = v
		cs.replace(old, had, v, true)
	}
	m.mu.Unlock()
	return cs.apply(m.lc)
}

// Delete removes k and returns its value.
func (m *Map[K, V]) Delete(k K) (V, bool, error) {
	var cs changes
	m.seq.Lock()
	defer m.seq.Unlock()
	m.mu.Lock()
	old, had := m.m[k]
	if had {
		delete(m.m, k)
		cs.remove(old)
	}
	m.mu.Unlock()
	return old, had, cs.apply(m.lc)
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() error {
	var cs changes
	m.seq.Lock()
	defer m.seq.Unlock()
	m.mu.Lock()
	for _, v := range m.m {
		cs.remove(v)
	}
	clear(m.m)
	m.mu.Unlock()
	return cs.apply(m.lc)
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[k]
	return v, ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}

// Keys returns the keys in no particular order.
func (m *Map[K, V]) Keys() []K {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]K, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	return keys
}

// Compute stores the value returned by fn for k, or deletes k when fn
// returns false. It returns the resulting value.
func (m *Map[K, V]) Compute(k K, fn func(old V, ok bool) (V, bool)) (V, error) {
	var cs changes
	m.seq.Lock()
	defer m.seq.Unlock()
	m.mu.Lock()
	v := m.compute(&cs, k, fn)
	m.mu.Unlock()
	return v, cs.apply(m.lc)
}

// ComputeIfAbsent stores fn() under k when k is missing and returns the
// value now stored.
func (m *Map[K, V]) ComputeIfAbsent(k K, fn func() V) (V, error) {
	return m.Compute(k, func(old V, ok bool) (V, bool) {
		if ok {
			return old, true
		}
		return fn(), true
	})
}

// ComputeIfPresent replaces the value under k with fn's result, or deletes
// it when fn returns false. Missing keys are left alone.
func (m *Map[K, V]) ComputeIfPresent(k K, fn func(old V) (V, bool)) (V, error) {
	return m.Compute(k, func(old V, ok bool) (V, bool) {
		if !ok {
			return old, false
		}
		return fn(old)
	})
}

// Merge stores v under a missing k, or combines it with the present value
// using fn. fn returning false deletes k.
func (m *Map[K, V]) Merge(k K, v V, fn func(old, v V) (V, bool)) (V, error) {
	return m.Compute(k, func(old V, ok bool) (V, bool) {
		if !ok {
			return v, true
		}
		return fn(old, v)
	})
}

func (m *Map[K, V]) compute(cs *changes, k K, fn func(V, bool) (V, bool)) V {
	old, had := m.m[k]
	next, keep := fn(old, had)
	if !keep {
		if had {
			delete(m.m, k)
			cs.remove(old)
		}
		var zero V
		return zero
	}
	m.m[k] = next
	cs.replace(old, had, next, true)
	return next
}
