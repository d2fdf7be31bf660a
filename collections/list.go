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
	"fmt"
	"slices"
	"sync"
)

// List is a mutex-guarded slice whose management-object elements are
// registered on insertion and unregistered on removal.
//
// Mutations are serialized together with their lifecycle calls, so the
// registration of an element always reflects the latest mutation. Lifecycle
// calls must not mutate the list.
type List[T any] struct {
	lc Lifecycle

	// seq orders mutations and their lifecycle calls. Readers only take mu.
	seq   sync.Mutex
	mu    sync.Mutex
	items []T
}

// NewList returns a list holding items, registering the managed ones.
func NewList[T any](lc Lifecycle, items ...T) (*List[T], error) {
	l := &List[T]{lc: lc}
	return l, l.Append(items...)
}

// Append adds vs at the end.
func (l *List[T]) Append(vs ...T) error {
	var cs changes
	l.seq.Lock()
	defer l.seq.Unlock()
	l.mu.Lock()
	l.items = append(l.items, vs...)
	for _, v := range vs {
		cs.add(v)
	}
	l.mu.Unlock()
	return cs.apply(l.lc)
}

// Insert adds v at index i, shifting later elements.
func (l *List[T]) Insert(i int, v T) error {
	var cs changes
	l.seq.Lock()
	defer l.seq.Unlock()
	l.mu.Lock()
	if i < 0 || i > len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrIndex, i, n)
	}
	l.items = slices.Insert(l.items, i, v)
	cs.add(v)
	l.mu.Unlock()
	return cs.apply(l.lc)
}

// Set replaces the element at i and returns the previous one.
func (l *List[T]) Set(i int, v T) (T, error) {
	var (
		cs  changes
		old T
	)
	l.seq.Lock()
	defer l.seq.Unlock()
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return old, fmt.Errorf("%w: %d of %d", ErrIndex, i, n)
	}
	old, l.items[i] = l.items[i], v
	cs.replace(old, true, v, true)
	l.mu.Unlock()
	return old, cs.apply(l.lc)
}

// RemoveAt removes and returns the element at i.
func (l *List[T]) RemoveAt(i int) (T, error) {
	var (
		cs  changes
		old T
	)
	l.seq.Lock()
	defer l.seq.Unlock()
	l.mu.Lock()
	if i < 0 || i >= len(l.items) {
		n := len(l.items)
		l.mu.Unlock()
		return old, fmt.Errorf("%w: %d of %d", ErrIndex, i, n)
	}
	old = l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	cs.remove(old)
	l.mu.Unlock()
	return old, cs.apply(l.lc)
}

// Remove removes the first element that is the same object as v and
// reports whether one was found.
func (l *List[T]) Remove(v T) (bool, error) {
	var cs changes
	l.seq.Lock()
	defer l.seq.Unlock()
	l.mu.Lock()
	i := slices.IndexFunc(l.items, func(x T) bool { return same(any(x), any(v)) })
	if i < 0 {
		l.mu.Unlock()
		return false, nil
	}
	old := l.items[i]
	l.items = slices.Delete(l.items, i, i+1)
	cs.remove(old)
	l.mu.Unlock()
	return true, cs.apply(l.lc)
}

// Clear removes every element.
func (l *List[T]) Clear() error {
	var cs changes
	l.seq.Lock()
	defer l.seq.Unlock()
	l.mu.Lock()
	for _, v := range l.items {
		cs.remove(v)
	}
	l.items = nil
	l.mu.Unlock()
	return cs.apply(l.lc)
}

// Get returns the element at i.
func (l *List[T]) Get(i int) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[i], true
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Values returns a copy of the elements.
func (l *List[T]) Values() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.items)
}
