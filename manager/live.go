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
	"sync"
	"sync/atomic"

	"dirpx.dev/mgmt/objname"
)

// entry is the live registration of one source object.
type entry struct {
	obj   any
	state atomic.Int32

	// Set before the entry reaches Registered and never changed after.
	name   objname.Name
	facade *Facade
	refs   []reference
}

// reference is a composition reference value resolved at registration.
type reference struct {
	obj    any
	concat bool
}

func (e *entry) State() State { return State(e.state.Load()) }

// live maps source objects to their entries. Keys must be comparable.
type live struct {
	// mu guards write-side consistency and count.
	mu sync.Mutex
	m  sync.Map // map[any]*entry
	// count tracks the number of entries.
	count int
}

// insert stores e for obj unless obj already has an entry.
func (l *live) insert(obj any, e *entry) bool {
	// Fast read path: most duplicates are caught without locking.
	if _, ok := l.m.Load(obj); ok {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if _, loaded := l.m.LoadOrStore(obj, e); loaded {
		return false
	}
	l.count++
	return true
}

func (l *live) lookup(obj any) (*entry, bool) {
	v, ok := l.m.Load(obj)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

// remove deletes obj only while it still maps to e.
func (l *live) remove(obj any, e *entry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.m.CompareAndDelete(obj, e) {
		return false
	}
	l.count--
	return true
}

// objects returns a snapshot of the registered source objects.
func (l *live) objects() []any {
	out := make([]any, 0, l.len())
	l.m.Range(func(key, _ any) bool {
		out = append(out, key)
		return true
	})
	return out
}

func (l *live) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
