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

package mvalue

import (
	"math"
	"sync"
	"time"

	"dirpx.dev/mgmt/meta"
)

// MaxSinceRead tracks the largest value added since it was last read.
// A read with nothing added since the previous one, or after the
// maximum went stale, returns the most recent value instead.
type MaxSinceRead struct {
	named
	clock func() time.Time

	mu     sync.Mutex
	max    int
	last   int
	readAt time.Time
}

var _ meta.Declarer = (*MaxSinceRead)(nil)

// NewMaxSinceRead returns a tracker exposed under name.
func NewMaxSinceRead(name string, opts ...Option) *MaxSinceRead {
	o := apply(opts)
	return &MaxSinceRead{
		named:  newNamed(name, o.description),
		clock:  o.clock,
		max:    math.MinInt,
		readAt: o.clock(),
	}
}

// ManagedClass implements meta.Declarer.
func (*MaxSinceRead) ManagedClass() meta.Class {
	return meta.Class{Members: []meta.Member{
		meta.AttributeOf(meta.OnMethod("MaxAndReset"), meta.Named("#{name}"), meta.Described("#{description}")),
	}}
}

// Add records v.
func (m *MaxSinceRead) Add(v int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = v
	m.max = max(m.max, v)
}

// MaxAndReset returns the maximum since the previous call and restarts
// tracking.
func (m *MaxSinceRead) MaxAndReset() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	v := m.max
	if v == math.MinInt || now.Sub(m.readAt) > validFor {
		v = m.last
	}
	m.max, m.readAt = math.MinInt, now
	return v
}
