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
	"sync/atomic"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/meta"
)

// EventCounter counts events.
type EventCounter struct {
	named
	n atomic.Int64
}

var _ meta.Declarer = (*EventCounter)(nil)

// NewEventCounter returns a counter exposed under name.
func NewEventCounter(name string, opts ...Option) *EventCounter {
	o := apply(opts)
	return &EventCounter{named: newNamed(name, o.description)}
}

// ManagedClass implements meta.Declarer.
func (*EventCounter) ManagedClass() meta.Class {
	return meta.Class{Members: []meta.Member{
		meta.AttributeOf(meta.OnMethod("Count"), meta.Named("#{name}"), meta.Described("#{description}")),
		meta.OperationOf("Reset",
			meta.Named("reset#{capitalizedName}"),
			meta.Described("Reset #{name} to zero"),
			meta.WithImpact(apis.Action)),
	}}
}

// Increment adds one.
func (c *EventCounter) Increment() { c.n.Add(1) }

// Add adds delta.
func (c *EventCounter) Add(delta int64) { c.n.Add(delta) }

// Count returns the number of events since creation or the last reset.
func (c *EventCounter) Count() int64 { return c.n.Load() }

// Reset sets the count to zero.
func (c *EventCounter) Reset() { c.n.Store(0) }
