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

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/meta"
)

// ExecutionCounter counts executions and measures how long they take.
// The delta attributes report the extreme since the previous read of the
// same attribute and restart on every read.
type ExecutionCounter struct {
	named
	clock func() time.Time

	mu           sync.Mutex
	count        int64
	total        time.Duration
	min, max     time.Duration
	minDelta     time.Duration
	maxDelta     time.Duration
	minDeltaRead time.Time
	maxDeltaRead time.Time
}

var _ meta.Declarer = (*ExecutionCounter)(nil)

// NewExecutionCounter returns a counter exposed under name.
func NewExecutionCounter(name string, opts ...Option) *ExecutionCounter {
	o := apply(opts)
	if o.description == "" {
		o.description = "Number of executions"
	}
	c := &ExecutionCounter{named: newNamed(name, o.description), clock: o.clock}
	now := c.clock()
	c.minDeltaRead, c.maxDeltaRead = now, now
	c.clear()
	return c
}

// ManagedClass implements meta.Declarer.
func (*ExecutionCounter) ManagedClass() meta.Class {
	attr := func(method, suffix, desc string) meta.Member {
		return meta.AttributeOf(meta.OnMethod(method), meta.Named("#{name}"+suffix), meta.Described(desc))
	}
	return meta.Class{Members: []meta.Member{
		attr("Count", "", "#{description}"),
		attr("TotalMicros", "TotalExecutionTimeInMicroSeconds",
			"Total execution time of #{name} in microseconds since start or reset"),
		attr("MinMicros", "MinExecutionTimeInMicroSeconds",
			"Minimum execution time of #{name} in microseconds since start or reset"),
		attr("MaxMicros", "MaxExecutionTimeInMicroSeconds",
			"Maximum execution time of #{name} in microseconds since start or reset"),
		attr("AvgMicros", "AvgExecutionTimeInMicroSeconds",
			"Average execution time of #{name} in microseconds since start or reset"),
		attr("MinDeltaMicros", "MinExecutionTimeDeltaInMicroSeconds",
			"Minimum execution time of #{name} in microseconds since the last read"),
		attr("MaxDeltaMicros", "MaxExecutionTimeDeltaInMicroSeconds",
			"Maximum execution time of #{name} in microseconds since the last read"),
		meta.OperationOf("Reset",
			meta.Named("reset#{capitalizedName}"),
			meta.Described("Reset collected data"),
			meta.WithImpact(apis.Action)),
	}}
}

// Start begins timing one execution. Calling the returned func records it
// and returns its duration.
func (c *ExecutionCounter) Start() func() time.Duration {
	start := c.clock()
	return func() time.Duration {
		d := c.clock().Sub(start)
		c.Record(d)
		return d
	}
}

// Measure times fn and returns its error.
func (c *ExecutionCounter) Measure(fn func() error) error {
	stop := c.Start()
	defer stop()
	return fn()
}

// Record adds one execution of duration d.
func (c *ExecutionCounter) Record(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	c.total += d
	c.min = min(c.min, d)
	c.max = max(c.max, d)
	c.minDelta = min(c.minDelta, d)
	c.maxDelta = max(c.maxDelta, d)
}

// Count returns the number of executions.
func (c *ExecutionCounter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// TotalMicros returns the summed execution time.
func (c *ExecutionCounter) TotalMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total.Microseconds()
}

// MinMicros returns the shortest execution, or 0 before the first.
func (c *ExecutionCounter) MinMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.min == math.MaxInt64 {
		return 0
	}
	return c.min.Microseconds()
}

// MaxMicros returns the longest execution, or 0 before the first.
func (c *ExecutionCounter) MaxMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.max == math.MinInt64 {
		return 0
	}
	return c.max.Microseconds()
}

// AvgMicros returns the mean execution time, or 0 before the first.
func (c *ExecutionCounter) AvgMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		return 0
	}
	return (c.total / time.Duration(c.count)).Microseconds()
}

// MinDeltaMicros returns the shortest execution since the previous call
// and restarts the window.
func (c *ExecutionCounter) MinDeltaMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	var v int64
	if c.minDelta != math.MaxInt64 && now.Sub(c.minDeltaRead) < validFor {
		v = c.minDelta.Microseconds()
	}
	c.minDelta, c.minDeltaRead = math.MaxInt64, now
	return v
}

// MaxDeltaMicros returns the longest execution since the previous call
// and restarts the window.
func (c *ExecutionCounter) MaxDeltaMicros() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	var v int64
	if c.maxDelta != math.MinInt64 && now.Sub(c.maxDeltaRead) < validFor {
		v = c.maxDelta.Microseconds()
	}
	c.maxDelta, c.maxDeltaRead = math.MinInt64, now
	return v
}

// Reset discards everything recorded.
func (c *ExecutionCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
}

func (c *ExecutionCounter) clear() {
	c.count, c.total = 0, 0
	c.min, c.minDelta = math.MaxInt64, math.MaxInt64
	c.max, c.maxDelta = math.MinInt64, math.MinInt64
}
