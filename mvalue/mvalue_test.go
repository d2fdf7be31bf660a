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

package mvalue_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dirpx.dev/mgmt/facility"
	"dirpx.dev/mgmt/manager"
	"dirpx.dev/mgmt/mvalue"
	"dirpx.dev/mgmt/objname"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestEventCounter(t *testing.T) {
	c := mvalue.NewEventCounter("Requests")
	assert.Equal(t, "requests", c.Name())
	assert.Equal(t, "Requests", c.CapitalizedName())
	assert.Equal(t, "requests", c.Description())

	c.Increment()
	c.Increment()
	c.Add(5)
	assert.EqualValues(t, 7, c.Count())
	c.Reset()
	assert.Zero(t, c.Count())
}

func TestExecutionCounter(t *testing.T) {
	clk := newClock()
	c := mvalue.NewExecutionCounter("calls", mvalue.WithClock(clk.Now))

	assert.Zero(t, c.MinMicros())
	assert.Zero(t, c.MaxMicros())
	assert.Zero(t, c.AvgMicros())

	stop := c.Start()
	clk.Advance(3 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, stop())

	errFail := errors.New("fail")
	err := c.Measure(func() error {
		clk.Advance(time.Millisecond)
		return errFail
	})
	assert.ErrorIs(t, err, errFail)

	assert.EqualValues(t, 2, c.Count())
	assert.EqualValues(t, 4000, c.TotalMicros())
	assert.EqualValues(t, 1000, c.MinMicros())
	assert.EqualValues(t, 3000, c.MaxMicros())
	assert.EqualValues(t, 2000, c.AvgMicros())

	assert.EqualValues(t, 3000, c.MaxDeltaMicros())
	assert.EqualValues(t, 1000, c.MinDeltaMicros())
	assert.Zero(t, c.MaxDeltaMicros(), "delta restarts on read")
	assert.Zero(t, c.MinDeltaMicros())

	c.Record(2 * time.Millisecond)
	assert.EqualValues(t, 2000, c.MaxDeltaMicros())

	c.Reset()
	assert.Zero(t, c.Count())
	assert.Zero(t, c.TotalMicros())
	assert.Zero(t, c.MaxMicros())
}

func TestExecutionCounter_StaleDeltaIsZero(t *testing.T) {
	clk := newClock()
	c := mvalue.NewExecutionCounter("calls", mvalue.WithClock(clk.Now))
	c.Record(time.Millisecond)
	clk.Advance(11 * time.Minute)
	assert.Zero(t, c.MaxDeltaMicros())
	assert.EqualValues(t, 1000, c.MaxMicros())
}

func TestMaxSinceRead(t *testing.T) {
	clk := newClock()
	m := mvalue.NewMaxSinceRead("queue", mvalue.WithClock(clk.Now))

	assert.Zero(t, m.MaxAndReset())

	m.Add(4)
	m.Add(9)
	m.Add(2)
	assert.Equal(t, 9, m.MaxAndReset())
	assert.Equal(t, 2, m.MaxAndReset(), "nothing added: last value")

	m.Add(-5)
	assert.Equal(t, -5, m.MaxAndReset())

	m.Add(7)
	clk.Advance(time.Hour)
	m.Add(1)
	assert.Equal(t, 1, m.MaxAndReset(), "stale maximum: last value")
}

type Server struct {
	_        struct{}                 `mgmt:"bean,name='Demo:type=Server,name=#{name}'"`
	Name     string                   `mgmt:"attribute"`
	Requests *mvalue.EventCounter     `mgmt:"include"`
	Errors   *mvalue.EventCounter     `mgmt:"include"`
	Calls    *mvalue.ExecutionCounter `mgmt:"include"`
	Queue    *mvalue.MaxSinceRead     `mgmt:"include"`
}

func TestValuesIncludedIntoManagementObject(t *testing.T) {
	fac := facility.New()
	mgr, err := manager.New(
		manager.WithFacility(fac),
		manager.WithLogger(zap.NewNop()),
		manager.WithErrorStrategy(manager.RaiseErrors()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.UnregisterEverything() })

	s := &Server{
		Name:     "api",
		Requests: mvalue.NewEventCounter("requests", mvalue.WithDescription("Requests served")),
		Errors:   mvalue.NewEventCounter("errors"),
		Calls:    mvalue.NewExecutionCounter("calls"),
		Queue:    mvalue.NewMaxSinceRead("queueLength"),
	}
	require.NoError(t, mgr.Register(s))
	id := objname.MustParse("Demo:type=Server,name=api")

	s.Requests.Increment()
	s.Requests.Increment()
	s.Errors.Increment()
	s.Queue.Add(12)

	v, err := fac.GetAttribute(id, "requests")
	require.NoError(t, err)
	assert.EqualValues(t, 2, v)
	v, err = fac.GetAttribute(id, "errors")
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	v, err = fac.GetAttribute(id, "queueLength")
	require.NoError(t, err)
	assert.EqualValues(t, 12, v)
	v, err = fac.GetAttribute(id, "callsMaxExecutionTimeInMicroSeconds")
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)

	_, err = fac.Invoke(id, "resetRequests", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, s.Requests.Count())
	assert.EqualValues(t, 1, s.Errors.Count())

	schema, err := fac.Schema(id)
	require.NoError(t, err)
	descs := map[string]string{}
	for _, a := range schema.Attributes {
		descs[a.Name] = a.Description
	}
	assert.Equal(t, "Requests served", descs["requests"])
	assert.Equal(t, "Number of executions", descs["calls"])
	assert.Contains(t, descs, "callsAvgExecutionTimeInMicroSeconds")

	var ops []string
	for _, o := range schema.Operations {
		ops = append(ops, o.Name)
	}
	assert.ElementsMatch(t, []string{"resetRequests", "resetErrors", "resetCalls"}, ops)
}
