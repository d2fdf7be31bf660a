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

package manager_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/facility"
	"dirpx.dev/mgmt/manager"
	"dirpx.dev/mgmt/objname"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type Person struct {
	_        struct{} `mgmt:"bean,name='Demo:type=Person,name=#{name}',desc='Person #{name} aged #{age}'"`
	_        struct{} `mgmt:"operation,method=Birthday,impact=action"`
	_        struct{} `mgmt:"operation,method=Rename,params=first|last,impact=action_info"`
	Name     string   `mgmt:"attribute,writable"`
	Age      int      `mgmt:"attribute"`
	Children []*Child `mgmt:"size"`
	Kid      *Child   `mgmt:"reference,concat"`
	Pet      *Pet     `mgmt:"reference"`
}

func (p *Person) Birthday() { p.Age++ }

func (p *Person) Rename(first, last string) string {
	p.Name = first + " " + last
	return p.Name
}

type Child struct {
	_    struct{} `mgmt:"bean,name='child=#{name}'"`
	Name string   `mgmt:"attribute"`
}

type Pet struct {
	_    struct{} `mgmt:"bean,name='Demo:type=Pet,name=#{name}'"`
	Name string   `mgmt:"attribute"`
}

type Worker struct {
	_    struct{} `mgmt:"bean,name='Demo:type=Worker,name=#{name}',unique"`
	Name string
}

type Gauge struct {
	_     struct{} `mgmt:"bean,name='Demo:type=Gauge,name=#{label}'"`
	_     struct{} `mgmt:"attribute,method=GetValue,cache=1m"`
	Label string
	reads int
}

func (g *Gauge) GetValue() int {
	g.reads++
	return g.reads
}

type Bag struct {
	_     struct{} `mgmt:"bean,name='Demo:type=Bag'"`
	Items []string
}

// hookFacility wraps a facility with injectable failures.
type hookFacility struct {
	apis.Facility
	failPublish   atomic.Bool
	failDepublish atomic.Bool
	onPublish     func(objname.Name)
}

var errBoom = errors.New("boom")

func (h *hookFacility) Publish(name objname.Name, f apis.Facade) error {
	if h.onPublish != nil {
		h.onPublish(name)
	}
	if h.failPublish.Load() {
		return errBoom
	}
	return h.Facility.Publish(name, f)
}

func (h *hookFacility) Depublish(name objname.Name) error {
	if h.failDepublish.Load() {
		return errBoom
	}
	return h.Facility.Depublish(name)
}

func newManager(t *testing.T, opts ...manager.Option) (*manager.Manager, *facility.Server, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	fac := facility.New()
	base := []manager.Option{
		manager.WithFacility(fac),
		manager.WithLogger(zap.New(core)),
		manager.WithErrorStrategy(manager.RaiseErrors()),
	}
	m, err := manager.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.UnregisterEverything() })
	return m, fac, logs
}

func fixedClock(now *time.Time) func() time.Time {
	return func() time.Time { return *now }
}
