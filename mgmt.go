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

package mgmt

import (
	"errors"
	"sync"
	"sync/atomic"

	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/builder"
	"dirpx.dev/mgmt/collections"
	"dirpx.dev/mgmt/config"
	"dirpx.dev/mgmt/manager"
	"dirpx.dev/mgmt/objname"
)

// init installs the default manager.
func init() {
	b := builder.New()
	m, err := b.BuildManager(config.DefaultConfig(), nil)
	if err != nil {
		panic(err)
	}
	st.Store(&state{mgr: m, bld: b})
}

var (
	// ErrNilManager is returned when a nil manager is installed or built.
	ErrNilManager = errors.New("mgmt: nil manager")
	// ErrPinned is returned when the pinned default manager would be replaced.
	ErrPinned = errors.New("mgmt: default manager is pinned")
)

// Manager returns the default manager.
func Manager() *manager.Manager {
	return st.Load().mgr
}

// SetManager installs m as the default manager and returns the previous
// one. Objects registered with the previous manager stay registered there.
func SetManager(m *manager.Manager) (*manager.Manager, error) {
	if m == nil {
		return nil, ErrNilManager
	}
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	if old.pinned {
		return nil, ErrPinned
	}
	st.Store(&state{mgr: m, bld: old.bld})
	return old.mgr, nil
}

// Builder returns the builder used by Rebuild.
func Builder() builder.Builder {
	return st.Load().bld
}

// SetBuilder sets the builder used by Rebuild. Nil is ignored.
func SetBuilder(b builder.Builder) {
	if b == nil {
		return
	}
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(&state{mgr: old.mgr, bld: b, pinned: old.pinned})
}

// Rebuild unregisters everything from the default manager and replaces it
// with one built for cfg. Unregister failures are returned after the new
// manager is installed.
func Rebuild(cfg apis.Config) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	if old.pinned {
		return ErrPinned
	}
	m, err := old.bld.BuildManager(cfg, old.mgr)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNilManager
	}
	uerr := old.mgr.UnregisterEverything()
	st.Store(&state{mgr: m, bld: old.bld})
	return uerr
}

// IsPinned reports whether the default manager is pinned.
func IsPinned() bool {
	return st.Load().pinned
}

// Pin keeps the default manager from being replaced by SetManager or
// Rebuild.
func Pin() { setPinned(true) }

// Unpin allows replacing the default manager again.
func Unpin() { setPinned(false) }

func setPinned(p bool) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(&state{mgr: old.mgr, bld: old.bld, pinned: p})
}

// Config returns the default manager's configuration.
func Config() apis.Config { return Manager().Config() }

// SetConfig reconfigures the default manager in place.
func SetConfig(cfg apis.Config) error { return Manager().SetConfig(cfg) }

// Facility returns the default manager's facility.
func Facility() apis.Facility { return Manager().Facility() }

// Register registers obj with the default manager.
func Register(obj any) error { return Manager().Register(obj) }

// RegisterAll registers the managed elements of objs with the default manager.
func RegisterAll(objs ...any) error { return Manager().RegisterAll(objs...) }

// Unregister unregisters obj from the default manager.
func Unregister(obj any) error { return Manager().Unregister(obj) }

// UnregisterAll unregisters the managed elements of objs.
func UnregisterAll(objs ...any) error { return Manager().UnregisterAll(objs...) }

// IsManaged reports whether obj's type is declared as a management object.
func IsManaged(obj any) bool { return Manager().IsManaged(obj) }

// IsRegistered reports whether obj is registered with the default manager.
func IsRegistered(obj any) bool { return Manager().IsRegistered(obj) }

// Identity computes the identity obj would be published under, without
// registering it.
func Identity(obj any) (objname.Name, error) { return Manager().Compiler().Identity(obj) }

// AddExecutionContext wraps member calls of the default manager in ctx.
func AddExecutionContext(ctx apis.ExecutionContext) { Manager().AddExecutionContext(ctx) }

// RemoveExecutionContext removes ctx from the default manager.
func RemoveExecutionContext(ctx apis.ExecutionContext) bool {
	return Manager().RemoveExecutionContext(ctx)
}

// SetErrorStrategy sets the default manager's error strategy.
func SetErrorStrategy(s apis.ErrorStrategy) { Manager().SetErrorStrategy(s) }

// NewList returns a list whose managed elements are registered with the
// default manager current at the time of each change.
func NewList[T any](items ...T) (*collections.List[T], error) {
	return collections.NewList(global{}, items...)
}

// NewMap returns a map whose managed values are registered with the
// default manager current at the time of each change.
func NewMap[K comparable, V any]() *collections.Map[K, V] {
	return collections.NewMap[K, V](global{})
}

// global is a collections.Lifecycle over the default manager.
type global struct{}

func (global) Register(obj any) error   { return Register(obj) }
func (global) Unregister(obj any) error { return Unregister(obj) }
func (global) IsManaged(obj any) bool   { return IsManaged(obj) }

// buildMu serializes writers so a snapshot is never published half-built.
var buildMu sync.Mutex

// st is the current snapshot.
var st atomic.Pointer[state]

// state is an immutable snapshot. Writers store a new one.
type state struct {
	mgr *manager.Manager
	bld builder.Builder
	// pinned keeps mgr from being replaced.
	pinned bool
}
