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

// Package mgmt exposes Go values as management objects: named, typed
// attributes and invokable operations published to a facility where
// operators and tools can read, write and invoke them at runtime.
//
// # Declaring management objects
//
// A type becomes a management object by declaring a bean. The simplest
// way is struct tags:
//
//	type Pool struct {
//		_       struct{} `mgmt:"bean,name='App:type=Pool,name=#{name}'"`
//		_       struct{} `mgmt:"operation,method=Drain,impact=action"`
//		Name    string   `mgmt:"attribute"`
//		Size    int      `mgmt:"attribute,writable"`
//		Workers []Worker `mgmt:"size,name=workerCount"`
//	}
//
// Types may also describe themselves by implementing meta.Declarer, or be
// declared from outside through a meta.Registry. Names and descriptions
// are templates: #{expr} is evaluated against the object, so every
// instance gets its own identity.
//
// Fields marked reference are registered and unregistered together with
// their owner. Fields marked include merge the members of a nested value
// into the owner; the values in package mvalue are meant to be included.
//
// # Global API
//
// The package keeps a process-wide default manager in an atomic snapshot.
// The helpers in this package read the snapshot without locking:
//
//	mgmt.Register(pool)
//	defer mgmt.Unregister(pool)
//
// Writers take a short build lock and publish a new snapshot:
//
//	SetManager(m)    install a manager built elsewhere
//	Rebuild(cfg)     unregister everything and build a fresh manager
//	SetBuilder(b)    change how Rebuild constructs managers
//	Pin() / Unpin()  forbid or allow replacing the default manager
//
// SetConfig reconfigures the current manager in place and does not
// replace it. A pinned manager can still be reconfigured.
//
// NewList and NewMap return collections whose managed elements follow
// their membership: adding registers, removing unregisters. They always
// talk to the default manager current at the time of the change.
//
// # Packages
//
//	objname     identities: domain plus ordered key=value properties
//	opentype    the transport type system: simple, array, composite, tabular
//	meta        declarations: tags, registry, declarers
//	expr        #{...} templates
//	access      field and method access chains
//	convert     native to transport value conversion
//	compiler    class descriptors built from declarations
//	manager     lifecycle, facades, execution contexts, error strategies
//	facility    the in-memory publication registry
//	collections lifecycle-aware list and map
//	mvalue      counters and gauges for inclusion
//	config      configuration loading
package mgmt
