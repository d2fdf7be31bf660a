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

// Package compiler turns declared metadata into class descriptors: the
// attributes, operations and composition references of a management
// object type, each bound to access chains and converters. Descriptors are
// built once per type and shared by all instances.
package compiler

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/convert"
	"dirpx.dev/mgmt/meta"
	"dirpx.dev/mgmt/objname"
	uref "dirpx.dev/mgmt/utils/reflect"
)

var (
	// ErrSizeType is returned for a size attribute on a type without a length.
	ErrSizeType = errors.New("mgmt(compiler): size attribute needs a slice, array, map or string")
	// ErrMissingSetter is returned for a writable method attribute without a setter.
	ErrMissingSetter = errors.New("mgmt(compiler): writable attribute has no setter")
	// ErrMemberNotFound is returned when a declaration names a missing field or method.
	ErrMemberNotFound = errors.New("mgmt(compiler): declared member not found")
	// ErrCycle is returned when includes form a cycle.
	ErrCycle = errors.New("mgmt(compiler): recursive include")
	// ErrTypeOverride is returned for an override type that does not fit the declared type.
	ErrTypeOverride = errors.New("mgmt(compiler): type override not assignable to declared type")
	// ErrReferenceType is returned for a reference that cannot hold an object.
	ErrReferenceType = errors.New("mgmt(compiler): reference must be a pointer or interface")
	// ErrDuplicateItem is returned when two composite items share a name.
	ErrDuplicateItem = errors.New("mgmt(compiler): duplicate composite item")
	// ErrOperationResult is returned for operations with more than one result.
	ErrOperationResult = errors.New("mgmt(compiler): operation returns more than one value")
)

// Error locates a compile failure.
type Error struct {
	Class  string
	Member string
	Err    error
}

func (e *Error) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("mgmt(compiler): %s: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("mgmt(compiler): %s.%s: %v", e.Class, e.Member, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Compiler builds and caches class descriptors. It is safe for concurrent use.
type Compiler struct {
	resolver *meta.Resolver
	user     []convert.Strategy
	conv     *convert.Registry
	exec     access.Executor
	clock    func() time.Time
	domain   atomic.Pointer[string]

	// cache holds *Class by indirected type.
	cache sync.Map // map[reflect.Type]*Class
}

// Ensure Compiler serves the composite and managed conversion strategies.
var (
	_ convert.CompositeSource = (*Compiler)(nil)
	_ convert.ManagedSource   = (*Compiler)(nil)
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithResolver sets the metadata resolver. The default is
// meta.Standard over a fresh registry.
func WithResolver(r *meta.Resolver) Option {
	return func(c *Compiler) {
		if r != nil {
			c.resolver = r
		}
	}
}

// WithStrategies adds conversion strategies tried before the built-ins.
func WithStrategies(s ...convert.Strategy) Option {
	return func(c *Compiler) { c.user = append(c.user, s...) }
}

// WithExecutor sets the executor used for getters, setters and operations.
func WithExecutor(e access.Executor) Option {
	return func(c *Compiler) {
		if e != nil {
			c.exec = e
		}
	}
}

// WithClock sets the clock of cached attributes.
func WithClock(clock func() time.Time) Option {
	return func(c *Compiler) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithDefaultDomain sets the domain of relative identities.
func WithDefaultDomain(domain string) Option {
	return func(c *Compiler) { c.domain.Store(&domain) }
}

// New constructs a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		resolver: meta.Standard(meta.NewRegistry()),
		exec:     access.Direct,
		clock:    time.Now,
	}
	empty := ""
	c.domain.Store(&empty)
	for _, opt := range opts {
		opt(c)
	}
	c.conv = convert.New(append(append([]convert.Strategy{}, c.user...), convert.Defaults(c, c)...)...)
	return c
}

// Resolver returns the metadata resolver.
func (c *Compiler) Resolver() *meta.Resolver { return c.resolver }

// Conversions returns the conversion registry.
func (c *Compiler) Conversions() *convert.Registry { return c.conv }

// DefaultDomain returns the domain used for relative identities.
func (c *Compiler) DefaultDomain() string { return *c.domain.Load() }

// SetDefaultDomain changes the domain used for relative identities.
func (c *Compiler) SetDefaultDomain(domain string) { c.domain.Store(&domain) }

// Class returns the descriptor of t, building it on first use. Concurrent
// first builds may both run; the first stored descriptor wins.
func (c *Compiler) Class(t reflect.Type) (*Class, error) {
	if t == nil {
		return nil, convert.ErrNilType
	}
	t = uref.Indirect(t)
	if v, ok := c.cache.Load(t); ok {
		return v.(*Class), nil
	}
	cls, err := c.build(t)
	if err != nil {
		return nil, err
	}
	v, _ := c.cache.LoadOrStore(t, cls)
	return v.(*Class), nil
}

// Cached reports whether a descriptor for t has been built.
func (c *Compiler) Cached(t reflect.Type) bool {
	if t == nil {
		return false
	}
	_, ok := c.cache.Load(uref.Indirect(t))
	return ok
}

// describe returns the declared class of t; undeclared types yield an
// empty class.
func (c *Compiler) describe(t reflect.Type) (meta.Class, error) {
	cls, _, err := c.resolver.Describe(t)
	return cls, err
}

// IsManaged reports whether t is declared as a management object.
func (c *Compiler) IsManaged(t reflect.Type) bool {
	if t == nil {
		return false
	}
	cls, err := c.describe(t)
	return err == nil && cls.Bean != nil
}

// IsComposite reports whether t is declared as a composite value.
func (c *Compiler) IsComposite(t reflect.Type) bool {
	if t == nil {
		return false
	}
	cls, err := c.describe(t)
	return err == nil && cls.Composite != nil
}

// Identity evaluates the identity template of obj. Relative templates use
// the default domain.
func (c *Compiler) Identity(obj any) (objname.Name, error) {
	if obj == nil {
		return objname.Name{}, fmt.Errorf("%w: nil", apis.ErrNotManaged)
	}
	cls, err := c.Class(reflect.TypeOf(obj))
	if err != nil {
		return objname.Name{}, err
	}
	return cls.Identity(obj, c.DefaultDomain())
}
