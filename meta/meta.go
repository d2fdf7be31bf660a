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

// Package meta holds the declarative metadata of management objects: which
// struct fields and methods are exposed as attributes, operations,
// composite items, composition references or includes, and how the
// object's identity and description are computed.
//
// Metadata reaches the compiler through a chain of sources, first match
// wins:
//
//  1. types implementing Declarer describe themselves,
//  2. a Registry holds explicit per-type declarations,
//  3. Tags parses `mgmt:"..."` struct tags.
package meta

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"dirpx.dev/mgmt/apis"
)

var (
	// ErrInvalidMember is returned for a member declaration that cannot be
	// compiled, for example an operation on a field.
	ErrInvalidMember = errors.New("mgmt(meta): invalid member declaration")
	// ErrInvalidTag is returned for a malformed struct tag.
	ErrInvalidTag = errors.New("mgmt(meta): invalid tag")
)

// Kind discriminates member declarations.
type Kind int

const (
	// Attribute exposes a readable, possibly writable value.
	Attribute Kind = iota + 1
	// SizeAttribute exposes the length of a collection, map or string.
	SizeAttribute
	// Operation exposes an invokable method.
	Operation
	// Item adds a value to the composite schema of the declaring type.
	Item
	// Reference marks a value registered and unregistered with its owner.
	Reference
	// Include merges the members of a nested value into the owner.
	Include
)

func (k Kind) String() string {
	switch k {
	case Attribute:
		return "attribute"
	case SizeAttribute:
		return "size"
	case Operation:
		return "operation"
	case Item:
		return "item"
	case Reference:
		return "reference"
	case Include:
		return "include"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Bean declares a type as a management object.
type Bean struct {
	// Name is the identity template, e.g. "Demo:type=Person,name=#{name}".
	Name string
	// Description is a template; empty defaults to the class name.
	Description string
	// MakeNameUnique appends " @N" on identity collisions.
	MakeNameUnique bool
}

// Composite declares a type as a composite value.
type Composite struct {
	// Description defaults to the class name.
	Description string
}

// Member is one declaration attached to a field or method.
// Exactly one of Field and Method is set.
type Member struct {
	Kind   Kind
	Field  string
	Method string

	// Name and Description are templates. Empty values are derived from
	// the member name.
	Name        string
	Description string

	// Writable applies to attributes.
	Writable bool
	// Type overrides the exposed type of attributes, items and includes.
	// It must be assignable to the declared type.
	Type reflect.Type

	// Params and ParamDescriptions name operation parameters.
	Params            []string
	ParamDescriptions []string
	Impact            apis.Impact

	// ConcatName prefixes a reference's identity with its owner's.
	ConcatName bool
	// CacheTimeout caches a method attribute for the given duration.
	CacheTimeout time.Duration
}

// Class is the declared metadata of one type.
type Class struct {
	Bean      *Bean
	Composite *Composite
	Members   []Member
}

// Empty reports whether c declares nothing.
func (c Class) Empty() bool {
	return c.Bean == nil && c.Composite == nil && len(c.Members) == 0
}

// Validate checks member shapes that do not need type information.
func (c Class) Validate() error {
	for i, m := range c.Members {
		if err := m.validate(); err != nil {
			return fmt.Errorf("member %d: %w", i, err)
		}
	}
	return nil
}

func (m Member) validate() error {
	if m.Kind < Attribute || m.Kind > Include {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidMember, int(m.Kind))
	}
	if (m.Field == "") == (m.Method == "") {
		return fmt.Errorf("%w: %s needs exactly one of field or method", ErrInvalidMember, m.Kind)
	}
	if m.Kind == Operation && m.Field != "" {
		return fmt.Errorf("%w: operation on field %s", ErrInvalidMember, m.Field)
	}
	if m.CacheTimeout < 0 || (m.CacheTimeout > 0 && (m.Kind != Attribute || m.Method == "")) {
		return fmt.Errorf("%w: caching applies to method attributes only", ErrInvalidMember)
	}
	if len(m.ParamDescriptions) > len(m.Params) && m.Kind == Operation {
		return fmt.Errorf("%w: more parameter descriptions than names", ErrInvalidMember)
	}
	return nil
}

// Declarer is implemented by types that describe themselves.
// ManagedClass is called on the zero value.
type Declarer interface {
	ManagedClass() Class
}

// Source yields the declared class of a type.
type Source interface {
	// TryDescribe returns the class of t and whether the source handled it.
	TryDescribe(t reflect.Type) (Class, bool, error)
}

// Target selects the field or method a member is attached to.
type Target struct {
	Field  string
	Method string
}

// OnField targets the struct field name.
func OnField(name string) Target { return Target{Field: name} }

// OnMethod targets the method name.
func OnMethod(name string) Target { return Target{Method: name} }

// Option refines a member declaration.
type Option func(*Member)

// Named sets the name template.
func Named(name string) Option { return func(m *Member) { m.Name = name } }

// Described sets the description template.
func Described(desc string) Option { return func(m *Member) { m.Description = desc } }

// Writable marks an attribute as writable.
func Writable() Option { return func(m *Member) { m.Writable = true } }

// As overrides the exposed type.
func As(t reflect.Type) Option { return func(m *Member) { m.Type = t } }

// Params names operation parameters in order.
func Params(names ...string) Option { return func(m *Member) { m.Params = names } }

// ParamDescriptions describes operation parameters in order.
func ParamDescriptions(descs ...string) Option {
	return func(m *Member) { m.ParamDescriptions = descs }
}

// WithImpact sets an operation's impact.
func WithImpact(i apis.Impact) Option { return func(m *Member) { m.Impact = i } }

// ConcatName prefixes a reference's identity with its owner's.
func ConcatName() Option { return func(m *Member) { m.ConcatName = true } }

// CachedFor caches a method attribute.
func CachedFor(d time.Duration) Option { return func(m *Member) { m.CacheTimeout = d } }

func member(k Kind, on Target, opts []Option) Member {
	m := Member{Kind: k, Field: on.Field, Method: on.Method}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// AttributeOf declares an attribute.
func AttributeOf(on Target, opts ...Option) Member { return member(Attribute, on, opts) }

// SizeOf declares a size attribute.
func SizeOf(on Target, opts ...Option) Member { return member(SizeAttribute, on, opts) }

// OperationOf declares an operation on method.
func OperationOf(method string, opts ...Option) Member {
	return member(Operation, OnMethod(method), opts)
}

// ItemOf declares a composite item.
func ItemOf(on Target, opts ...Option) Member { return member(Item, on, opts) }

// ReferenceOf declares a composition reference.
func ReferenceOf(on Target, opts ...Option) Member { return member(Reference, on, opts) }

// IncludeOf declares an include.
func IncludeOf(on Target, opts ...Option) Member { return member(Include, on, opts) }
