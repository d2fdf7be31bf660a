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

// Package opentype describes the transportable value kinds a facility can
// carry without knowing any application type: simple values, arrays,
// composite records and tables of composite records.
package opentype

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidData is returned when data does not match its type.
var ErrInvalidData = errors.New("mgmt(opentype): data does not match type")

// Kind discriminates the transportable type families.
type Kind int

const (
	// KindSimple is a scalar value.
	KindSimple Kind = iota
	// KindArray is a homogeneous sequence.
	KindArray
	// KindComposite is a record of named items.
	KindComposite
	// KindTabular is a keyed table of composite rows.
	KindTabular
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindArray:
		return "array"
	case KindComposite:
		return "composite"
	case KindTabular:
		return "tabular"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Type is the schema of a transportable value.
type Type interface {
	Kind() Kind
	TypeName() string
	Description() string
}

// SimpleType is a scalar transport type.
type SimpleType string

const (
	Bool     SimpleType = "bool"
	Int      SimpleType = "int"
	Int8     SimpleType = "int8"
	Int16    SimpleType = "int16"
	Int32    SimpleType = "int32"
	Int64    SimpleType = "int64"
	Uint     SimpleType = "uint"
	Uint8    SimpleType = "uint8"
	Uint16   SimpleType = "uint16"
	Uint32   SimpleType = "uint32"
	Uint64   SimpleType = "uint64"
	Uintptr  SimpleType = "uintptr"
	Float32  SimpleType = "float32"
	Float64  SimpleType = "float64"
	String   SimpleType = "string"
	BigInt   SimpleType = "bigint"
	BigFloat SimpleType = "bigfloat"
	// Date carries a time.Time in UTC.
	Date SimpleType = "date"
	// Identity carries an objname.Name.
	Identity SimpleType = "identity"
	// Void is the return type of operations without a result.
	Void SimpleType = "void"
)

func (s SimpleType) Kind() Kind          { return KindSimple }
func (s SimpleType) TypeName() string    { return string(s) }
func (s SimpleType) Description() string { return string(s) }
func (s SimpleType) String() string      { return string(s) }

// ArrayType is a sequence of Elem.
type ArrayType struct {
	Elem Type
}

func (a *ArrayType) Kind() Kind          { return KindArray }
func (a *ArrayType) TypeName() string    { return "[]" + a.Elem.TypeName() }
func (a *ArrayType) Description() string { return "array of " + a.Elem.TypeName() }
func (a *ArrayType) String() string      { return a.TypeName() }

// Item is one named member of a composite type.
type Item struct {
	Name        string
	Description string
	Type        Type
}

// CompositeType is an ordered record schema.
type CompositeType struct {
	Name  string
	Desc  string
	Items []Item
}

// NewCompositeType validates item names and returns the type.
func NewCompositeType(name, desc string, items ...Item) (*CompositeType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: composite without name", ErrInvalidData)
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it.Name == "" || it.Type == nil {
			return nil, fmt.Errorf("%w: incomplete item in %s", ErrInvalidData, name)
		}
		if _, dup := seen[it.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q in %s", ErrInvalidData, it.Name, name)
		}
		seen[it.Name] = struct{}{}
	}
	if desc == "" {
		desc = name
	}
	return &CompositeType{Name: name, Desc: desc, Items: items}, nil
}

func (c *CompositeType) Kind() Kind          { return KindComposite }
func (c *CompositeType) TypeName() string    { return c.Name }
func (c *CompositeType) Description() string { return c.Desc }
func (c *CompositeType) String() string      { return c.Name + "{" + strings.Join(c.Names(), ",") + "}" }

// Item returns the item called name.
func (c *CompositeType) Item(name string) (Item, bool) {
	for _, it := range c.Items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Names returns the item names in declared order.
func (c *CompositeType) Names() []string {
	out := make([]string, len(c.Items))
	for i, it := range c.Items {
		out[i] = it.Name
	}
	return out
}

// TabularType is a table of Row records keyed by the Index items.
type TabularType struct {
	Name  string
	Desc  string
	Row   *CompositeType
	Index []string
}

func (t *TabularType) Kind() Kind          { return KindTabular }
func (t *TabularType) TypeName() string    { return t.Name }
func (t *TabularType) Description() string { return t.Desc }
func (t *TabularType) String() string      { return t.Name + "[" + strings.Join(t.Index, ",") + "]" }
