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

package convert

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/objname"
	"dirpx.dev/mgmt/opentype"
	uref "dirpx.dev/mgmt/utils/reflect"
)

// Sequence handles slices and arrays. Values travel as []any of the
// converted elements; inbound conversion is not supported.
func Sequence() Strategy { return sequenceStrategy{} }

type sequenceStrategy struct{}

func (sequenceStrategy) Handles(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

func (sequenceStrategy) Bind(t reflect.Type, trail Trail, reg *Registry) (Binding, error) {
	elem, err := reg.Bind(t.Elem(), trail)
	if err != nil {
		return Binding{}, err
	}
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			v := reflect.ValueOf(native)
			out := make([]any, v.Len())
			for i := range out {
				e, err := elem.Converter.ToTransport(v.Index(i).Interface())
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = e
			}
			return out, nil
		},
		In: unsupportedIn(t),
	}
	return Binding{Schema: &opentype.ArrayType{Elem: elem.Schema}, Converter: conv}, nil
}

// Item is one member of a composite type together with the chain that
// reads its native value from the composite root.
type Item struct {
	Name        string
	Description string
	Schema      opentype.Type
	Value       *access.Chain
}

// CompositeSource discovers the items of declared composite types.
type CompositeSource interface {
	// IsComposite reports whether t (pointers removed) is declared composite.
	IsComposite(t reflect.Type) bool
	// CompositeItems returns the description and ordered items of t.
	CompositeItems(t reflect.Type, trail Trail) (string, []Item, error)
}

// Composite handles struct types declared as composites, and pointers to
// them. Values travel as *opentype.CompositeData; inbound conversion is
// not supported. Bindings are cached per type.
func Composite(src CompositeSource) Strategy {
	if src == nil {
		return nil
	}
	return &compositeStrategy{src: src}
}

type compositeStrategy struct {
	src   CompositeSource
	cache sync.Map // reflect.Type -> Binding
}

func (s *compositeStrategy) Handles(t reflect.Type) bool {
	st := uref.Indirect(t)
	return st.Kind() == reflect.Struct && s.src.IsComposite(st)
}

func (s *compositeStrategy) Bind(t reflect.Type, trail Trail, _ *Registry) (Binding, error) {
	if b, ok := s.cache.Load(t); ok {
		return b.(Binding), nil
	}
	st := uref.Indirect(t)
	if trail.Contains(st) {
		return Binding{}, fmt.Errorf("%w: %s", ErrCycle, trail.Push(st))
	}
	desc, items, err := s.src.CompositeItems(st, trail.Push(st))
	if err != nil {
		return Binding{}, err
	}
	oitems := make([]opentype.Item, len(items))
	for i, it := range items {
		oitems[i] = opentype.Item{Name: it.Name, Description: it.Description, Type: it.Schema}
	}
	ct, err := opentype.NewCompositeType(uref.ClassName(st), desc, oitems...)
	if err != nil {
		return Binding{}, err
	}
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			root := addressable(native)
			values := make(map[string]any, len(items))
			for _, it := range items {
				v, err := it.Value.Read(root)
				if err != nil {
					return nil, err
				}
				values[it.Name] = v
			}
			return opentype.NewCompositeData(ct, values)
		},
		In: unsupportedIn(t),
	}
	b, _ := s.cache.LoadOrStore(t, Binding{Schema: ct, Converter: conv})
	return b.(Binding), nil
}

// addressable copies struct values behind a pointer so pointer-receiver
// getters can be called on them.
func addressable(native any) any {
	v := reflect.ValueOf(native)
	if v.Kind() == reflect.Ptr {
		return native
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p.Interface()
}

// ManagedSource identifies management objects.
type ManagedSource interface {
	// IsManaged reports whether t (pointers removed) is declared as a
	// management object.
	IsManaged(t reflect.Type) bool
	// Identity computes the identity of obj.
	Identity(obj any) (objname.Name, error)
}

// Managed handles management object types. Values travel as their
// identity; inbound conversion is not supported.
func Managed(src ManagedSource) Strategy {
	if src == nil {
		return nil
	}
	return managedStrategy{src: src}
}

type managedStrategy struct {
	src ManagedSource
}

func (s managedStrategy) Handles(t reflect.Type) bool {
	st := uref.Indirect(t)
	return st.Kind() == reflect.Struct && s.src.IsManaged(st)
}

func (s managedStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			return s.src.Identity(native)
		},
		In: unsupportedIn(t),
	}
	return Binding{Schema: opentype.Identity, Converter: conv}, nil
}

var errorComposite = func() *opentype.CompositeType {
	ct, err := opentype.NewCompositeType("error", "error",
		opentype.Item{Name: "message", Description: "message", Type: opentype.String},
		opentype.Item{Name: "type", Description: "type", Type: opentype.String},
		opentype.Item{Name: "stackTrace", Description: "stackTrace", Type: opentype.String},
	)
	if err != nil {
		panic(err)
	}
	return ct
}()

// Errors handles types implementing error. Values travel as a composite
// of message, type and stackTrace, where stackTrace is the "%+v" form.
func Errors() Strategy { return errorStrategy{} }

type errorStrategy struct{}

func (errorStrategy) Handles(t reflect.Type) bool {
	return t.Implements(uref.ErrorType)
}

func (errorStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			err := native.(error)
			return opentype.NewCompositeData(errorComposite, map[string]any{
				"message":    err.Error(),
				"type":       reflect.TypeOf(err).String(),
				"stackTrace": fmt.Sprintf("%+v", err),
			})
		},
		In: unsupportedIn(t),
	}
	return Binding{Schema: errorComposite, Converter: conv}, nil
}

var propertiesType = func() *opentype.TabularType {
	row, err := opentype.NewCompositeType("PropertyNameValuePair", "property name and value",
		opentype.Item{Name: "propertyName", Description: "property name", Type: opentype.String},
		opentype.Item{Name: "propertyValue", Description: "property value", Type: opentype.String},
	)
	if err != nil {
		panic(err)
	}
	return &opentype.TabularType{
		Name:  "properties",
		Desc:  "properties",
		Row:   row,
		Index: []string{"propertyName"},
	}
}()

// Properties handles string-to-string maps. Values travel as a table of
// name/value rows keyed by name, sorted by name; inbound rebuilds the map.
func Properties() Strategy { return propertiesStrategy{} }

type propertiesStrategy struct{}

func (propertiesStrategy) Handles(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String && t.Elem().Kind() == reflect.String
}

func (propertiesStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			v := reflect.ValueOf(native)
			keys := make([]string, 0, v.Len())
			vals := make(map[string]string, v.Len())
			iter := v.MapRange()
			for iter.Next() {
				k := iter.Key().String()
				keys = append(keys, k)
				vals[k] = iter.Value().String()
			}
			sort.Strings(keys)
			td := opentype.NewTabularData(propertiesType)
			for _, k := range keys {
				row, err := opentype.NewCompositeData(propertiesType.Row, map[string]any{
					"propertyName":  k,
					"propertyValue": vals[k],
				})
				if err != nil {
					return nil, err
				}
				if err := td.Put(row); err != nil {
					return nil, err
				}
			}
			return td, nil
		},
		In: func(transport any) (any, error) {
			if transport == nil {
				return reflect.Zero(t).Interface(), nil
			}
			td, ok := transport.(*opentype.TabularData)
			if !ok {
				return nil, fmt.Errorf("mgmt(convert): %s expects *opentype.TabularData, got %T", t, transport)
			}
			m := reflect.MakeMapWithSize(t, td.Len())
			for _, row := range td.Rows() {
				k, _ := row.Get("propertyName")
				v, _ := row.Get("propertyValue")
				ks, kok := k.(string)
				vs, vok := v.(string)
				if !kok || !vok {
					return nil, fmt.Errorf("mgmt(convert): property row must hold strings")
				}
				m.SetMapIndex(reflect.ValueOf(ks).Convert(t.Key()), reflect.ValueOf(vs).Convert(t.Elem()))
			}
			return m.Interface(), nil
		},
	}
	return Binding{Schema: propertiesType, Converter: conv}, nil
}
