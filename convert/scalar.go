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
	"encoding"
	"fmt"
	"math/big"
	"net/url"
	"reflect"
	"time"

	"dirpx.dev/mgmt/access"
	"dirpx.dev/mgmt/apis"
	"dirpx.dev/mgmt/objname"
	"dirpx.dev/mgmt/opentype"
)

var simpleTypes = map[reflect.Type]opentype.SimpleType{
	reflect.TypeOf(false):          opentype.Bool,
	reflect.TypeOf(int(0)):         opentype.Int,
	reflect.TypeOf(int8(0)):        opentype.Int8,
	reflect.TypeOf(int16(0)):       opentype.Int16,
	reflect.TypeOf(int32(0)):       opentype.Int32,
	reflect.TypeOf(int64(0)):       opentype.Int64,
	reflect.TypeOf(uint(0)):        opentype.Uint,
	reflect.TypeOf(uint8(0)):       opentype.Uint8,
	reflect.TypeOf(uint16(0)):      opentype.Uint16,
	reflect.TypeOf(uint32(0)):      opentype.Uint32,
	reflect.TypeOf(uint64(0)):      opentype.Uint64,
	reflect.TypeOf(uintptr(0)):     opentype.Uintptr,
	reflect.TypeOf(float32(0)):     opentype.Float32,
	reflect.TypeOf(float64(0)):     opentype.Float64,
	reflect.TypeOf(""):             opentype.String,
	reflect.TypeOf(&big.Int{}):     opentype.BigInt,
	reflect.TypeOf(&big.Float{}):   opentype.BigFloat,
	reflect.TypeOf(objname.Name{}): opentype.Identity,
}

// Simple handles predeclared scalar types, pointers to them, *big.Int,
// *big.Float and objname.Name.
func Simple() Strategy { return simpleStrategy{} }

type simpleStrategy struct{}

func (simpleStrategy) Handles(t reflect.Type) bool {
	if _, ok := simpleTypes[t]; ok {
		return true
	}
	if t.Kind() == reflect.Ptr {
		st, ok := simpleTypes[t.Elem()]
		return ok && st != opentype.BigInt && st != opentype.BigFloat
	}
	return false
}

func (simpleStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	if st, ok := simpleTypes[t]; ok {
		return Binding{Schema: st, Converter: access.Identity}, nil
	}
	elem := t.Elem()
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			return reflect.ValueOf(native).Elem().Interface(), nil
		},
		In: func(transport any) (any, error) {
			if transport == nil {
				return reflect.Zero(t).Interface(), nil
			}
			v, err := access.Assign(transport, elem)
			if err != nil {
				return nil, err
			}
			p := reflect.New(elem)
			p.Elem().Set(v)
			return p.Interface(), nil
		},
	}
	return Binding{Schema: simpleTypes[elem], Converter: conv}, nil
}

var basicKinds = map[reflect.Kind]reflect.Type{
	reflect.Bool:    reflect.TypeOf(false),
	reflect.Int:     reflect.TypeOf(int(0)),
	reflect.Int8:    reflect.TypeOf(int8(0)),
	reflect.Int16:   reflect.TypeOf(int16(0)),
	reflect.Int32:   reflect.TypeOf(int32(0)),
	reflect.Int64:   reflect.TypeOf(int64(0)),
	reflect.Uint:    reflect.TypeOf(uint(0)),
	reflect.Uint8:   reflect.TypeOf(uint8(0)),
	reflect.Uint16:  reflect.TypeOf(uint16(0)),
	reflect.Uint32:  reflect.TypeOf(uint32(0)),
	reflect.Uint64:  reflect.TypeOf(uint64(0)),
	reflect.Uintptr: reflect.TypeOf(uintptr(0)),
	reflect.Float32: reflect.TypeOf(float32(0)),
	reflect.Float64: reflect.TypeOf(float64(0)),
	reflect.String:  reflect.TypeOf(""),
}

var durationType = reflect.TypeOf(time.Duration(0))

// Basic handles named types defined on a predeclared scalar, such as
// `type Level int`. They travel as the underlying type. time.Duration
// travels as its string form ("1m30s").
func Basic() Strategy { return basicStrategy{} }

type basicStrategy struct{}

func (basicStrategy) Handles(t reflect.Type) bool {
	if _, ok := simpleTypes[t]; ok {
		return false
	}
	_, ok := basicKinds[t.Kind()]
	return ok
}

func (basicStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	if t == durationType {
		return Binding{Schema: opentype.String, Converter: durationConverter}, nil
	}
	base := basicKinds[t.Kind()]
	conv := Converter{
		Out: func(native any) (any, error) {
			return reflect.ValueOf(native).Convert(base).Interface(), nil
		},
		In: func(transport any) (any, error) {
			v, err := access.Assign(transport, base)
			if err != nil {
				return nil, err
			}
			return v.Convert(t).Interface(), nil
		},
	}
	return Binding{Schema: simpleTypes[base], Converter: conv}, nil
}

var durationConverter = Converter{
	Out: func(native any) (any, error) {
		return native.(time.Duration).String(), nil
	},
	In: func(transport any) (any, error) {
		s, ok := transport.(string)
		if !ok {
			return nil, fmt.Errorf("mgmt(convert): time.Duration expects a string, got %T", transport)
		}
		return time.ParseDuration(s)
	},
}

var (
	textMarshaler   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Enum handles named non-struct types that marshal to and from text,
// such as apis.Impact. They travel as their textual name.
func Enum() Strategy { return enumStrategy{} }

type enumStrategy struct{}

func (enumStrategy) Handles(t reflect.Type) bool {
	return t.Name() != "" &&
		t.Kind() != reflect.Struct && t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface &&
		t.Implements(textMarshaler) && reflect.PointerTo(t).Implements(textUnmarshaler)
}

func (enumStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	conv := Converter{
		Out: func(native any) (any, error) {
			b, err := native.(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return nil, err
			}
			return string(b), nil
		},
		In: func(transport any) (any, error) {
			s, ok := transport.(string)
			if !ok {
				return nil, fmt.Errorf("mgmt(convert): %s expects a string, got %T", t, transport)
			}
			p := reflect.New(t)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return nil, err
			}
			return p.Elem().Interface(), nil
		},
	}
	return Binding{Schema: opentype.String, Converter: conv}, nil
}

var timeType = reflect.TypeOf(time.Time{})

// Temporal handles time.Time, *time.Time and named types defined on
// time.Time. Values travel as UTC dates without monotonic reading and come
// back in the local zone.
func Temporal() Strategy { return temporalStrategy{} }

type temporalStrategy struct{}

func (temporalStrategy) Handles(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t == timeType || (t.Kind() == reflect.Struct && t.ConvertibleTo(timeType))
}

func (temporalStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	base := t
	ptr := t.Kind() == reflect.Ptr
	if ptr {
		base = t.Elem()
	}
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			v := reflect.ValueOf(native)
			if ptr {
				v = v.Elem()
			}
			tm := v.Convert(timeType).Interface().(time.Time)
			return tm.Round(0).UTC(), nil
		},
		In: func(transport any) (any, error) {
			if transport == nil {
				return reflect.Zero(t).Interface(), nil
			}
			tm, ok := transport.(time.Time)
			if !ok {
				return nil, fmt.Errorf("mgmt(convert): %s expects a time.Time, got %T", t, transport)
			}
			v := reflect.ValueOf(tm.In(time.Local)).Convert(base)
			if !ptr {
				return v.Interface(), nil
			}
			p := reflect.New(base)
			p.Elem().Set(v)
			return p.Interface(), nil
		},
	}
	return Binding{Schema: opentype.Date, Converter: conv}, nil
}

var urlType = reflect.TypeOf(url.URL{})

// URI handles url.URL and *url.URL as strings.
func URI() Strategy { return uriStrategy{} }

type uriStrategy struct{}

func (uriStrategy) Handles(t reflect.Type) bool {
	return t == urlType || t == reflect.PointerTo(urlType)
}

func (uriStrategy) Bind(t reflect.Type, _ Trail, _ *Registry) (Binding, error) {
	ptr := t.Kind() == reflect.Ptr
	conv := Converter{
		Out: func(native any) (any, error) {
			if isNil(native) {
				return nil, nil
			}
			if ptr {
				return native.(*url.URL).String(), nil
			}
			u := native.(url.URL)
			return u.String(), nil
		},
		In: func(transport any) (any, error) {
			if transport == nil {
				return reflect.Zero(t).Interface(), nil
			}
			s, ok := transport.(string)
			if !ok {
				return nil, fmt.Errorf("mgmt(convert): %s expects a string, got %T", t, transport)
			}
			u, err := url.Parse(s)
			if err != nil {
				return nil, err
			}
			if ptr {
				return u, nil
			}
			return *u, nil
		},
	}
	return Binding{Schema: opentype.String, Converter: conv}, nil
}

// unsupportedIn rejects inbound conversion for outbound-only strategies.
func unsupportedIn(t reflect.Type) func(any) (any, error) {
	return func(any) (any, error) {
		return nil, fmt.Errorf("%w: conversion to %s", apis.ErrUnsupported, t)
	}
}
