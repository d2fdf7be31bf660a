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

package reflect

import (
	"reflect"
)

// Method describes a method found on a declared type, without receiver.
type Method struct {
	Name string
	In   []reflect.Type
	Out  []reflect.Type
}

// ReturnsError reports whether the last result is error.
func (m Method) ReturnsError() bool {
	return len(m.Out) > 0 && m.Out[len(m.Out)-1] == ErrorType
}

// Results returns the results without a trailing error.
func (m Method) Results() []reflect.Type {
	if m.ReturnsError() {
		return m.Out[:len(m.Out)-1]
	}
	return m.Out
}

// MethodOn looks up an exported method on t. For non-pointer, non-interface
// types the pointer method set is searched as well, since addressable
// targets can call pointer-receiver methods.
func MethodOn(t reflect.Type, name string) (Method, bool) {
	if t == nil || !Exported(name) {
		return Method{}, false
	}
	candidates := []reflect.Type{t}
	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface {
		candidates = append(candidates, reflect.PointerTo(t))
	}
	for _, ct := range candidates {
		m, ok := ct.MethodByName(name)
		if !ok {
			continue
		}
		ft := m.Type
		skip := 1
		if ct.Kind() == reflect.Interface {
			skip = 0
		}
		out := Method{Name: name}
		for i := skip; i < ft.NumIn(); i++ {
			out.In = append(out.In, ft.In(i))
		}
		for i := 0; i < ft.NumOut(); i++ {
			out.Out = append(out.Out, ft.Out(i))
		}
		if ft.IsVariadic() {
			return Method{}, false
		}
		return out, true
	}
	return Method{}, false
}

// MethodValue returns the bound method name of v, taking the address of
// addressable values and dereferencing pointers when needed.
func MethodValue(v reflect.Value, name string) (reflect.Value, bool) {
	for i := 0; i <= MaxIndirect && v.IsValid(); i++ {
		if m := v.MethodByName(name); m.IsValid() {
			return m, true
		}
		if v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface && v.CanAddr() {
			if m := v.Addr().MethodByName(name); m.IsValid() {
				return m, true
			}
		}
		if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && !v.IsNil() {
			v = v.Elem()
			continue
		}
		break
	}
	return reflect.Value{}, false
}

// FieldOn looks up an exported struct field by name on the struct behind t,
// following Go's promotion rules. The returned index is relative to the
// struct behind t.
func FieldOn(t reflect.Type, name string) (reflect.StructField, bool) {
	st := Indirect(t)
	if st == nil || st.Kind() != reflect.Struct || !Exported(name) {
		return reflect.StructField{}, false
	}
	f, ok := st.FieldByName(name)
	if !ok || !f.IsExported() {
		return reflect.StructField{}, false
	}
	return f, true
}

// FieldByIndex walks index from v, following pointers (including embedded
// pointers) and failing on nil instead of panicking.
func FieldByIndex(v reflect.Value, index []int) (reflect.Value, error) {
	for _, i := range index {
		s, err := IndirectValue(v)
		if err != nil {
			return reflect.Value{}, err
		}
		v = s.Field(i)
	}
	return v, nil
}
